package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/artvoid/artvoid-api/models"
	"gorm.io/gorm"
)

// OrderFilter narrows an order listing. Zero value lists everything.
type OrderFilter struct {
	CustomerID *uint
	CreatorID  *uint
	// ParticipantID matches orders the user placed or is assigned to
	ParticipantID *uint
	OpenOnly      bool
}

// OrderRepository persists orders
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	Get(ctx context.Context, id uint) (*models.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	// Update writes the lifecycle fields of order only if the stored version
	// still equals expectedVersion, and bumps order.Version on success.
	Update(ctx context.Context, order *models.Order, expectedVersion uint) error
	Delete(ctx context.Context, id uint) error
	DeleteAll(ctx context.Context) error
}

// lifecycleColumns are the only columns a lifecycle transition may change
var lifecycleColumns = []string{
	"creator_id",
	"price",
	"estimated_days",
	"status",
	"delivery_status",
	"commission_rate",
	"admin_commission",
	"artist_earnings",
	"version",
	"updated_at",
}

type gormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a GORM order repository
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &gormOrderRepository{db: db}
}

func (r *gormOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.Version == 0 {
		order.Version = 1
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", translate(err))
	}
	return nil
}

func (r *gormOrderRepository) Get(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Preload("Creator").First(&order, id).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (r *gormOrderRepository) List(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	query := r.db.WithContext(ctx).Preload("Creator")
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.CreatorID != nil {
		query = query.Where("creator_id = ?", *filter.CreatorID)
	}
	if filter.ParticipantID != nil {
		query = query.Where("(customer_id = ? OR creator_id = ?)", *filter.ParticipantID, *filter.ParticipantID)
	}
	if filter.OpenOnly {
		query = query.Where("creator_id IS NULL AND product_id IS NULL")
	}

	orders := []models.Order{}
	if err := query.Order("created_at DESC").Order("id DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (r *gormOrderRepository) Update(ctx context.Context, order *models.Order, expectedVersion uint) error {
	order.Version = expectedVersion + 1
	order.UpdatedAt = time.Now()

	result := r.db.WithContext(ctx).
		Model(order).
		Where("version = ?", expectedVersion).
		Select(lifecycleColumns).
		Updates(order)
	if result.Error != nil {
		order.Version = expectedVersion
		return fmt.Errorf("failed to update order: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		order.Version = expectedVersion
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", order.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check order: %w", err)
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

func (r *gormOrderRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Order{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete order: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormOrderRepository) DeleteAll(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Order{}).Error; err != nil {
		return fmt.Errorf("failed to clear orders: %w", err)
	}
	return nil
}
