package repository

import (
	"context"
	"fmt"

	"github.com/artvoid/artvoid-api/models"
	"gorm.io/gorm"
)

// SettingsRepository persists the singleton admin settings row
type SettingsRepository interface {
	// Get returns the settings, creating them with the default rate on first use
	Get(ctx context.Context) (*models.Settings, error)
	UpdateCommissionRate(ctx context.Context, rate float64) error
	SetAdminPasswordHash(ctx context.Context, hash string) error
}

// MessageRepository persists contact messages
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	List(ctx context.Context) ([]models.Message, error)
	Delete(ctx context.Context, id uint) error
	DeleteAll(ctx context.Context) error
}

type gormSettingsRepository struct {
	db          *gorm.DB
	defaultRate float64
}

// NewSettingsRepository creates a GORM settings repository
func NewSettingsRepository(db *gorm.DB, defaultRate float64) SettingsRepository {
	return &gormSettingsRepository{db: db, defaultRate: defaultRate}
}

func (r *gormSettingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	settings := models.Settings{ID: models.SettingsID}
	err := r.db.WithContext(ctx).
		Attrs(models.Settings{CommissionRate: r.defaultRate}).
		FirstOrCreate(&settings, models.Settings{ID: models.SettingsID}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return &settings, nil
}

func (r *gormSettingsRepository) UpdateCommissionRate(ctx context.Context, rate float64) error {
	settings, err := r.Get(ctx)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Model(settings).Update("commission_rate", rate).Error; err != nil {
		return fmt.Errorf("failed to update commission rate: %w", err)
	}
	return nil
}

func (r *gormSettingsRepository) SetAdminPasswordHash(ctx context.Context, hash string) error {
	settings, err := r.Get(ctx)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Model(settings).Update("admin_password_hash", hash).Error; err != nil {
		return fmt.Errorf("failed to store admin password: %w", err)
	}
	return nil
}

type gormMessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a GORM message repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

func (r *gormMessageRepository) Create(ctx context.Context, message *models.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (r *gormMessageRepository) List(ctx context.Context) ([]models.Message, error) {
	messages := []models.Message{}
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

func (r *gormMessageRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.db, &models.Message{}, id)
}

func (r *gormMessageRepository) DeleteAll(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Message{}).Error; err != nil {
		return fmt.Errorf("failed to clear messages: %w", err)
	}
	return nil
}
