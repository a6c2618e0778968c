package repository

import (
	"context"
	"fmt"

	"github.com/artvoid/artvoid-api/models"
	"gorm.io/gorm"
)

// ProductRepository persists shop products
type ProductRepository interface {
	List(ctx context.Context) ([]models.Product, error)
	Get(ctx context.Context, id uint) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uint) error
	AdjustLikes(ctx context.Context, id uint, delta int) (int, error)
	DeleteAll(ctx context.Context) error
}

// GalleryRepository persists gallery items
type GalleryRepository interface {
	List(ctx context.Context) ([]models.GalleryItem, error)
	Get(ctx context.Context, id uint) (*models.GalleryItem, error)
	Create(ctx context.Context, item *models.GalleryItem) error
	Delete(ctx context.Context, id uint) error
	AdjustLikes(ctx context.Context, id uint, delta int) (int, error)
}

// CommentRepository persists comments on catalog items
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListForItem(ctx context.Context, itemType string, itemID uint) ([]models.Comment, error)
}

type gormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a GORM product repository
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &gormProductRepository{db: db}
}

func (r *gormProductRepository) List(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (r *gormProductRepository) Get(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (r *gormProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", translate(err))
	}
	return nil
}

func (r *gormProductRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.db, &models.Product{}, id)
}

func (r *gormProductRepository) AdjustLikes(ctx context.Context, id uint, delta int) (int, error) {
	return adjustLikes(ctx, r.db, &models.Product{}, id, delta)
}

func (r *gormProductRepository) DeleteAll(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Product{}).Error; err != nil {
		return fmt.Errorf("failed to clear products: %w", err)
	}
	return nil
}

type gormGalleryRepository struct {
	db *gorm.DB
}

// NewGalleryRepository creates a GORM gallery repository
func NewGalleryRepository(db *gorm.DB) GalleryRepository {
	return &gormGalleryRepository{db: db}
}

func (r *gormGalleryRepository) List(ctx context.Context) ([]models.GalleryItem, error) {
	items := []models.GalleryItem{}
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list gallery: %w", err)
	}
	return items, nil
}

func (r *gormGalleryRepository) Get(ctx context.Context, id uint) (*models.GalleryItem, error) {
	var item models.GalleryItem
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (r *gormGalleryRepository) Create(ctx context.Context, item *models.GalleryItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to create gallery item: %w", translate(err))
	}
	return nil
}

func (r *gormGalleryRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.db, &models.GalleryItem{}, id)
}

func (r *gormGalleryRepository) AdjustLikes(ctx context.Context, id uint, delta int) (int, error) {
	return adjustLikes(ctx, r.db, &models.GalleryItem{}, id, delta)
}

type gormCommentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a GORM comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &gormCommentRepository{db: db}
}

func (r *gormCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (r *gormCommentRepository) ListForItem(ctx context.Context, itemType string, itemID uint) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := r.db.WithContext(ctx).
		Where("item_type = ? AND item_id = ?", itemType, itemID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

func deleteByID(ctx context.Context, db *gorm.DB, model interface{}, id uint) error {
	result := db.WithContext(ctx).Delete(model, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// adjustLikes changes the like counter in a single UPDATE. The counter never
// drops below zero.
func adjustLikes(ctx context.Context, db *gorm.DB, model interface{}, id uint, delta int) (int, error) {
	result := db.WithContext(ctx).Model(model).
		Where("id = ?", id).
		UpdateColumn("likes", gorm.Expr("CASE WHEN likes + ? < 0 THEN 0 ELSE likes + ? END", delta, delta))
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update likes: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, ErrNotFound
	}

	var likes []int
	if err := db.WithContext(ctx).Model(model).Where("id = ?", id).Pluck("likes", &likes).Error; err != nil {
		return 0, fmt.Errorf("failed to read likes: %w", err)
	}
	if len(likes) == 0 {
		return 0, ErrNotFound
	}
	return likes[0], nil
}
