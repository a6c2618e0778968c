package repository

import (
	"context"
	"fmt"

	"github.com/artvoid/artvoid-api/models"
	"gorm.io/gorm"
)

// UserRepository persists user profiles
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByAuth0ID(ctx context.Context, auth0ID string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateProfile(ctx context.Context, user *models.User, updates map[string]interface{}) error
	UpdateLikes(ctx context.Context, id uint, products, gallery []uint) error
	UpdateRole(ctx context.Context, id uint, role string) error
}

type gormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a GORM user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.Role == "" {
		user.Role = models.RoleCustomer
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *gormUserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *gormUserRepository) FindByAuth0ID(ctx context.Context, auth0ID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *gormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *gormUserRepository) List(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *gormUserRepository) UpdateProfile(ctx context.Context, user *models.User, updates map[string]interface{}) error {
	if err := r.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *gormUserRepository) UpdateLikes(ctx context.Context, id uint, products, gallery []uint) error {
	if products == nil {
		products = []uint{}
	}
	if gallery == nil {
		gallery = []uint{}
	}
	user := models.User{ID: id}
	result := r.db.WithContext(ctx).Model(&user).
		Select("liked_products", "liked_gallery").
		Updates(&models.User{LikedProducts: products, LikedGallery: gallery})
	if result.Error != nil {
		return fmt.Errorf("failed to update likes: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormUserRepository) UpdateRole(ctx context.Context, id uint, role string) error {
	result := r.db.WithContext(ctx).Model(&models.User{ID: id}).Update("role", role)
	if result.Error != nil {
		return fmt.Errorf("failed to update role: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
