package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleCustomer = "customer"
	RoleEmblos   = "emblos"
	RoleAdmin    = "admin"
)

// User represents a user in the system (customer, emblos artist or admin)
type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Auth0ID       *string        `gorm:"uniqueIndex" json:"auth0_id,omitempty"` // identity provider subject, nil for local accounts
	Name          string         `gorm:"not null" json:"name"`
	Email         string         `gorm:"uniqueIndex;not null" json:"email"`
	Role          string         `gorm:"not null;default:'customer'" json:"role"`
	PasswordHash  string         `json:"-"`
	LikedProducts []uint         `gorm:"serializer:json" json:"liked_products"`
	LikedGallery  []uint         `gorm:"serializer:json" json:"liked_gallery"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// ValidRole reports whether role is one of the known roles
func ValidRole(role string) bool {
	switch role {
	case RoleCustomer, RoleEmblos, RoleAdmin:
		return true
	}
	return false
}
