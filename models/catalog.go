package models

import "time"

// Comment item types
const (
	ItemTypeProduct = "product"
	ItemTypeGallery = "gallery"
)

// Gallery media types
const (
	MediaImage = "image"
	MediaVideo = "video"
)

// Product is a priced shop item
type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Price       float64   `gorm:"not null;check:price > 0" json:"price"`
	ImageKey    *string   `json:"image_key"`
	ImageURL    *string   `gorm:"-" json:"image_url,omitempty"`
	CreatorID   *uint     `gorm:"index" json:"creator_id"` // nil means the main studio owns it
	Likes       int       `gorm:"not null;default:0" json:"likes"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// GalleryItem is a showcased piece of past work
type GalleryItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	ImageKey    *string   `json:"image_key"`
	ImageURL    *string   `gorm:"-" json:"image_url,omitempty"`
	MediaType   string    `gorm:"not null;default:'image'" json:"media_type"`
	CreatorID   *uint     `gorm:"index" json:"creator_id"`
	Likes       int       `gorm:"not null;default:0" json:"likes"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for the GalleryItem model
func (GalleryItem) TableName() string {
	return "gallery"
}

// Comment is a public comment on a product or gallery item
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ItemType  string    `gorm:"not null;index:idx_comments_item,priority:1" json:"item_type"`
	ItemID    uint      `gorm:"not null;index:idx_comments_item,priority:2" json:"item_id"`
	UserID    *uint     `json:"user_id,omitempty"`
	Name      string    `gorm:"not null" json:"name"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the Comment model
func (Comment) TableName() string {
	return "comments"
}
