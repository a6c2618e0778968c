package models

import (
	"time"

	"gorm.io/gorm"
)

// Order statuses
const (
	StatusPending        = "Pending"
	StatusPriceSubmitted = "Price Submitted"
	StatusApproved       = "Approved"
)

// Delivery statuses, in the only order they may be reached
const (
	DeliveryPending   = "Pending"
	DeliveryShipped   = "Shipped"
	DeliveryCompleted = "Completed"
)

// MainStudioName is the implicit fulfiller of shop orders whose product has no creator
const MainStudioName = "Art Void (Main)"

// Order represents a shop purchase or a commission request
type Order struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ProductName     string    `gorm:"not null" json:"product_name"`
	Description     string    `gorm:"type:text" json:"description"`
	Image           *string   `json:"image"`                        // storage key or URL of the reference image
	ImageURL        *string   `gorm:"-" json:"image_url,omitempty"` // computed, resolved by the image service
	CustomerID      *uint     `gorm:"index" json:"customer_id"`     // nil for guest submissions
	CustomerName    string    `gorm:"not null" json:"customer"`     // contact snapshot
	Phone           string    `gorm:"not null" json:"phone"`
	Email           string    `gorm:"not null" json:"email"`
	Address         string    `gorm:"type:text" json:"address"`
	ProductID       *uint     `gorm:"index" json:"product_id"`      // set only for direct shop purchases
	GalleryItemID   *uint     `gorm:"index" json:"gallery_item_id"` // set when commissioning "like this piece"
	CreatorID       *uint     `gorm:"index" json:"creator_id"`      // nil means open task
	Creator         *User     `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Fulfiller       string    `gorm:"-" json:"fulfiller,omitempty"`
	Price           *float64  `json:"price"` // nil means awaiting negotiation
	EstimatedDays   *int      `json:"estimated_days"`
	Status          string    `gorm:"not null;default:'Pending'" json:"status"`
	DeliveryStatus  string    `gorm:"not null;default:'Pending'" json:"delivery_status"`
	CommissionRate  *float64  `json:"commission_rate"` // rate in effect when the price was set
	AdminCommission *float64  `json:"admin_commission"`
	ArtistEarnings  *float64  `json:"artist_earnings"`
	Version         uint      `gorm:"not null;default:1" json:"version"`
	Date            string    `json:"date"` // human-readable creation date
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// IsOpenTask reports whether the order is a commission request nobody has claimed
func (o *Order) IsOpenTask() bool {
	return o.CreatorID == nil && o.ProductID == nil
}

// IsShopOrder reports whether the order is a direct purchase of a catalog product
func (o *Order) IsShopOrder() bool {
	return o.ProductID != nil
}

// AfterFind fills computed fields after loading from the database
func (o *Order) AfterFind(tx *gorm.DB) error {
	o.fillFulfiller()
	return nil
}

func (o *Order) fillFulfiller() {
	switch {
	case o.Creator != nil:
		o.Fulfiller = o.Creator.Name
	case o.CreatorID == nil && o.ProductID != nil:
		o.Fulfiller = MainStudioName
	default:
		o.Fulfiller = ""
	}
}
