package models

import "time"

// SettingsID is the primary key of the singleton settings row
const SettingsID = 1

// Settings holds admin-managed configuration
type Settings struct {
	ID                uint      `gorm:"primaryKey" json:"-"`
	CommissionRate    float64   `gorm:"not null" json:"commission_rate"` // percent retained by the platform
	AdminPasswordHash string    `json:"-"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Settings model
func (Settings) TableName() string {
	return "settings"
}

// All returns every model for auto-migration
func All() []interface{} {
	return []interface{}{
		&User{},
		&Product{},
		&GalleryItem{},
		&Comment{},
		&Message{},
		&Order{},
		&Settings{},
	}
}
