package models

import (
	"time"
)

// Message is a contact or inquiry message left through the site
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `gorm:"index" json:"user_id,omitempty"` // set when the sender was signed in
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"not null" json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for the Message model
func (Message) TableName() string {
	return "messages"
}
