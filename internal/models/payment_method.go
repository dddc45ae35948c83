package models

import "time"

// Saved payment instrument reference. Card data itself lives at the
// gateway; we only keep the token.
type PaymentMethod struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"index;not null" json:"user_id"`

	Provider  string `gorm:"size:50;not null" json:"provider"`
	CardToken string `gorm:"size:255;not null" json:"-"`
	Last4     string `gorm:"size:4" json:"last4"`

	Default bool `gorm:"default:false" json:"default"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
