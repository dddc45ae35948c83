package models

import "time"

type Course struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	TeacherID uint `gorm:"index;not null" json:"teacher_id"`

	Title       string `gorm:"size:150;not null" json:"title"`
	Description string `gorm:"size:500" json:"description"`

	PricePerHour       float64 `gorm:"type:numeric(10,2);not null" json:"price_per_hour"`
	SessionDurationMin int     `gorm:"default:60" json:"session_duration_min"`

	Active bool `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
