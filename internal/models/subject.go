package models

import "time"

type Subject struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`

	CreatedAt time.Time `json:"created_at"`
}

type Language struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"size:8;uniqueIndex;not null" json:"code"`
	Name string `gorm:"size:50;not null" json:"name"`

	CreatedAt time.Time `json:"created_at"`
}
