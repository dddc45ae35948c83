package models

import "time"

// Published rates consumed when a booking is made directly against the
// teacher rather than against a catalog course.
type TeacherProfile struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`
	User   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	Headline string `gorm:"size:255" json:"headline"`

	IndividualHourPrice float64 `gorm:"type:numeric(10,2);default:0" json:"individual_hour_price"`
	GroupHourPrice      float64 `gorm:"type:numeric(10,2);default:0" json:"group_hour_price"`

	Timezone string `gorm:"size:64" json:"timezone"`
	Active   bool   `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
