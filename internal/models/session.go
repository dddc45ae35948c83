package models

import "time"

// One concrete meeting instance belonging to a booking. Sessions past
// the anchor of a package have no date until a scheduling surface
// outside this core assigns one.
type Session struct {
	ID        uint  `gorm:"primaryKey" json:"id"`
	BookingID *uint `gorm:"index" json:"booking_id"`

	TeacherID uint `gorm:"index;not null" json:"teacher_id"`
	StudentID uint `gorm:"index;not null" json:"student_id"`

	SessionNumber int `gorm:"not null" json:"session_number"`

	Date      *time.Time `json:"date"`
	StartTime *string    `gorm:"size:5" json:"start_time"`
	EndTime   *string    `gorm:"size:5" json:"end_time"`

	DurationMin int `gorm:"default:60" json:"duration_min"`

	Status string `gorm:"size:20;default:'scheduled'" json:"status"`

	// Opaque conferencing access tokens, populated externally.
	JoinToken string `gorm:"size:255" json:"join_token"`
	HostToken string `gorm:"size:255" json:"host_token"`

	CancelledAt *time.Time `json:"cancelled_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
