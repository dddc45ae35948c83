package models

import "time"

// One-hour window of declared teacher availability.
//
// Exactly one of Weekday / Date is set: slots derived from a weekly
// template carry a day-of-week (1=Monday .. 7=Sunday), slots derived
// from a marketplace order carry an explicit calendar date.
//
// Identity over (teacher, scope, day, start) is enforced by the
// idx_slot_identity unique index; it is an expression index over the
// nullable columns and is created in internal/db alongside the
// migration.
type AvailabilitySlot struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	TeacherID uint `gorm:"index;not null" json:"teacher_id"`

	// Scope: both nil = personal, CourseID set = course-bound,
	// OrderID set = order-bound.
	CourseID *uint `gorm:"index" json:"course_id"`
	OrderID  *uint `gorm:"index" json:"order_id"`

	Weekday *int       `json:"weekday"`
	Date    *time.Time `json:"date"`

	StartTime string `gorm:"size:5;not null" json:"start_time"` // HH:MM
	EndTime   string `gorm:"size:5;not null" json:"end_time"`

	Available bool `gorm:"default:true" json:"available"`
	Booked    bool `gorm:"default:false" json:"booked"`

	BookingID *uint `gorm:"index" json:"booking_id"`

	Recurrence string `gorm:"size:10;default:'none'" json:"recurrence"` // none | weekly | daily

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
