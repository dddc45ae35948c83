package models

import "time"

type Booking struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Reference string `gorm:"size:20;uniqueIndex;not null" json:"reference"`

	StudentID uint `gorm:"index;not null" json:"student_id"`
	Student   User `gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	TeacherID uint `gorm:"index;not null" json:"teacher_id"`
	Teacher   User `gorm:"foreignKey:TeacherID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	// Either a catalog course or an ad-hoc subject match, never both.
	CourseID   *uint `json:"course_id"`
	SubjectID  *uint `json:"subject_id"`
	LanguageID *uint `json:"language_id"`

	SessionType       string `gorm:"size:10;not null" json:"session_type"` // single | package
	SessionsCount     int    `gorm:"not null" json:"sessions_count"`
	SessionsCompleted int    `gorm:"default:0" json:"sessions_completed"`

	// Anchor session.
	FirstSessionDate time.Time `json:"first_session_date"`
	StartTime        string    `gorm:"size:5" json:"start_time"`
	EndTime          string    `gorm:"size:5" json:"end_time"`
	DurationMin      int       `gorm:"default:60" json:"duration_min"`

	PricePerSession float64 `gorm:"type:numeric(10,2)" json:"price_per_session"`
	Subtotal        float64 `gorm:"type:numeric(10,2)" json:"subtotal"`
	DiscountPercent float64 `gorm:"type:numeric(5,2)" json:"discount_percent"`
	DiscountAmount  float64 `gorm:"type:numeric(10,2)" json:"discount_amount"`
	TotalAmount     float64 `gorm:"type:numeric(10,2)" json:"total_amount"`
	Currency        string  `gorm:"size:3" json:"currency"`

	Status string `gorm:"size:20;default:'pending_payment'" json:"status"`

	CancellationReason *string    `gorm:"size:255" json:"cancellation_reason"`
	CancelledAt        *time.Time `json:"cancelled_at"`
	RefundPercent      int        `gorm:"default:0" json:"refund_percent"`
	RefundAmount       float64    `gorm:"type:numeric(10,2);default:0" json:"refund_amount"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
