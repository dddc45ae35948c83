package models

import "time"

type Payment struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	BookingID uint    `gorm:"uniqueIndex;not null" json:"booking_id"`
	Booking   Booking `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	Amount   float64 `gorm:"type:numeric(10,2);not null" json:"amount"`
	Currency string  `gorm:"size:3" json:"currency"`

	Status         string `gorm:"size:20;default:'pending'" json:"status"`
	TransactionRef string `gorm:"size:64;uniqueIndex;not null" json:"transaction_ref"`

	// Gateway-side payment id, set once the external settlement
	// collaborator confirms capture.
	ProviderPaymentID *int64 `json:"provider_payment_id"`

	RefundStatus *string  `gorm:"size:20" json:"refund_status"` // processing | failed | settled
	RefundAmount *float64 `gorm:"type:numeric(10,2)" json:"refund_amount"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
