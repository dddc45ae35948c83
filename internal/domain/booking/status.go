package booking

import "github.com/edumatch/tutor-scheduler/internal/httperr"

// ===============================
// Booking Status
// ===============================

type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusConfirmed      Status = "confirmed"
	StatusInProgress     Status = "in_progress"
	StatusCompleted      Status = "completed"
	StatusCancelled      Status = "cancelled"
)

type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

type SessionType string

const (
	TypeSingle  SessionType = "single"
	TypePackage SessionType = "package"
)

// ===============================
// Validations
// ===============================

// CanCancel rejects cancellation of terminal bookings.
func CanCancel(current Status) error {
	switch current {
	case StatusPendingPayment, StatusConfirmed, StatusInProgress:
		return nil
	default:
		return httperr.ErrBusinessDetails("not_cancellable", map[string]any{
			"status": string(current),
		})
	}
}

func IsValidSessionType(t string) bool {
	return t == string(TypeSingle) || t == string(TypePackage)
}

func InitialStatus() Status {
	return StatusPendingPayment
}
