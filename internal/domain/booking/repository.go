package booking

import (
	"context"
	"time"

	"github.com/edumatch/tutor-scheduler/internal/domain/schedule"
	"github.com/edumatch/tutor-scheduler/internal/models"
)

type Repository interface {
	// -------- Rate resolution --------
	GetCourse(
		ctx context.Context,
		courseID uint,
	) (*models.Course, error)

	GetTeacherProfile(
		ctx context.Context,
		teacherID uint,
	) (*models.TeacherProfile, error)

	// -------- Slots --------
	GetSlot(
		ctx context.Context,
		slotID uint,
	) (*models.AvailabilitySlot, error)

	HasDuplicateSlot(
		ctx context.Context,
		teacherID uint,
		scope schedule.Scope,
		weekday *int,
		date *time.Time,
		startTime string,
	) (bool, error)

	CreateSlot(
		ctx context.Context,
		slot *models.AvailabilitySlot,
	) error

	ListSlots(
		ctx context.Context,
		teacherID uint,
		onlyOpen bool,
	) ([]models.AvailabilitySlot, error)

	DeleteSlot(
		ctx context.Context,
		slotID uint,
	) error

	// DeleteOpenSlotsForDay removes unbooked slots matching
	// (teacher, scope, weekday). Booked slots stay untouched.
	DeleteOpenSlotsForDay(
		ctx context.Context,
		teacherID uint,
		scope schedule.Scope,
		weekday int,
	) error

	// ReserveSlot must run inside a Transaction; it locks the row and
	// fails with "slot_unavailable" if the slot is no longer free.
	ReserveSlot(
		ctx context.Context,
		slotID uint,
		bookingID uint,
	) error

	// ReleaseSlots clears the booked state on every slot held by the
	// booking; idempotent.
	ReleaseSlots(
		ctx context.Context,
		bookingID uint,
	) error

	// -------- Booking --------
	CreateBooking(
		ctx context.Context,
		b *models.Booking,
	) error

	GetBooking(
		ctx context.Context,
		bookingID uint,
	) (*models.Booking, error)

	GetBookingForStudent(
		ctx context.Context,
		bookingID uint,
		studentID uint,
	) (*models.Booking, error)

	UpdateBooking(
		ctx context.Context,
		b *models.Booking,
	) error

	ListBookingsForUser(
		ctx context.Context,
		userID uint,
		role string,
	) ([]models.Booking, error)

	// -------- Sessions --------
	CreateSessions(
		ctx context.Context,
		sessions []models.Session,
	) error

	CancelScheduledSessions(
		ctx context.Context,
		bookingID uint,
		now time.Time,
	) error

	ListSessions(
		ctx context.Context,
		bookingID uint,
	) ([]models.Session, error)

	// -------- Payments --------
	CreatePayment(
		ctx context.Context,
		p *models.Payment,
	) error

	GetPaymentByBooking(
		ctx context.Context,
		bookingID uint,
	) (*models.Payment, error)

	UpdatePayment(
		ctx context.Context,
		p *models.Payment,
	) error

	// -------- Transaction --------
	// Transaction runs fn against a repository bound to one database
	// transaction; any error rolls the whole unit back.
	Transaction(
		ctx context.Context,
		fn func(Repository) error,
	) error
}
