package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/edumatch/tutor-scheduler/internal/domain/booking"
	"github.com/edumatch/tutor-scheduler/internal/domain/schedule"
	"github.com/edumatch/tutor-scheduler/internal/httperr"
	"github.com/edumatch/tutor-scheduler/internal/models"
)

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

// --------------------------------------------------
// Rate resolution
// --------------------------------------------------

func (r *BookingGormRepository) GetCourse(
	ctx context.Context,
	courseID uint,
) (*models.Course, error) {

	var course models.Course
	if err := r.db.WithContext(ctx).
		Where("id = ? AND active = true", courseID).
		First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusiness("course_not_found")
		}
		return nil, err
	}
	return &course, nil
}

func (r *BookingGormRepository) GetTeacherProfile(
	ctx context.Context,
	teacherID uint,
) (*models.TeacherProfile, error) {

	var profile models.TeacherProfile
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND active = true", teacherID).
		First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusiness("teacher_not_found")
		}
		return nil, err
	}
	return &profile, nil
}

// --------------------------------------------------
// Slots
// --------------------------------------------------

func (r *BookingGormRepository) GetSlot(
	ctx context.Context,
	slotID uint,
) (*models.AvailabilitySlot, error) {

	var slot models.AvailabilitySlot
	if err := r.db.WithContext(ctx).First(&slot, slotID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusiness("slot_not_found")
		}
		return nil, err
	}
	return &slot, nil
}

func (r *BookingGormRepository) HasDuplicateSlot(
	ctx context.Context,
	teacherID uint,
	scope schedule.Scope,
	weekday *int,
	date *time.Time,
	startTime string,
) (bool, error) {

	q := r.db.WithContext(ctx).
		Model(&models.AvailabilitySlot{}).
		Where("teacher_id = ? AND start_time = ?", teacherID, startTime)

	q = scopeWhere(q, scope)

	switch {
	case weekday != nil:
		q = q.Where("weekday = ?", *weekday)
	case date != nil:
		q = q.Where("date >= ? AND date < ?", dayStart(*date), dayStart(*date).AddDate(0, 0, 1))
	default:
		return false, httperr.ErrBusiness("missing_day_or_date")
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

// CreateSlot inserts a slot row. Two racing batches can both pass the
// duplicate pre-check; the idx_slot_identity unique index catches the
// loser and surfaces it as "duplicate_slot".
func (r *BookingGormRepository) CreateSlot(
	ctx context.Context,
	slot *models.AvailabilitySlot,
) error {
	if err := r.db.WithContext(ctx).Create(slot).Error; err != nil {
		if isUniqueViolation(err) {
			return httperr.ErrBusiness("duplicate_slot")
		}
		return err
	}
	return nil
}

func (r *BookingGormRepository) ListSlots(
	ctx context.Context,
	teacherID uint,
	onlyOpen bool,
) ([]models.AvailabilitySlot, error) {

	q := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID)

	if onlyOpen {
		q = q.Where("available = true AND booked = false")
	}

	var slots []models.AvailabilitySlot
	if err := q.
		Order("weekday ASC, date ASC, start_time ASC").
		Find(&slots).Error; err != nil {
		return nil, err
	}

	return slots, nil
}

func (r *BookingGormRepository) DeleteSlot(
	ctx context.Context,
	slotID uint,
) error {
	return r.db.WithContext(ctx).Delete(&models.AvailabilitySlot{}, slotID).Error
}

func (r *BookingGormRepository) DeleteOpenSlotsForDay(
	ctx context.Context,
	teacherID uint,
	scope schedule.Scope,
	weekday int,
) error {

	q := r.db.WithContext(ctx).
		Where("teacher_id = ? AND weekday = ? AND booked = false", teacherID, weekday)

	q = scopeWhere(q, scope)

	return q.Delete(&models.AvailabilitySlot{}).Error
}

func (r *BookingGormRepository) ReserveSlot(
	ctx context.Context,
	slotID uint,
	bookingID uint,
) error {

	var slot models.AvailabilitySlot
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&slot, slotID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperr.ErrBusinessDetails("slot_unavailable", map[string]any{
				"slot_id": slotID,
			})
		}
		return err
	}

	if !slot.Available || slot.Booked {
		return httperr.ErrBusinessDetails("slot_unavailable", map[string]any{
			"slot_id": slotID,
		})
	}

	return r.db.WithContext(ctx).
		Model(&slot).
		Updates(map[string]any{
			"available":  false,
			"booked":     true,
			"booking_id": bookingID,
		}).Error
}

func (r *BookingGormRepository) ReleaseSlots(
	ctx context.Context,
	bookingID uint,
) error {

	return r.db.WithContext(ctx).
		Model(&models.AvailabilitySlot{}).
		Where("booking_id = ?", bookingID).
		Updates(map[string]any{
			"available":  true,
			"booked":     false,
			"booking_id": nil,
		}).Error
}

// --------------------------------------------------
// Booking
// --------------------------------------------------

func (r *BookingGormRepository) CreateBooking(
	ctx context.Context,
	b *models.Booking,
) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BookingGormRepository) GetBooking(
	ctx context.Context,
	bookingID uint,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).First(&b, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusiness("booking_not_found")
		}
		return nil, err
	}
	return &b, nil
}

func (r *BookingGormRepository) GetBookingForStudent(
	ctx context.Context,
	bookingID uint,
	studentID uint,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).
		Where("id = ? AND student_id = ?", bookingID, studentID).
		First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusiness("booking_not_found")
		}
		return nil, err
	}
	return &b, nil
}

func (r *BookingGormRepository) UpdateBooking(
	ctx context.Context,
	b *models.Booking,
) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *BookingGormRepository) ListBookingsForUser(
	ctx context.Context,
	userID uint,
	role string,
) ([]models.Booking, error) {

	q := r.db.WithContext(ctx)
	if role == "teacher" {
		q = q.Where("teacher_id = ?", userID)
	} else {
		q = q.Where("student_id = ?", userID)
	}

	var bookings []models.Booking
	if err := q.
		Order("created_at DESC").
		Find(&bookings).Error; err != nil {
		return nil, err
	}

	return bookings, nil
}

// --------------------------------------------------
// Sessions
// --------------------------------------------------

func (r *BookingGormRepository) CreateSessions(
	ctx context.Context,
	sessions []models.Session,
) error {
	if len(sessions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&sessions).Error
}

func (r *BookingGormRepository) CancelScheduledSessions(
	ctx context.Context,
	bookingID uint,
	now time.Time,
) error {

	return r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("booking_id = ? AND status = ?", bookingID, "scheduled").
		Updates(map[string]any{
			"status":       "cancelled",
			"cancelled_at": now,
		}).Error
}

func (r *BookingGormRepository) ListSessions(
	ctx context.Context,
	bookingID uint,
) ([]models.Session, error) {

	var sessions []models.Session
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("session_number ASC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}

	return sessions, nil
}

// --------------------------------------------------
// Payments
// --------------------------------------------------

func (r *BookingGormRepository) CreatePayment(
	ctx context.Context,
	p *models.Payment,
) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *BookingGormRepository) GetPaymentByBooking(
	ctx context.Context,
	bookingID uint,
) (*models.Payment, error) {

	var p models.Payment
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusiness("payment_not_found")
		}
		return nil, err
	}
	return &p, nil
}

func (r *BookingGormRepository) UpdatePayment(
	ctx context.Context,
	p *models.Payment,
) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// --------------------------------------------------
// Transaction
// --------------------------------------------------

func (r *BookingGormRepository) Transaction(
	ctx context.Context,
	fn func(domain.Repository) error,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewBookingGormRepository(tx))
	})
}

// --------------------------------------------------
// Helpers
// --------------------------------------------------

func scopeWhere(q *gorm.DB, scope schedule.Scope) *gorm.DB {
	courseID, orderID := scope.Columns()

	if courseID != nil {
		q = q.Where("course_id = ?", *courseID)
	} else {
		q = q.Where("course_id IS NULL")
	}

	if orderID != nil {
		q = q.Where("order_id = ?", *orderID)
	} else {
		q = q.Where("order_id IS NULL")
	}

	return q
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// 23505 is the postgres unique_violation class.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Compile-time check
var _ domain.Repository = (*BookingGormRepository)(nil)
