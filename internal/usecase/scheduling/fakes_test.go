package scheduling_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/edumatch/tutor-scheduler/internal/audit"
	domain "github.com/edumatch/tutor-scheduler/internal/domain/booking"
	"github.com/edumatch/tutor-scheduler/internal/domain/schedule"
	"github.com/edumatch/tutor-scheduler/internal/httperr"
	"github.com/edumatch/tutor-scheduler/internal/models"
)

// ======================================================
// In-memory repository
// ======================================================

// memStore holds the rows; memRepo adds transaction semantics and
// failure injection on top so the orchestrators can be exercised
// without a database.
type memStore struct {
	slots    map[uint]*models.AvailabilitySlot
	bookings map[uint]*models.Booking
	sessions map[uint]*models.Session
	payments map[uint]*models.Payment
	courses  map[uint]*models.Course
	profiles map[uint]*models.TeacherProfile // keyed by user id
	nextID   uint
}

func newMemStore() *memStore {
	return &memStore{
		slots:    map[uint]*models.AvailabilitySlot{},
		bookings: map[uint]*models.Booking{},
		sessions: map[uint]*models.Session{},
		payments: map[uint]*models.Payment{},
		courses:  map[uint]*models.Course{},
		profiles: map[uint]*models.TeacherProfile{},
	}
}

func (s *memStore) id() uint {
	s.nextID++
	return s.nextID
}

func (s *memStore) clone() *memStore {
	c := newMemStore()
	c.nextID = s.nextID
	for id, v := range s.slots {
		cp := *v
		c.slots[id] = &cp
	}
	for id, v := range s.bookings {
		cp := *v
		c.bookings[id] = &cp
	}
	for id, v := range s.sessions {
		cp := *v
		c.sessions[id] = &cp
	}
	for id, v := range s.payments {
		cp := *v
		c.payments[id] = &cp
	}
	for id, v := range s.courses {
		cp := *v
		c.courses[id] = &cp
	}
	for id, v := range s.profiles {
		cp := *v
		c.profiles[id] = &cp
	}
	return c
}

var _ domain.Repository = (*memRepo)(nil)

type memRepo struct {
	store *memStore

	// failOn maps a repository method name to the error it should
	// return, simulating a mid-transaction failure.
	failOn map[string]error
}

func newMemRepo() *memRepo {
	return &memRepo{
		store:  newMemStore(),
		failOn: map[string]error{},
	}
}

func (r *memRepo) fail(method string) error {
	return r.failOn[method]
}

// -------- Seeding helpers --------

func (r *memRepo) addProfile(userID uint, individual, group float64, tz string) {
	r.store.profiles[userID] = &models.TeacherProfile{
		ID:                  r.store.id(),
		UserID:              userID,
		IndividualHourPrice: individual,
		GroupHourPrice:      group,
		Timezone:            tz,
		Active:              true,
	}
}

func (r *memRepo) addCourse(teacherID uint, pricePerHour float64, durationMin int) uint {
	c := &models.Course{
		ID:                 r.store.id(),
		TeacherID:          teacherID,
		Title:              "Algebra",
		PricePerHour:       pricePerHour,
		SessionDurationMin: durationMin,
		Active:             true,
	}
	r.store.courses[c.ID] = c
	return c.ID
}

func (r *memRepo) addWeekdaySlot(teacherID uint, weekday int, start string) uint {
	w := weekday
	s := &models.AvailabilitySlot{
		ID:         r.store.id(),
		TeacherID:  teacherID,
		Weekday:    &w,
		StartTime:  start,
		EndTime:    schedule.EndOfSlot(start),
		Available:  true,
		Recurrence: "weekly",
	}
	r.store.slots[s.ID] = s
	return s.ID
}

// -------- Rate resolution --------

func (r *memRepo) GetCourse(_ context.Context, courseID uint) (*models.Course, error) {
	c, ok := r.store.courses[courseID]
	if !ok || !c.Active {
		return nil, httperr.ErrBusiness("course_not_found")
	}
	cp := *c
	return &cp, nil
}

func (r *memRepo) GetTeacherProfile(_ context.Context, teacherID uint) (*models.TeacherProfile, error) {
	p, ok := r.store.profiles[teacherID]
	if !ok || !p.Active {
		return nil, httperr.ErrBusiness("teacher_not_found")
	}
	cp := *p
	return &cp, nil
}

// -------- Slots --------

func (r *memRepo) GetSlot(_ context.Context, slotID uint) (*models.AvailabilitySlot, error) {
	s, ok := r.store.slots[slotID]
	if !ok {
		return nil, httperr.ErrBusiness("slot_not_found")
	}
	cp := *s
	return &cp, nil
}

func (r *memRepo) HasDuplicateSlot(
	_ context.Context,
	teacherID uint,
	scope schedule.Scope,
	weekday *int,
	date *time.Time,
	startTime string,
) (bool, error) {
	for _, s := range r.store.slots {
		if s.TeacherID != teacherID || s.StartTime != startTime {
			continue
		}
		if !schedule.ScopeFrom(s.CourseID, s.OrderID).Equal(scope) {
			continue
		}
		if weekday != nil && s.Weekday != nil && *s.Weekday == *weekday {
			return true, nil
		}
		if date != nil && s.Date != nil && sameDay(*s.Date, *date) {
			return true, nil
		}
	}
	return false, nil
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// CreateSlot mirrors the production repository: an insert colliding
// with an existing slot identity fails as "duplicate_slot" the way the
// unique index reports it.
func (r *memRepo) CreateSlot(_ context.Context, slot *models.AvailabilitySlot) error {
	if err := r.fail("CreateSlot"); err != nil {
		return err
	}
	for _, s := range r.store.slots {
		if s.TeacherID != slot.TeacherID || s.StartTime != slot.StartTime {
			continue
		}
		if !schedule.ScopeFrom(s.CourseID, s.OrderID).Equal(schedule.ScopeFrom(slot.CourseID, slot.OrderID)) {
			continue
		}
		sameWeekday := s.Weekday != nil && slot.Weekday != nil && *s.Weekday == *slot.Weekday
		sameDate := s.Date != nil && slot.Date != nil && sameDay(*s.Date, *slot.Date)
		if sameWeekday || sameDate {
			return httperr.ErrBusiness("duplicate_slot")
		}
	}
	slot.ID = r.store.id()
	cp := *slot
	r.store.slots[slot.ID] = &cp
	return nil
}

func (r *memRepo) ListSlots(_ context.Context, teacherID uint, onlyOpen bool) ([]models.AvailabilitySlot, error) {
	var out []models.AvailabilitySlot
	for _, s := range r.store.slots {
		if s.TeacherID != teacherID {
			continue
		}
		if onlyOpen && (!s.Available || s.Booked) {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memRepo) DeleteSlot(_ context.Context, slotID uint) error {
	delete(r.store.slots, slotID)
	return nil
}

func (r *memRepo) DeleteOpenSlotsForDay(
	_ context.Context,
	teacherID uint,
	scope schedule.Scope,
	weekday int,
) error {
	for id, s := range r.store.slots {
		if s.TeacherID != teacherID || s.Booked || s.Weekday == nil || *s.Weekday != weekday {
			continue
		}
		if !schedule.ScopeFrom(s.CourseID, s.OrderID).Equal(scope) {
			continue
		}
		delete(r.store.slots, id)
	}
	return nil
}

func (r *memRepo) ReserveSlot(_ context.Context, slotID uint, bookingID uint) error {
	if err := r.fail("ReserveSlot"); err != nil {
		return err
	}
	s, ok := r.store.slots[slotID]
	if !ok {
		return httperr.ErrBusiness("slot_not_found")
	}
	if !s.Available || s.Booked {
		return httperr.ErrBusinessDetails("slot_unavailable", map[string]any{
			"slot_id": slotID,
		})
	}
	s.Available = false
	s.Booked = true
	id := bookingID
	s.BookingID = &id
	return nil
}

func (r *memRepo) ReleaseSlots(_ context.Context, bookingID uint) error {
	for _, s := range r.store.slots {
		if s.BookingID == nil || *s.BookingID != bookingID {
			continue
		}
		s.Available = true
		s.Booked = false
		s.BookingID = nil
	}
	return nil
}

// -------- Booking --------

func (r *memRepo) CreateBooking(_ context.Context, b *models.Booking) error {
	if err := r.fail("CreateBooking"); err != nil {
		return err
	}
	b.ID = r.store.id()
	cp := *b
	r.store.bookings[b.ID] = &cp
	return nil
}

func (r *memRepo) GetBooking(_ context.Context, bookingID uint) (*models.Booking, error) {
	b, ok := r.store.bookings[bookingID]
	if !ok {
		return nil, httperr.ErrBusiness("booking_not_found")
	}
	cp := *b
	return &cp, nil
}

func (r *memRepo) GetBookingForStudent(_ context.Context, bookingID, studentID uint) (*models.Booking, error) {
	b, ok := r.store.bookings[bookingID]
	if !ok || b.StudentID != studentID {
		return nil, httperr.ErrBusiness("booking_not_found")
	}
	cp := *b
	return &cp, nil
}

func (r *memRepo) UpdateBooking(_ context.Context, b *models.Booking) error {
	if _, ok := r.store.bookings[b.ID]; !ok {
		return httperr.ErrBusiness("booking_not_found")
	}
	cp := *b
	r.store.bookings[b.ID] = &cp
	return nil
}

func (r *memRepo) ListBookingsForUser(_ context.Context, userID uint, role string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range r.store.bookings {
		if role == "teacher" && b.TeacherID == userID {
			out = append(out, *b)
		}
		if role != "teacher" && b.StudentID == userID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// -------- Sessions --------

func (r *memRepo) CreateSessions(_ context.Context, sessions []models.Session) error {
	if err := r.fail("CreateSessions"); err != nil {
		return err
	}
	for i := range sessions {
		sessions[i].ID = r.store.id()
		cp := sessions[i]
		r.store.sessions[cp.ID] = &cp
	}
	return nil
}

func (r *memRepo) CancelScheduledSessions(_ context.Context, bookingID uint, now time.Time) error {
	for _, s := range r.store.sessions {
		if s.BookingID == nil || *s.BookingID != bookingID || s.Status != "scheduled" {
			continue
		}
		s.Status = "cancelled"
		t := now
		s.CancelledAt = &t
	}
	return nil
}

func (r *memRepo) ListSessions(_ context.Context, bookingID uint) ([]models.Session, error) {
	var out []models.Session
	for _, s := range r.store.sessions {
		if s.BookingID != nil && *s.BookingID == bookingID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionNumber < out[j].SessionNumber })
	return out, nil
}

// -------- Payments --------

func (r *memRepo) CreatePayment(_ context.Context, p *models.Payment) error {
	if err := r.fail("CreatePayment"); err != nil {
		return err
	}
	p.ID = r.store.id()
	cp := *p
	r.store.payments[p.ID] = &cp
	return nil
}

func (r *memRepo) GetPaymentByBooking(_ context.Context, bookingID uint) (*models.Payment, error) {
	for _, p := range r.store.payments {
		if p.BookingID == bookingID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, httperr.ErrBusiness("payment_not_found")
}

func (r *memRepo) UpdatePayment(_ context.Context, p *models.Payment) error {
	if _, ok := r.store.payments[p.ID]; !ok {
		return httperr.ErrBusiness("payment_not_found")
	}
	cp := *p
	r.store.payments[p.ID] = &cp
	return nil
}

// -------- Transaction --------

func (r *memRepo) Transaction(_ context.Context, fn func(domain.Repository) error) error {
	snapshot := r.store.clone()
	if err := fn(r); err != nil {
		r.store = snapshot
		return err
	}
	return nil
}

// ======================================================
// Fake collaborators
// ======================================================

type fakeMethods struct {
	has bool
	err error
}

func (f *fakeMethods) HasSavedMethod(context.Context, uint) (bool, error) {
	return f.has, f.err
}

type refundCall struct {
	paymentID uint
	amount    float64
}

type fakeGateway struct {
	err   error
	calls []refundCall
}

func (f *fakeGateway) Refund(_ context.Context, p *models.Payment, amount float64) error {
	f.calls = append(f.calls, refundCall{paymentID: p.ID, amount: amount})
	return f.err
}

// blindRepo hides committed slots from the duplicate pre-check,
// imitating a racing writer whose insert lands between this batch's
// check and its own insert.
type blindRepo struct {
	domain.Repository
}

func (blindRepo) HasDuplicateSlot(context.Context, uint, schedule.Scope, *int, *time.Time, string) (bool, error) {
	return false, nil
}

// mutexLocker is an in-process Locker with real try-lock semantics.
type mutexLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func newMutexLocker() *mutexLocker {
	return &mutexLocker{held: map[string]bool{}}
}

func (l *mutexLocker) Acquire(_ context.Context, key string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *mutexLocker) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}

// blockedLocker never grants the lock.
type blockedLocker struct{}

func (blockedLocker) Acquire(context.Context, string, time.Duration) (bool, error) {
	return false, nil
}

func (blockedLocker) Release(context.Context, string) error { return nil }

func testDispatcher() *audit.Dispatcher {
	return audit.NewDispatcher(audit.New(nil))
}
