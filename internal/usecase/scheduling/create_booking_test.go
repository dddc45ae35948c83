package scheduling_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edumatch/tutor-scheduler/internal/clock"
	"github.com/edumatch/tutor-scheduler/internal/httperr"
	"github.com/edumatch/tutor-scheduler/internal/usecase/scheduling"
)

func ptr[T any](v T) *T { return &v }

// Monday 2026-01-05 10:00 UTC.
var testNow = time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

func newCreateBooking(repo *memRepo, methods *fakeMethods) *scheduling.CreateBooking {
	return scheduling.NewCreateBooking(
		repo,
		methods,
		testDispatcher(),
		clock.Fixed{T: testNow},
		120,
		"USD",
	)
}

func TestCreateBookingPackageFromSlot(t *testing.T) {
	repo := newMemRepo()
	repo.addProfile(3, 120, 100, "")
	slotID := repo.addWeekdaySlot(3, 2, "14:00") // Tuesdays

	uc := newCreateBooking(repo, &fakeMethods{has: false})

	out, err := uc.Execute(context.Background(), scheduling.CreateBookingInput{
		StudentID:     7,
		TeacherID:     ptr(uint(3)),
		SubjectID:     ptr(uint(1)),
		SlotID:        &slotID,
		SessionType:   "package",
		SessionsCount: 10,
	})
	require.NoError(t, err)

	b := out.Booking
	require.Equal(t, "pending_payment", b.Status)
	require.True(t, strings.HasPrefix(b.Reference, "BK-"))
	require.Len(t, b.Reference, 11)

	// Package rates come from the group price.
	require.Equal(t, float64(100), b.PricePerSession)
	require.Equal(t, float64(15), b.DiscountPercent)
	require.Equal(t, float64(1000), b.Subtotal)
	require.Equal(t, float64(150), b.DiscountAmount)
	require.Equal(t, float64(850), b.TotalAmount)
	require.Equal(t, "USD", b.Currency)

	// Tuesday slot resolved from a Monday books tomorrow, not last week.
	require.Equal(t, time.Date(2026, 1, 6, 14, 0, 0, 0, time.UTC), b.FirstSessionDate)
	require.Equal(t, "14:00", b.StartTime)
	require.Equal(t, "15:00", b.EndTime)

	// Slot is held by the booking.
	slot := repo.store.slots[slotID]
	require.True(t, slot.Booked)
	require.False(t, slot.Available)
	require.Equal(t, b.ID, *slot.BookingID)

	// All sessions exist up front; only the anchor is dated.
	sessions, err := repo.ListSessions(context.Background(), b.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 10)
	for i, s := range sessions {
		require.Equal(t, i+1, s.SessionNumber)
		require.Equal(t, "scheduled", s.Status)
	}
	require.NotNil(t, sessions[0].Date)
	for _, s := range sessions[1:] {
		require.Nil(t, s.Date)
	}

	// Pending payment for the discounted total.
	pay, err := repo.GetPaymentByBooking(context.Background(), b.ID)
	require.NoError(t, err)
	require.Equal(t, float64(850), pay.Amount)
	require.Equal(t, "pending", pay.Status)
	require.Equal(t, pay.TransactionRef, out.PaymentReference)

	require.True(t, out.RequiresPaymentMethod)
}

func TestCreateBookingSingleUsesIndividualRate(t *testing.T) {
	repo := newMemRepo()
	repo.addProfile(3, 120, 100, "")

	uc := newCreateBooking(repo, &fakeMethods{has: true})

	out, err := uc.Execute(context.Background(), scheduling.CreateBookingInput{
		StudentID:   7,
		TeacherID:   ptr(uint(3)),
		SubjectID:   ptr(uint(1)),
		Date:        "2026-01-06",
		Time:        "14:00",
		SessionType: "single",
	})
	require.NoError(t, err)

	require.Equal(t, 1, out.Booking.SessionsCount)
	require.Equal(t, float64(120), out.Booking.PricePerSession)
	require.Equal(t, float64(0), out.Booking.DiscountPercent)
	require.Equal(t, float64(120), out.Booking.TotalAmount)
	require.False(t, out.RequiresPaymentMethod)
}

func TestCreateBookingFromCourse(t *testing.T) {
	repo := newMemRepo()
	repo.addProfile(3, 0, 0, "")
	courseID := repo.addCourse(3, 90, 45)

	uc := newCreateBooking(repo, &fakeMethods{})

	out, err := uc.Execute(context.Background(), scheduling.CreateBookingInput{
		StudentID:   7,
		CourseID:    &courseID,
		Date:        "2026-01-06",
		Time:        "2:00 PM",
		SessionType: "single",
	})
	require.NoError(t, err)

	b := out.Booking
	require.Equal(t, uint(3), b.TeacherID)
	require.Equal(t, courseID, *b.CourseID)
	require.Equal(t, 45, b.DurationMin)
	// 90/hr at 45min.
	require.Equal(t, 67.5, b.PricePerSession)
	require.Equal(t, "14:00", b.StartTime)
	require.Equal(t, "14:45", b.EndTime)
}

func TestCreateBookingAdvanceNotice(t *testing.T) {
	newRepo := func() *memRepo {
		repo := newMemRepo()
		repo.addProfile(3, 80, 70, "")
		return repo
	}

	input := func(clockTime string) scheduling.CreateBookingInput {
		return scheduling.CreateBookingInput{
			StudentID:   7,
			TeacherID:   ptr(uint(3)),
			SubjectID:   ptr(uint(1)),
			Date:        "2026-01-05",
			Time:        clockTime,
			SessionType: "single",
		}
	}

	t.Run("under two hours is rejected", func(t *testing.T) {
		uc := newCreateBooking(newRepo(), &fakeMethods{})
		_, err := uc.Execute(context.Background(), input("11:59"))
		require.True(t, httperr.IsBusiness(err, "booking_too_soon"))
		require.Equal(t, 120, httperr.BusinessDetails(err)["min_advance_minutes"])
	})

	t.Run("exactly two hours is allowed", func(t *testing.T) {
		uc := newCreateBooking(newRepo(), &fakeMethods{})
		_, err := uc.Execute(context.Background(), input("12:00"))
		require.NoError(t, err)
	})

	t.Run("over two hours is allowed", func(t *testing.T) {
		uc := newCreateBooking(newRepo(), &fakeMethods{})
		_, err := uc.Execute(context.Background(), input("12:01"))
		require.NoError(t, err)
	})
}

func TestCreateBookingSlotNeverResolvesToToday(t *testing.T) {
	repo := newMemRepo()
	repo.addProfile(3, 80, 70, "")
	// Monday 09:00 slot requested on a Monday at 10:00.
	slotID := repo.addWeekdaySlot(3, 1, "09:00")

	uc := newCreateBooking(repo, &fakeMethods{})

	out, err := uc.Execute(context.Background(), scheduling.CreateBookingInput{
		StudentID:   7,
		TeacherID:   ptr(uint(3)),
		SubjectID:   ptr(uint(1)),
		SlotID:      &slotID,
		SessionType: "single",
	})
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC), out.Booking.FirstSessionDate)
}

func TestCreateBookingValidation(t *testing.T) {
	repo := newMemRepo()
	repo.addProfile(3, 80, 70, "")
	courseID := repo.addCourse(3, 90, 60)
	uc := newCreateBooking(repo, &fakeMethods{})
	ctx := context.Background()

	base := scheduling.CreateBookingInput{
		StudentID:   7,
		TeacherID:   ptr(uint(3)),
		SubjectID:   ptr(uint(1)),
		Date:        "2026-01-06",
		Time:        "14:00",
		SessionType: "single",
	}

	t.Run("unknown session type", func(t *testing.T) {
		in := base
		in.SessionType = "subscription"
		_, err := uc.Execute(ctx, in)
		require.True(t, httperr.IsBusiness(err, "invalid_session_type"))
	})

	t.Run("package of one", func(t *testing.T) {
		in := base
		in.SessionType = "package"
		in.SessionsCount = 1
		_, err := uc.Execute(ctx, in)
		require.True(t, httperr.IsBusiness(err, "invalid_sessions_count"))
	})

	t.Run("course and subject together", func(t *testing.T) {
		in := base
		in.CourseID = &courseID
		_, err := uc.Execute(ctx, in)
		require.True(t, httperr.IsBusiness(err, "course_or_subject"))
	})

	t.Run("neither course nor subject", func(t *testing.T) {
		in := base
		in.SubjectID = nil
		_, err := uc.Execute(ctx, in)
		require.True(t, httperr.IsBusiness(err, "missing_course_or_subject"))
	})

	t.Run("no anchor", func(t *testing.T) {
		in := base
		in.Date = ""
		_, err := uc.Execute(ctx, in)
		require.True(t, httperr.IsBusiness(err, "missing_date_or_time"))
	})

	t.Run("bad date", func(t *testing.T) {
		in := base
		in.Date = "06/01/2026"
		_, err := uc.Execute(ctx, in)
		require.True(t, httperr.IsBusiness(err, "invalid_date"))
	})

	t.Run("bad time", func(t *testing.T) {
		in := base
		in.Time = "half past two"
		_, err := uc.Execute(ctx, in)
		require.True(t, httperr.IsBusiness(err, "invalid_time"))
	})
}

func TestCreateBookingRateNotPublished(t *testing.T) {
	repo := newMemRepo()
	repo.addProfile(3, 80, 0, "")
	uc := newCreateBooking(repo, &fakeMethods{})

	_, err := uc.Execute(context.Background(), scheduling.CreateBookingInput{
		StudentID:     7,
		TeacherID:     ptr(uint(3)),
		SubjectID:     ptr(uint(1)),
		Date:          "2026-01-06",
		Time:          "14:00",
		SessionType:   "package",
		SessionsCount: 5,
	})
	require.True(t, httperr.IsBusiness(err, "rate_not_published"))
}

func TestCreateBookingSlotUnavailable(t *testing.T) {
	t.Run("already booked", func(t *testing.T) {
		repo := newMemRepo()
		repo.addProfile(3, 80, 70, "")
		slotID := repo.addWeekdaySlot(3, 2, "14:00")
		repo.store.slots[slotID].Booked = true
		repo.store.slots[slotID].Available = false

		uc := newCreateBooking(repo, &fakeMethods{})
		_, err := uc.Execute(context.Background(), scheduling.CreateBookingInput{
			StudentID:   7,
			TeacherID:   ptr(uint(3)),
			SubjectID:   ptr(uint(1)),
			SlotID:      &slotID,
			SessionType: "single",
		})
		require.True(t, httperr.IsBusiness(err, "slot_unavailable"))
		require.Empty(t, repo.store.bookings)
	})

	t.Run("belongs to another teacher", func(t *testing.T) {
		repo := newMemRepo()
		repo.addProfile(3, 80, 70, "")
		repo.addProfile(4, 80, 70, "")
		slotID := repo.addWeekdaySlot(4, 2, "14:00")

		uc := newCreateBooking(repo, &fakeMethods{})
		_, err := uc.Execute(context.Background(), scheduling.CreateBookingInput{
			StudentID:   7,
			TeacherID:   ptr(uint(3)),
			SubjectID:   ptr(uint(1)),
			SlotID:      &slotID,
			SessionType: "single",
		})
		require.True(t, httperr.IsBusiness(err, "slot_unavailable"))
	})
}

// A failure at any point of the transactional write must leave no
// partial state behind: no booking, no reserved slot, no sessions, no
// payment.
func TestCreateBookingAtomicity(t *testing.T) {
	run := func(t *testing.T, failMethod string, failErr error, wantCode string) {
		repo := newMemRepo()
		repo.addProfile(3, 80, 70, "")
		slotID := repo.addWeekdaySlot(3, 2, "14:00")
		repo.failOn[failMethod] = failErr

		uc := newCreateBooking(repo, &fakeMethods{})
		_, err := uc.Execute(context.Background(), scheduling.CreateBookingInput{
			StudentID:     7,
			TeacherID:     ptr(uint(3)),
			SubjectID:     ptr(uint(1)),
			SlotID:        &slotID,
			SessionType:   "package",
			SessionsCount: 5,
		})
		require.Error(t, err)
		if wantCode != "" {
			require.True(t, httperr.IsBusiness(err, wantCode))
		}

		require.Empty(t, repo.store.bookings)
		require.Empty(t, repo.store.sessions)
		require.Empty(t, repo.store.payments)

		slot := repo.store.slots[slotID]
		require.True(t, slot.Available)
		require.False(t, slot.Booked)
		require.Nil(t, slot.BookingID)
	}

	t.Run("reserve loses the race", func(t *testing.T) {
		run(t, "ReserveSlot", httperr.ErrBusinessDetails("slot_unavailable", map[string]any{"slot_id": 1}), "slot_unavailable")
	})

	t.Run("session insert fails", func(t *testing.T) {
		run(t, "CreateSessions", errors.New("insert sessions: connection reset"), "")
	})

	t.Run("payment insert fails", func(t *testing.T) {
		run(t, "CreatePayment", errors.New("insert payment: connection reset"), "")
	})
}

func TestCreateBookingMethodsLookupFailureIsSoft(t *testing.T) {
	repo := newMemRepo()
	repo.addProfile(3, 80, 70, "")

	uc := newCreateBooking(repo, &fakeMethods{has: true, err: errors.New("methods store down")})

	out, err := uc.Execute(context.Background(), scheduling.CreateBookingInput{
		StudentID:   7,
		TeacherID:   ptr(uint(3)),
		SubjectID:   ptr(uint(1)),
		Date:        "2026-01-06",
		Time:        "14:00",
		SessionType: "single",
	})
	require.NoError(t, err)
	// Booking committed; the lookup failure degrades to "needs a method".
	require.Len(t, repo.store.bookings, 1)
	require.True(t, out.RequiresPaymentMethod)
}
