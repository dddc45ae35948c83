package scheduling

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/edumatch/tutor-scheduler/internal/audit"
	"github.com/edumatch/tutor-scheduler/internal/clock"
	domain "github.com/edumatch/tutor-scheduler/internal/domain/booking"
	"github.com/edumatch/tutor-scheduler/internal/domain/pricing"
	"github.com/edumatch/tutor-scheduler/internal/domain/schedule"
	"github.com/edumatch/tutor-scheduler/internal/httperr"
	"github.com/edumatch/tutor-scheduler/internal/models"
	"github.com/edumatch/tutor-scheduler/internal/payment"
	"github.com/edumatch/tutor-scheduler/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type CreateBookingInput struct {
	StudentID uint

	// Course-sourced XOR ad-hoc (teacher + subject).
	CourseID   *uint
	TeacherID  *uint
	SubjectID  *uint
	LanguageID *uint

	SlotID *uint

	// Explicit anchor when no slot is supplied (marketplace match).
	Date string
	Time string

	SessionType   string
	SessionsCount int
	DurationMin   int
}

type CreateBookingOutput struct {
	Booking               *models.Booking
	PaymentReference      string
	RequiresPaymentMethod bool
}

// ======================================================
// USE CASE
// ======================================================

type CreateBooking struct {
	repo    domain.Repository
	methods payment.Methods
	audit   *audit.Dispatcher
	clock   clock.Clock

	minAdvance time.Duration
	currency   string
}

func NewCreateBooking(
	repo domain.Repository,
	methods payment.Methods,
	auditDispatcher *audit.Dispatcher,
	clk clock.Clock,
	minAdvanceMinutes int,
	currency string,
) *CreateBooking {
	return &CreateBooking{
		repo:       repo,
		methods:    methods,
		audit:      auditDispatcher,
		clock:      clk,
		minAdvance: time.Duration(minAdvanceMinutes) * time.Minute,
		currency:   currency,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateBooking) Execute(
	ctx context.Context,
	in CreateBookingInput,
) (*CreateBookingOutput, error) {

	// --------------------------------------------------
	// 1. Shape validation
	// --------------------------------------------------
	if !domain.IsValidSessionType(in.SessionType) {
		return nil, httperr.ErrBusiness("invalid_session_type")
	}

	sessionsCount := in.SessionsCount
	if in.SessionType == string(domain.TypeSingle) {
		sessionsCount = 1
	}
	if in.SessionType == string(domain.TypePackage) && sessionsCount < 2 {
		return nil, httperr.ErrBusiness("invalid_sessions_count")
	}

	if in.CourseID != nil && in.SubjectID != nil {
		return nil, httperr.ErrBusiness("course_or_subject")
	}
	if in.CourseID == nil && (in.TeacherID == nil || in.SubjectID == nil) {
		return nil, httperr.ErrBusiness("missing_course_or_subject")
	}

	// --------------------------------------------------
	// 2. Teacher + base hourly rate
	// --------------------------------------------------
	var (
		teacherID   uint
		hourlyRate  float64
		durationMin int
		courseID    *uint
	)

	if in.CourseID != nil {
		course, err := uc.repo.GetCourse(ctx, *in.CourseID)
		if err != nil {
			return nil, err
		}
		teacherID = course.TeacherID
		hourlyRate = course.PricePerHour
		durationMin = course.SessionDurationMin
		courseID = in.CourseID
	} else {
		teacherID = *in.TeacherID
		durationMin = in.DurationMin
	}

	if durationMin <= 0 {
		durationMin = 60
	}

	profile, err := uc.repo.GetTeacherProfile(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	if in.CourseID == nil {
		if in.SessionType == string(domain.TypePackage) {
			hourlyRate = profile.GroupHourPrice
		} else {
			hourlyRate = profile.IndividualHourPrice
		}
	}

	if hourlyRate <= 0 {
		return nil, httperr.ErrBusiness("rate_not_published")
	}

	loc := timezone.Location(profile.Timezone)
	now := uc.clock.Now().In(loc)

	// --------------------------------------------------
	// 3. Anchor session date and time
	// --------------------------------------------------
	var (
		anchorStart time.Time
		startClock  string
	)

	if in.SlotID != nil {
		slot, err := uc.repo.GetSlot(ctx, *in.SlotID)
		if err != nil {
			return nil, err
		}

		if slot.TeacherID != teacherID || !slot.Available || slot.Booked {
			return nil, httperr.ErrBusinessDetails("slot_unavailable", map[string]any{
				"slot_id": *in.SlotID,
			})
		}

		startClock = slot.StartTime

		if slot.Date != nil {
			anchorStart, err = schedule.CombineDateClock(slot.Date.In(loc), startClock, loc)
		} else if slot.Weekday != nil {
			anchorStart, err = schedule.NextOccurrence(now, *slot.Weekday, startClock, loc)
		} else {
			return nil, httperr.ErrBusiness("slot_unschedulable")
		}
		if err != nil {
			return nil, err
		}
	} else {
		if in.Date == "" || in.Time == "" {
			return nil, httperr.ErrBusiness("missing_date_or_time")
		}

		startClock, err = schedule.ParseClock(in.Time)
		if err != nil {
			return nil, err
		}

		date, err := time.ParseInLocation("2006-01-02", in.Date, loc)
		if err != nil {
			return nil, httperr.ErrBusiness("invalid_date")
		}

		anchorStart, err = schedule.CombineDateClock(date, startClock, loc)
		if err != nil {
			return nil, err
		}
	}

	// --------------------------------------------------
	// 4. Advance notice
	// --------------------------------------------------
	if anchorStart.Before(now.Add(uc.minAdvance)) {
		return nil, httperr.ErrBusinessDetails("booking_too_soon", map[string]any{
			"starts_at":           anchorStart,
			"min_advance_minutes": int(uc.minAdvance / time.Minute),
		})
	}

	// --------------------------------------------------
	// 5. Pricing
	// --------------------------------------------------
	quote := pricing.ForSessions(hourlyRate, durationMin, sessionsCount)

	endClock := endOfDuration(startClock, durationMin)

	// --------------------------------------------------
	// 6. Transactional write: booking + slot + sessions + payment
	// --------------------------------------------------
	var (
		created *models.Booking
		pay     *models.Payment
	)

	err = uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		b := &models.Booking{
			Reference:  newReference(),
			StudentID:  in.StudentID,
			TeacherID:  teacherID,
			CourseID:   courseID,
			SubjectID:  in.SubjectID,
			LanguageID: in.LanguageID,

			SessionType:   in.SessionType,
			SessionsCount: sessionsCount,

			FirstSessionDate: anchorStart,
			StartTime:        startClock,
			EndTime:          endClock,
			DurationMin:      durationMin,

			PricePerSession: quote.PricePerSession,
			Subtotal:        quote.Subtotal,
			DiscountPercent: quote.DiscountPercent,
			DiscountAmount:  quote.DiscountAmount,
			TotalAmount:     quote.Total,
			Currency:        uc.currency,

			Status: string(domain.InitialStatus()),
		}

		if err := tx.CreateBooking(ctx, b); err != nil {
			return err
		}

		if in.SlotID != nil {
			if err := tx.ReserveSlot(ctx, *in.SlotID, b.ID); err != nil {
				return err
			}
		}

		if err := tx.CreateSessions(ctx, domain.GenerateSessions(b)); err != nil {
			return err
		}

		p := &models.Payment{
			BookingID:      b.ID,
			Amount:         quote.Total,
			Currency:       uc.currency,
			Status:         "pending",
			TransactionRef: uuid.NewString(),
		}
		if err := tx.CreatePayment(ctx, p); err != nil {
			return err
		}

		created = b
		pay = p
		return nil
	})

	if err != nil {
		if httperr.IsBusiness(err, "slot_unavailable") {
			uc.audit.Dispatch(audit.Event{
				UserID:   &in.StudentID,
				Action:   "booking_conflict",
				Entity:   "availability_slot",
				EntityID: in.SlotID,
				Metadata: map[string]any{"starts_at": anchorStart},
			})
		}
		return nil, err
	}

	// --------------------------------------------------
	// 7. Payment-method handoff (outside the transaction)
	// --------------------------------------------------
	hasMethod, err := uc.methods.HasSavedMethod(ctx, in.StudentID)
	if err != nil {
		log.Println("payment methods lookup failed:", err)
		hasMethod = false
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.StudentID,
		Action:   "booking_created",
		Entity:   "booking",
		EntityID: &created.ID,
		Metadata: map[string]any{
			"reference": created.Reference,
			"total":     created.TotalAmount,
		},
	})

	return &CreateBookingOutput{
		Booking:               created,
		PaymentReference:      pay.TransactionRef,
		RequiresPaymentMethod: !hasMethod,
	}, nil
}

// ======================================================
// HELPERS
// ======================================================

func newReference() string {
	return "BK-" + strings.ToUpper(uuid.NewString()[:8])
}

func endOfDuration(start string, durationMin int) string {
	t, _ := time.Parse("15:04", start)
	return t.Add(time.Duration(durationMin) * time.Minute).Format("15:04")
}
