package scheduling

import (
	"context"
	"strconv"
	"time"

	"github.com/edumatch/tutor-scheduler/internal/audit"
	domain "github.com/edumatch/tutor-scheduler/internal/domain/booking"
	"github.com/edumatch/tutor-scheduler/internal/domain/schedule"
	"github.com/edumatch/tutor-scheduler/internal/httperr"
	"github.com/edumatch/tutor-scheduler/internal/lock"
	"github.com/edumatch/tutor-scheduler/internal/models"
	"github.com/edumatch/tutor-scheduler/internal/timezone"
)

// ======================================================
// INPUT / OUTPUT
// ======================================================

type SlotEntry struct {
	Weekday *int    // 1 = Monday .. 7 = Sunday
	Date    *string // YYYY-MM-DD, order-derived slots
	Times   []string
}

type SkippedSlot struct {
	Day    string `json:"day"`
	Time   string `json:"time"`
	Reason string `json:"reason"`
}

type SlotBatchResult struct {
	Created []models.AvailabilitySlot `json:"created"`
	Skipped []SkippedSlot             `json:"skipped"`
}

type CreateSlotsInput struct {
	TeacherID uint
	Scope     schedule.Scope
	Entries   []SlotEntry
}

// ======================================================
// USE CASE
// ======================================================

type CreateSlots struct {
	repo   domain.Repository
	locker lock.Locker
	audit  *audit.Dispatcher
}

func NewCreateSlots(
	repo domain.Repository,
	locker lock.Locker,
	auditDispatcher *audit.Dispatcher,
) *CreateSlots {
	return &CreateSlots{
		repo:   repo,
		locker: locker,
		audit:  auditDispatcher,
	}
}

// parsedEntry is a fully validated request line; validation finishes
// before any slot row is written.
type parsedEntry struct {
	weekday    *int
	date       *time.Time
	dayLabel   string
	start      string
	end        string
	recurrence string
}

func (uc *CreateSlots) Execute(
	ctx context.Context,
	in CreateSlotsInput,
) (*SlotBatchResult, error) {

	if len(in.Entries) == 0 {
		return nil, httperr.ErrBusiness("empty_schedule")
	}

	profile, err := uc.repo.GetTeacherProfile(ctx, in.TeacherID)
	if err != nil {
		return nil, err
	}
	loc := timezone.Location(profile.Timezone)

	parsed, err := parseEntries(in.Entries, loc)
	if err != nil {
		return nil, err
	}

	// Serialize schedule mutation per teacher so two concurrent batch
	// calls cannot both pass the duplicate check.
	release, err := acquireScheduleLock(ctx, uc.locker, in.TeacherID)
	if err != nil {
		return nil, err
	}
	defer release()

	result := &SlotBatchResult{
		Created: []models.AvailabilitySlot{},
		Skipped: []SkippedSlot{},
	}

	for _, e := range parsed {
		slot, skipped, err := uc.createOne(ctx, uc.repo, in.TeacherID, in.Scope, e)
		if err != nil {
			return nil, err
		}
		if skipped != nil {
			result.Skipped = append(result.Skipped, *skipped)
			continue
		}
		result.Created = append(result.Created, *slot)
	}

	uc.audit.Dispatch(audit.Event{
		UserID: &in.TeacherID,
		Action: "slots_created",
		Entity: "availability_slot",
		Metadata: map[string]any{
			"created": len(result.Created),
			"skipped": len(result.Skipped),
		},
	})

	return result, nil
}

func (uc *CreateSlots) createOne(
	ctx context.Context,
	repo domain.Repository,
	teacherID uint,
	scope schedule.Scope,
	e parsedEntry,
) (*models.AvailabilitySlot, *SkippedSlot, error) {

	dup, err := repo.HasDuplicateSlot(ctx, teacherID, scope, e.weekday, e.date, e.start)
	if err != nil {
		return nil, nil, err
	}
	if dup {
		return nil, &SkippedSlot{Day: e.dayLabel, Time: e.start, Reason: "duplicate"}, nil
	}

	courseID, orderID := scope.Columns()
	slot := &models.AvailabilitySlot{
		TeacherID:  teacherID,
		CourseID:   courseID,
		OrderID:    orderID,
		Weekday:    e.weekday,
		Date:       e.date,
		StartTime:  e.start,
		EndTime:    e.end,
		Available:  true,
		Booked:     false,
		Recurrence: e.recurrence,
	}

	if err := repo.CreateSlot(ctx, slot); err != nil {
		// A racing writer can slip between the pre-check and the
		// insert; the identity index reports it and the entry is
		// skipped the same way as a detected duplicate.
		if httperr.IsBusiness(err, "duplicate_slot") {
			return nil, &SkippedSlot{Day: e.dayLabel, Time: e.start, Reason: "duplicate"}, nil
		}
		return nil, nil, err
	}

	return slot, nil, nil
}

// ======================================================
// HELPERS
// ======================================================

func parseEntries(entries []SlotEntry, loc *time.Location) ([]parsedEntry, error) {
	var parsed []parsedEntry

	for _, entry := range entries {
		if (entry.Weekday == nil) == (entry.Date == nil) {
			return nil, httperr.ErrBusiness("day_or_date_required")
		}

		var (
			weekday    *int
			date       *time.Time
			dayLabel   string
			recurrence string
		)

		if entry.Weekday != nil {
			if *entry.Weekday < 1 || *entry.Weekday > 7 {
				return nil, httperr.ErrBusinessDetails("invalid_weekday", map[string]any{
					"weekday": *entry.Weekday,
				})
			}
			weekday = entry.Weekday
			dayLabel = time.Weekday(*entry.Weekday % 7).String()
			recurrence = "weekly"
		} else {
			d, err := time.ParseInLocation("2006-01-02", *entry.Date, loc)
			if err != nil {
				return nil, httperr.ErrBusinessDetails("invalid_date", map[string]any{
					"date": *entry.Date,
				})
			}
			date = &d
			dayLabel = *entry.Date
			recurrence = "none"
		}

		for _, raw := range entry.Times {
			start, err := schedule.ParseClock(raw)
			if err != nil {
				return nil, err
			}

			parsed = append(parsed, parsedEntry{
				weekday:    weekday,
				date:       date,
				dayLabel:   dayLabel,
				start:      start,
				end:        schedule.EndOfSlot(start),
				recurrence: recurrence,
			})
		}
	}

	if len(parsed) == 0 {
		return nil, httperr.ErrBusiness("empty_schedule")
	}

	return parsed, nil
}

const (
	scheduleLockTTL   = 5 * time.Second
	scheduleLockRetry = 50 * time.Millisecond
	scheduleLockTries = 20
)

func acquireScheduleLock(ctx context.Context, locker lock.Locker, teacherID uint) (func(), error) {
	key := scheduleLockKey(teacherID)

	for i := 0; i < scheduleLockTries; i++ {
		ok, err := locker.Acquire(ctx, key, scheduleLockTTL)
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				if err := locker.Release(context.Background(), key); err != nil {
					// TTL expires the lock anyway
					_ = err
				}
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(scheduleLockRetry):
		}
	}

	return nil, httperr.ErrBusiness("schedule_locked")
}

func scheduleLockKey(teacherID uint) string {
	return "slots:teacher:" + strconv.FormatUint(uint64(teacherID), 10)
}
