package scheduling

import (
	"context"

	"github.com/edumatch/tutor-scheduler/internal/audit"
	domain "github.com/edumatch/tutor-scheduler/internal/domain/booking"
	"github.com/edumatch/tutor-scheduler/internal/domain/schedule"
	"github.com/edumatch/tutor-scheduler/internal/httperr"
	"github.com/edumatch/tutor-scheduler/internal/lock"
	"github.com/edumatch/tutor-scheduler/internal/models"
	"github.com/edumatch/tutor-scheduler/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type ReplaceSlotsInput struct {
	TeacherID uint
	Scope     schedule.Scope
	Weekday   int
	Times     []string
}

// ======================================================
// USE CASE
// ======================================================

// ReplaceSlots resyncs one weekday of a teacher's recurring template:
// it drops the day's open slots and recreates the requested set inside
// a single transaction. Booked slots survive the replace; a requested
// time colliding with one is reported as a duplicate.
type ReplaceSlots struct {
	repo   domain.Repository
	locker lock.Locker
	audit  *audit.Dispatcher
}

func NewReplaceSlots(
	repo domain.Repository,
	locker lock.Locker,
	auditDispatcher *audit.Dispatcher,
) *ReplaceSlots {
	return &ReplaceSlots{
		repo:   repo,
		locker: locker,
		audit:  auditDispatcher,
	}
}

func (uc *ReplaceSlots) Execute(
	ctx context.Context,
	in ReplaceSlotsInput,
) (*SlotBatchResult, error) {

	if in.Weekday < 1 || in.Weekday > 7 {
		return nil, httperr.ErrBusinessDetails("invalid_weekday", map[string]any{
			"weekday": in.Weekday,
		})
	}

	profile, err := uc.repo.GetTeacherProfile(ctx, in.TeacherID)
	if err != nil {
		return nil, err
	}

	weekday := in.Weekday
	entries := []SlotEntry{{Weekday: &weekday, Times: in.Times}}

	parsed, err := parseEntries(entries, timezone.Location(profile.Timezone))
	if err != nil {
		return nil, err
	}

	release, err := acquireScheduleLock(ctx, uc.locker, in.TeacherID)
	if err != nil {
		return nil, err
	}
	defer release()

	result := &SlotBatchResult{
		Created: []models.AvailabilitySlot{},
		Skipped: []SkippedSlot{},
	}

	creator := CreateSlots{repo: uc.repo, locker: uc.locker, audit: uc.audit}

	err = uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		if err := tx.DeleteOpenSlotsForDay(ctx, in.TeacherID, in.Scope, in.Weekday); err != nil {
			return err
		}

		for _, e := range parsed {
			slot, skipped, err := creator.createOne(ctx, tx, in.TeacherID, in.Scope, e)
			if err != nil {
				return err
			}
			if skipped != nil {
				result.Skipped = append(result.Skipped, *skipped)
				continue
			}
			result.Created = append(result.Created, *slot)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID: &in.TeacherID,
		Action: "slots_replaced",
		Entity: "availability_slot",
		Metadata: map[string]any{
			"weekday": in.Weekday,
			"created": len(result.Created),
			"skipped": len(result.Skipped),
		},
	})

	return result, nil
}
