package scheduling

import (
	"context"

	"github.com/edumatch/tutor-scheduler/internal/audit"
	domain "github.com/edumatch/tutor-scheduler/internal/domain/booking"
	"github.com/edumatch/tutor-scheduler/internal/httperr"
)

type DeleteSlot struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewDeleteSlot(
	repo domain.Repository,
	auditDispatcher *audit.Dispatcher,
) *DeleteSlot {
	return &DeleteSlot{
		repo:  repo,
		audit: auditDispatcher,
	}
}

func (uc *DeleteSlot) Execute(
	ctx context.Context,
	teacherID uint,
	slotID uint,
) error {

	slot, err := uc.repo.GetSlot(ctx, slotID)
	if err != nil {
		return err
	}

	// slots of other teachers look like missing ones
	if slot.TeacherID != teacherID {
		return httperr.ErrBusiness("slot_not_found")
	}

	if slot.Booked {
		return httperr.ErrBusinessDetails("slot_booked", map[string]any{
			"slot_id":    slotID,
			"booking_id": slot.BookingID,
		})
	}

	if err := uc.repo.DeleteSlot(ctx, slotID); err != nil {
		return err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &teacherID,
		Action:   "slot_deleted",
		Entity:   "availability_slot",
		EntityID: &slotID,
	})

	return nil
}
