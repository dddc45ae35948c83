package scheduling

import (
	"context"

	domain "github.com/edumatch/tutor-scheduler/internal/domain/booking"
	"github.com/edumatch/tutor-scheduler/internal/models"
)

type ListSlots struct {
	repo domain.Repository
}

func NewListSlots(repo domain.Repository) *ListSlots {
	return &ListSlots{repo: repo}
}

// Execute lists a teacher's slots; onlyOpen narrows to slots a student
// could still book.
func (uc *ListSlots) Execute(
	ctx context.Context,
	teacherID uint,
	onlyOpen bool,
) ([]models.AvailabilitySlot, error) {

	if onlyOpen {
		// student surface: make sure the teacher exists and is active
		if _, err := uc.repo.GetTeacherProfile(ctx, teacherID); err != nil {
			return nil, err
		}
	}

	return uc.repo.ListSlots(ctx, teacherID, onlyOpen)
}
