package payment

import (
	"context"

	"gorm.io/gorm"

	"github.com/edumatch/tutor-scheduler/internal/models"
)

// Methods answers whether a student already has a saved payment
// instrument; consumed after the booking transaction commits.
type Methods interface {
	HasSavedMethod(ctx context.Context, userID uint) (bool, error)
}

type GormMethods struct {
	db *gorm.DB
}

func NewGormMethods(db *gorm.DB) *GormMethods {
	return &GormMethods{db: db}
}

func (m *GormMethods) HasSavedMethod(ctx context.Context, userID uint) (bool, error) {
	var count int64
	if err := m.db.WithContext(ctx).
		Model(&models.PaymentMethod{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

var _ Methods = (*GormMethods)(nil)
