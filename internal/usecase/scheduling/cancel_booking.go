package scheduling

import (
	"context"
	"log"
	"time"

	"github.com/edumatch/tutor-scheduler/internal/audit"
	"github.com/edumatch/tutor-scheduler/internal/clock"
	domain "github.com/edumatch/tutor-scheduler/internal/domain/booking"
	"github.com/edumatch/tutor-scheduler/internal/domain/pricing"
	"github.com/edumatch/tutor-scheduler/internal/httperr"
	"github.com/edumatch/tutor-scheduler/internal/models"
	"github.com/edumatch/tutor-scheduler/internal/payment"
)

// ======================================================
// USE CASE
// ======================================================

type CancelBooking struct {
	repo    domain.Repository
	gateway payment.Gateway
	audit   *audit.Dispatcher
	clock   clock.Clock

	cutoff time.Duration
}

func NewCancelBooking(
	repo domain.Repository,
	gateway payment.Gateway,
	auditDispatcher *audit.Dispatcher,
	clk clock.Clock,
	cutoffHours int,
) *CancelBooking {
	return &CancelBooking{
		repo:    repo,
		gateway: gateway,
		audit:   auditDispatcher,
		clock:   clk,
		cutoff:  time.Duration(cutoffHours) * time.Hour,
	}
}

type CancelResult struct {
	RefundPercent int     `json:"refund_percent"`
	RefundAmount  float64 `json:"refund_amount"`
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CancelBooking) Execute(
	ctx context.Context,
	studentID uint,
	bookingID uint,
	reason string,
) (*CancelResult, error) {

	b, err := uc.repo.GetBookingForStudent(ctx, bookingID, studentID)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 1. State machine
	// --------------------------------------------------
	if err := domain.CanCancel(domain.Status(b.Status)); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 2. Cancellation window (stricter than booking notice)
	// --------------------------------------------------
	// FirstSessionDate carries the exact anchor instant as resolved at
	// booking time; no timezone recombination happens here.
	anchor := b.FirstSessionDate

	now := uc.clock.Now()
	until := anchor.Sub(now)

	if until < uc.cutoff {
		return nil, httperr.ErrBusinessDetails("too_late_to_cancel", map[string]any{
			"starts_at":    anchor,
			"cutoff_hours": int(uc.cutoff / time.Hour),
		})
	}

	// --------------------------------------------------
	// 3. Refund tier
	// --------------------------------------------------
	refundPercent := domain.RefundPercent(until)
	refundAmount := pricing.Round2(b.TotalAmount * float64(refundPercent) / 100)

	// --------------------------------------------------
	// 4. Transactional state transition
	// --------------------------------------------------
	var pay *models.Payment

	err = uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		cancelledAt := now
		b.Status = string(domain.StatusCancelled)
		b.CancellationReason = &reason
		b.CancelledAt = &cancelledAt
		b.RefundPercent = refundPercent
		b.RefundAmount = refundAmount

		if err := tx.UpdateBooking(ctx, b); err != nil {
			return err
		}

		if err := tx.ReleaseSlots(ctx, b.ID); err != nil {
			return err
		}

		if err := tx.CancelScheduledSessions(ctx, b.ID, now); err != nil {
			return err
		}

		p, err := tx.GetPaymentByBooking(ctx, b.ID)
		if err != nil {
			return err
		}

		if refundAmount > 0 {
			status := "processing"
			p.RefundStatus = &status
			p.RefundAmount = &refundAmount
			if err := tx.UpdatePayment(ctx, p); err != nil {
				return err
			}
		}

		pay = p
		return nil
	})

	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 5. Refund instruction, post-commit and best-effort.
	// A gateway failure must not undo the cancellation; it is
	// recorded for external retry instead.
	// --------------------------------------------------
	if refundAmount > 0 && pay.ProviderPaymentID != nil {
		if err := uc.gateway.Refund(ctx, pay, refundAmount); err != nil {
			log.Println("refund instruction failed:", err)

			status := "failed"
			pay.RefundStatus = &status
			if uerr := uc.repo.UpdatePayment(ctx, pay); uerr != nil {
				log.Println("refund status update failed:", uerr)
			}

			uc.audit.Dispatch(audit.Event{
				UserID:   &studentID,
				Action:   "refund_failed",
				Entity:   "payment",
				EntityID: &pay.ID,
				Metadata: map[string]any{
					"booking_id": b.ID,
					"amount":     refundAmount,
				},
			})
		}
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &studentID,
		Action:   "booking_cancelled",
		Entity:   "booking",
		EntityID: &b.ID,
		Metadata: map[string]any{
			"refund_percent": refundPercent,
			"refund_amount":  refundAmount,
		},
	})

	return &CancelResult{
		RefundPercent: refundPercent,
		RefundAmount:  refundAmount,
	}, nil
}
