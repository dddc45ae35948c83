package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edumatch/tutor-scheduler/internal/httperr"
)

// ======================================================
// BUSINESS ERROR → HTTP MAPPING
// ======================================================

var businessStatus = map[string]int{
	// not found
	"course_not_found":  http.StatusNotFound,
	"teacher_not_found": http.StatusNotFound,
	"slot_not_found":    http.StatusNotFound,
	"booking_not_found": http.StatusNotFound,
	"payment_not_found": http.StatusNotFound,

	// conflicts, retryable with different input
	"slot_unavailable": http.StatusConflict,
	"slot_booked":      http.StatusConflict,
	"duplicate_slot":   http.StatusConflict,
	"schedule_locked":  http.StatusConflict,

	// policy, time-window violations
	"booking_too_soon":   http.StatusUnprocessableEntity,
	"too_late_to_cancel": http.StatusUnprocessableEntity,
	"not_cancellable":    http.StatusUnprocessableEntity,
}

var businessMessage = map[string]string{
	"course_not_found":   "Course not found.",
	"teacher_not_found":  "Teacher not found.",
	"slot_not_found":     "Availability slot not found.",
	"booking_not_found":  "Booking not found.",
	"payment_not_found":  "Payment not found.",
	"slot_unavailable":   "The requested slot is no longer available.",
	"slot_booked":        "The slot is held by an active booking.",
	"duplicate_slot":     "A slot already exists for that day and time.",
	"schedule_locked":    "The schedule is being modified, try again.",
	"booking_too_soon":   "The session starts too soon to be booked.",
	"too_late_to_cancel": "The session starts too soon to be cancelled.",
	"not_cancellable":    "The booking is in a terminal state.",
}

// writeError renders a business error with its mapped status, or a
// generic 500 for unexpected failures (logged, never detailed to the
// caller).
func writeError(c *gin.Context, err error) {
	var be httperr.BusinessError
	if errors.As(err, &be) {
		status, known := businessStatus[be.Code]
		if !known {
			status = http.StatusBadRequest
		}

		msg, ok := businessMessage[be.Code]
		if !ok {
			msg = "Invalid request."
		}

		httperr.WriteDetails(c, status, be.Code, msg, be.Details)
		return
	}

	log.Println("internal error:", err)
	httperr.Internal(c, "internal_error", "Something went wrong.")
}
