package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/edumatch/tutor-scheduler/internal/httperr"
	"github.com/edumatch/tutor-scheduler/internal/httpresp"
	"github.com/edumatch/tutor-scheduler/internal/middleware"
	"github.com/edumatch/tutor-scheduler/internal/models"
	"github.com/edumatch/tutor-scheduler/internal/usecase/scheduling"
)

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	db            *gorm.DB
	createBooking *scheduling.CreateBooking
	cancelBooking *scheduling.CancelBooking
}

func NewBookingHandler(
	db *gorm.DB,
	createBooking *scheduling.CreateBooking,
	cancelBooking *scheduling.CancelBooking,
) *BookingHandler {
	return &BookingHandler{
		db:            db,
		createBooking: createBooking,
		cancelBooking: cancelBooking,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateBookingRequest struct {
	CourseID   *uint `json:"course_id"`
	TeacherID  *uint `json:"teacher_id"`
	SubjectID  *uint `json:"subject_id"`
	LanguageID *uint `json:"language_id"`

	SlotID *uint  `json:"slot_id"`
	Date   string `json:"date"` // YYYY-MM-DD, when no slot
	Time   string `json:"time"` // flexible clock reading

	SessionType   string `json:"session_type" binding:"required"`
	SessionsCount int    `json:"sessions_count"`
	DurationMin   int    `json:"duration_min"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

type CreateBookingResponse struct {
	Booking               *models.Booking `json:"booking"`
	PaymentReference      string          `json:"payment_reference"`
	RequiresPaymentMethod bool            `json:"requires_payment_method"`
}

// ======================================================
// CREATE
// ======================================================

func (h *BookingHandler) Create(c *gin.Context) {
	studentID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid booking payload.")
		return
	}

	out, err := h.createBooking.Execute(c.Request.Context(), scheduling.CreateBookingInput{
		StudentID:     studentID,
		CourseID:      req.CourseID,
		TeacherID:     req.TeacherID,
		SubjectID:     req.SubjectID,
		LanguageID:    req.LanguageID,
		SlotID:        req.SlotID,
		Date:          req.Date,
		Time:          req.Time,
		SessionType:   req.SessionType,
		SessionsCount: req.SessionsCount,
		DurationMin:   req.DurationMin,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.Created(c, CreateBookingResponse{
		Booking:               out.Booking,
		PaymentReference:      out.PaymentReference,
		RequiresPaymentMethod: out.RequiresPaymentMethod,
	})
}

// ======================================================
// CANCEL
// ======================================================

func (h *BookingHandler) Cancel(c *gin.Context) {
	studentID := c.MustGet(middleware.ContextUserID).(uint)

	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_booking_id", "Invalid booking id.")
		return
	}

	var req CancelBookingRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.cancelBooking.Execute(c.Request.Context(), studentID, uint(bookingID), req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, result)
}

// ======================================================
// LIST
// ======================================================

func (h *BookingHandler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	role := c.MustGet(middleware.ContextUserRole).(string)

	q := h.db
	if role == middleware.RoleTeacher {
		q = q.Where("teacher_id = ?", userID)
	} else {
		q = q.Where("student_id = ?", userID)
	}

	var bookings []models.Booking
	if err := q.Order("created_at DESC").Find(&bookings).Error; err != nil {
		httperr.Internal(c, "failed_to_list_bookings", "Could not list bookings.")
		return
	}

	httpresp.List(c, bookings)
}

// ======================================================
// SESSIONS
// ======================================================

func (h *BookingHandler) ListSessions(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_booking_id", "Invalid booking id.")
		return
	}

	var b models.Booking
	if err := h.db.
		Where("id = ? AND (student_id = ? OR teacher_id = ?)", bookingID, userID, userID).
		First(&b).Error; err != nil {
		httperr.NotFound(c, "booking_not_found", "Booking not found.")
		return
	}

	var sessions []models.Session
	if err := h.db.
		Where("booking_id = ?", b.ID).
		Order("session_number ASC").
		Find(&sessions).Error; err != nil {
		httperr.Internal(c, "failed_to_list_sessions", "Could not list sessions.")
		return
	}

	// host tokens never leave the teacher side
	if b.TeacherID != userID {
		for i := range sessions {
			sessions[i].HostToken = ""
		}
	}

	httpresp.List(c, sessions)
}
