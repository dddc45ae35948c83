package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/edumatch/tutor-scheduler/internal/domain/schedule"
	"github.com/edumatch/tutor-scheduler/internal/httperr"
	"github.com/edumatch/tutor-scheduler/internal/httpresp"
	"github.com/edumatch/tutor-scheduler/internal/middleware"
	"github.com/edumatch/tutor-scheduler/internal/usecase/scheduling"
)

// ======================================================
// HANDLER
// ======================================================

type SlotHandler struct {
	createSlots  *scheduling.CreateSlots
	replaceSlots *scheduling.ReplaceSlots
	deleteSlot   *scheduling.DeleteSlot
	listSlots    *scheduling.ListSlots
}

func NewSlotHandler(
	createSlots *scheduling.CreateSlots,
	replaceSlots *scheduling.ReplaceSlots,
	deleteSlot *scheduling.DeleteSlot,
	listSlots *scheduling.ListSlots,
) *SlotHandler {
	return &SlotHandler{
		createSlots:  createSlots,
		replaceSlots: replaceSlots,
		deleteSlot:   deleteSlot,
		listSlots:    listSlots,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type SlotEntryRequest struct {
	Weekday *int     `json:"weekday"`
	Date    *string  `json:"date"` // YYYY-MM-DD
	Times   []string `json:"times" binding:"required"`
}

type CreateSlotsRequest struct {
	CourseID *uint              `json:"course_id"`
	OrderID  *uint              `json:"order_id"`
	Entries  []SlotEntryRequest `json:"entries" binding:"required"`
}

type ReplaceSlotsRequest struct {
	CourseID *uint    `json:"course_id"`
	OrderID  *uint    `json:"order_id"`
	Weekday  int      `json:"weekday" binding:"required"`
	Times    []string `json:"times" binding:"required"`
}

// ======================================================
// CREATE (bulk, partial success)
// ======================================================

func (h *SlotHandler) Create(c *gin.Context) {
	teacherID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreateSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid slot payload.")
		return
	}

	entries := make([]scheduling.SlotEntry, 0, len(req.Entries))
	for _, e := range req.Entries {
		entries = append(entries, scheduling.SlotEntry{
			Weekday: e.Weekday,
			Date:    e.Date,
			Times:   e.Times,
		})
	}

	result, err := h.createSlots.Execute(c.Request.Context(), scheduling.CreateSlotsInput{
		TeacherID: teacherID,
		Scope:     schedule.ScopeFrom(req.CourseID, req.OrderID),
		Entries:   entries,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.Created(c, result)
}

// ======================================================
// REPLACE (resync one weekday)
// ======================================================

func (h *SlotHandler) Replace(c *gin.Context) {
	teacherID := c.MustGet(middleware.ContextUserID).(uint)

	var req ReplaceSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid slot payload.")
		return
	}

	result, err := h.replaceSlots.Execute(c.Request.Context(), scheduling.ReplaceSlotsInput{
		TeacherID: teacherID,
		Scope:     schedule.ScopeFrom(req.CourseID, req.OrderID),
		Weekday:   req.Weekday,
		Times:     req.Times,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, result)
}

// ======================================================
// LIST
// ======================================================

func (h *SlotHandler) List(c *gin.Context) {
	teacherID := c.MustGet(middleware.ContextUserID).(uint)

	slots, err := h.listSlots.Execute(c.Request.Context(), teacherID, false)
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.List(c, slots)
}

// ======================================================
// DELETE
// ======================================================

func (h *SlotHandler) Delete(c *gin.Context) {
	teacherID := c.MustGet(middleware.ContextUserID).(uint)

	slotID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_slot_id", "Invalid slot id.")
		return
	}

	if err := h.deleteSlot.Execute(c.Request.Context(), teacherID, uint(slotID)); err != nil {
		writeError(c, err)
		return
	}

	c.Status(204)
}
