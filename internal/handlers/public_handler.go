package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/edumatch/tutor-scheduler/internal/httperr"
	"github.com/edumatch/tutor-scheduler/internal/httpresp"
	"github.com/edumatch/tutor-scheduler/internal/models"
	"github.com/edumatch/tutor-scheduler/internal/usecase/scheduling"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

type PublicHandler struct {
	db        *gorm.DB
	listSlots *scheduling.ListSlots
}

func NewPublicHandler(db *gorm.DB, listSlots *scheduling.ListSlots) *PublicHandler {
	return &PublicHandler{
		db:        db,
		listSlots: listSlots,
	}
}

////////////////////////////////////////////////////////
// TEACHER SLOTS
////////////////////////////////////////////////////////

func (h *PublicHandler) TeacherSlots(c *gin.Context) {
	teacherID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_teacher_id", "Invalid teacher id.")
		return
	}

	slots, err := h.listSlots.Execute(c.Request.Context(), uint(teacherID), true)
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.List(c, slots)
}

////////////////////////////////////////////////////////
// COURSES
////////////////////////////////////////////////////////

func (h *PublicHandler) ListCourses(c *gin.Context) {
	query := strings.TrimSpace(strings.ToLower(c.Query("query")))

	q := h.db.Where("active = true")

	if query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	if teacher := c.Query("teacher_id"); teacher != "" {
		if id, err := strconv.ParseUint(teacher, 10, 64); err == nil {
			q = q.Where("teacher_id = ?", id)
		}
	}

	var courses []models.Course
	if err := q.Order("id ASC").Find(&courses).Error; err != nil {
		httperr.Internal(c, "failed_to_list_courses", "Could not list courses.")
		return
	}

	httpresp.List(c, courses)
}
