package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/edumatch/tutor-scheduler/internal/httperr"
	"github.com/edumatch/tutor-scheduler/internal/httpresp"
	"github.com/edumatch/tutor-scheduler/internal/middleware"
	"github.com/edumatch/tutor-scheduler/internal/models"
)

type MeHandler struct {
	db *gorm.DB
}

func NewMeHandler(db *gorm.DB) *MeHandler {
	return &MeHandler{db: db}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		httperr.NotFound(c, "user_not_found", "User not found.")
		return
	}

	resp := gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"phone": user.Phone,
		"role":  user.Role,
	}

	if user.Role == middleware.RoleTeacher {
		var profile models.TeacherProfile
		if err := h.db.Where("user_id = ?", user.ID).First(&profile).Error; err == nil {
			resp["profile"] = profile
		}
	}

	httpresp.OK(c, resp)
}
