package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/volunty/volunty/internal/services"
	"github.com/volunty/volunty/pkg/response"
	"gorm.io/gorm"
)

type CalendarHandler struct {
	calendarService *services.CalendarService
}

func NewCalendarHandler(db *gorm.DB) *CalendarHandler {
	return &CalendarHandler{
		calendarService: services.NewCalendarService(db, services.NewSettingsService(db)),
	}
}

// Feed serves a volunteer's commitments as an iCalendar document.
// Calendar clients poll this URL unauthenticated; the token in the
// path is the credential.
// GET /api/calendar/:token.ics
func (h *CalendarHandler) Feed(c *gin.Context) {
	token := c.Param("token")
	if len(token) > 4 && token[len(token)-4:] == ".ics" {
		token = token[:len(token)-4]
	}

	feed, err := h.calendarService.Feed(token)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Type", "text/calendar; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename=\"shifts.ics\"")
	c.String(http.StatusOK, feed)
}
