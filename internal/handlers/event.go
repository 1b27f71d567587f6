package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/volunty/volunty/internal/middleware"
	"github.com/volunty/volunty/internal/models"
	"github.com/volunty/volunty/internal/services"
	"github.com/volunty/volunty/pkg/response"
	"gorm.io/gorm"
)

type EventHandler struct {
	eventService *services.EventService
}

func NewEventHandler(db *gorm.DB) *EventHandler {
	return &EventHandler{
		eventService: services.NewEventService(db),
	}
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// List returns events with derived occupancy
// GET /api/events?from=...&to=...&page=...&page_size=...
func (h *EventHandler) List(c *gin.Context) {
	req := services.EventListRequest{}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			response.BadRequest(c, "invalid from timestamp")
			return
		}
		req.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			response.BadRequest(c, "invalid to timestamp")
			return
		}
		req.To = &t
	}
	req.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	req.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "50"))

	viewerID := middleware.GetUserID(c)
	roster := middleware.GetRole(c) == models.RoleAdmin

	result, err := h.eventService.List(&req, viewerID, roster)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Get returns one event with derived occupancy
// GET /api/events/:id
func (h *EventHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	viewerID := middleware.GetUserID(c)
	roster := middleware.GetRole(c) == models.RoleAdmin

	view, err := h.eventService.Get(id, viewerID, roster)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// Create adds an event with its sub-shifts
// POST /api/admin/events
func (h *EventHandler) Create(c *gin.Context) {
	var req services.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	event, err := h.eventService.Create(&req, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Update rewrites an event and merges its sub-shift list
// PUT /api/admin/events/:id
func (h *EventHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	event, err := h.eventService.Update(id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, event)
}

// Delete removes an event and everything under it
// DELETE /api/admin/events/:id
func (h *EventHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.eventService.Delete(id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "event deleted"})
}
