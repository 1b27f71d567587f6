package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/volunty/volunty/internal/middleware"
	"github.com/volunty/volunty/internal/services"
	"github.com/volunty/volunty/pkg/response"
	"gorm.io/gorm"
)

type UserHandler struct {
	profileService *services.ProfileService
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{
		profileService: services.NewProfileService(db),
	}
}

// List returns the user directory
// GET /api/admin/users
func (h *UserHandler) List(c *gin.Context) {
	req := services.UserListRequest{
		Role:    c.Query("role"),
		Keyword: c.Query("keyword"),
	}
	req.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	req.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.profileService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

type setRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// SetRole changes a user's role
// PATCH /api/admin/users/:id/role
func (h *UserHandler) SetRole(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req setRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.profileService.SetRole(id, req.Role); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "role updated"})
}

type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetActive enables or disables an account
// PATCH /api/admin/users/:id/active
func (h *UserHandler) SetActive(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.profileService.SetActive(id, *req.Active); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "account updated"})
}

// GetCalendarToken returns the caller's feed token and URL
// GET /api/my/calendar-token
func (h *UserHandler) GetCalendarToken(c *gin.Context) {
	token, err := h.profileService.CalendarToken(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"calendar_token": token})
}

// RotateCalendarToken invalidates the old feed URL
// POST /api/my/calendar-token/rotate
func (h *UserHandler) RotateCalendarToken(c *gin.Context) {
	token, err := h.profileService.RotateCalendarToken(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"calendar_token": token})
}
