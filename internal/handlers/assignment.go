package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/volunty/volunty/internal/middleware"
	"github.com/volunty/volunty/internal/services"
	"github.com/volunty/volunty/pkg/response"
	"gorm.io/gorm"
)

type AssignmentHandler struct {
	assignmentService *services.AssignmentService
}

func NewAssignmentHandler(db *gorm.DB) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentService: services.NewAssignmentService(db),
	}
}

// SignUp claims a seat on a sub-shift for the caller
// POST /api/sub-shifts/:id/signups
func (h *AssignmentHandler) SignUp(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.assignmentService.SignUp(id, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListMine returns the caller's commitments
// GET /api/my/assignments
func (h *AssignmentHandler) ListMine(c *gin.Context) {
	views, err := h.assignmentService.ListForUser(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, views)
}
