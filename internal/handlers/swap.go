package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/volunty/volunty/internal/config"
	"github.com/volunty/volunty/internal/middleware"
	"github.com/volunty/volunty/internal/services"
	"github.com/volunty/volunty/pkg/logger"
	"github.com/volunty/volunty/pkg/response"
	"gorm.io/gorm"
)

type SwapHandler struct {
	swapService *services.SwapService
	queue       services.TaskQueue
}

func NewSwapHandler(db *gorm.DB, cfg *config.Config, queue services.TaskQueue) *SwapHandler {
	return &SwapHandler{
		swapService: services.NewSwapService(db, cfg.App.BaseURL),
		queue:       queue,
	}
}

// Create opens a swap request for one of the caller's assignments
// POST /api/assignments/:id/swap-requests
func (h *SwapHandler) Create(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.swapService.Create(id, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.enqueue(&services.NotifyTask{Kind: services.NotifySwapCreated, SwapRequestID: result.ID})
	response.Created(c, result)
}

// ListMine returns the volunteer swap timeline
// GET /api/swap-requests
func (h *SwapHandler) ListMine(c *gin.Context) {
	items, err := h.swapService.ListForUser(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, items)
}

// View shows a shared swap offer by token. The route is public; the
// token is the only credential.
// GET /api/swap-requests/:token
func (h *SwapHandler) View(c *gin.Context) {
	offer, err := h.swapService.View(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, offer)
}

type resolveRequest struct {
	Action string `json:"action" binding:"required,oneof=accept decline"`
}

// Resolve accepts or declines a shared swap offer
// POST /api/swap-requests/:token/resolve
func (h *SwapHandler) Resolve(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	token := c.Param("token")
	userID := middleware.GetUserID(c)

	request, err := h.swapService.FindByToken(token)
	if err != nil {
		response.Error(c, err)
		return
	}

	switch req.Action {
	case "accept":
		if err := h.swapService.Accept(token, userID); err != nil {
			response.Error(c, err)
			return
		}
		h.enqueue(&services.NotifyTask{Kind: services.NotifySwapAccepted, SwapRequestID: request.ID})
		response.Success(c, gin.H{"message": "shift taken over"})
	case "decline":
		if err := h.swapService.Decline(token, userID); err != nil {
			response.Error(c, err)
			return
		}
		h.enqueue(&services.NotifyTask{Kind: services.NotifySwapCancelled, SwapRequestID: request.ID})
		response.Success(c, gin.H{"message": "swap request declined"})
	}
}

// Cancel withdraws the caller's own open swap request
// DELETE /api/swap-requests/:id
func (h *SwapHandler) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.swapService.Cancel(id, middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "swap request cancelled"})
}

// ListOpen returns all open swap requests for the admin overview
// GET /api/admin/swap-requests
func (h *SwapHandler) ListOpen(c *gin.Context) {
	items, err := h.swapService.ListOpen()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, items)
}

func (h *SwapHandler) enqueue(task *services.NotifyTask) {
	if h.queue == nil {
		return
	}
	if err := h.queue.Enqueue(task); err != nil {
		// Notification delivery is best effort; the swap itself has
		// already committed.
		logger.Warnf("[Swap] Failed to enqueue %s notification: %v", task.Kind, err)
	}
}
