package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/volunty/volunty/internal/services"
	"github.com/volunty/volunty/pkg/response"
	"gorm.io/gorm"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: services.NewDashboardService(db),
	}
}

// GetStats returns scheduling activity summaries
// GET /api/admin/dashboard
func (h *DashboardHandler) GetStats(c *gin.Context) {
	var req services.DashboardStatsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	stats, err := h.dashboardService.GetStats(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}
