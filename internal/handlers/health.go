package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/volunty/volunty/internal/models"
	"github.com/volunty/volunty/internal/services"
)

// HealthHandler provides the health check endpoint.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// CheckHealth returns the health status of all subsystems.
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	dbStatus := "ok"
	sqlDB, err := models.GetDB().DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	taskQueue := services.GetTaskQueue()
	queueMode := "sync"
	if taskQueue != nil && taskQueue.IsAsync() {
		queueMode = "async (Redis)"
	}

	var openSwaps int64
	models.GetDB().Model(&models.SwapRequest{}).
		Where("status = ?", models.SwapOpen).
		Count(&openSwaps)

	c.JSON(200, gin.H{
		"status":  overall,
		"service": "volunty",
		"components": gin.H{
			"database":   dbStatus,
			"queue_mode": queueMode,
			"open_swaps": openSwaps,
		},
	})
}
