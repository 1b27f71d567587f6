package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/volunty/volunty/internal/services"
	"github.com/volunty/volunty/pkg/response"
	"gorm.io/gorm"
)

type AuditLogHandler struct {
	auditService *services.AuditService
}

func NewAuditLogHandler(db *gorm.DB) *AuditLogHandler {
	return &AuditLogHandler{
		auditService: services.NewAuditService(db),
	}
}

// List returns audit log entries
// GET /api/admin/audit-logs
func (h *AuditLogHandler) List(c *gin.Context) {
	req := services.AuditListRequest{
		Level:  c.Query("level"),
		Module: c.Query("module"),
	}
	req.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	req.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.auditService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
