package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/volunty/volunty/internal/services"
	"github.com/volunty/volunty/pkg/response"
	"gorm.io/gorm"
)

type SettingsHandler struct {
	settingsService *services.SettingsService
}

func NewSettingsHandler(db *gorm.DB) *SettingsHandler {
	return &SettingsHandler{
		settingsService: services.NewSettingsService(db),
	}
}

// List returns every organization setting
// GET /api/admin/settings
func (h *SettingsHandler) List(c *gin.Context) {
	all, err := h.settingsService.All()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, all)
}

// Update upserts a batch of settings
// PUT /api/admin/settings
func (h *SettingsHandler) Update(c *gin.Context) {
	var req map[string]string
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	for key, value := range req {
		if err := h.settingsService.Set(key, value); err != nil {
			response.Error(c, err)
			return
		}
	}
	response.Success(c, gin.H{"message": "settings updated"})
}

// PublicInfo exposes the handful of settings the login page needs
// GET /api/org-info
func (h *SettingsHandler) PublicInfo(c *gin.Context) {
	response.Success(c, gin.H{
		"org_name": h.settingsService.GetWithDefault("org_name", "VolunTy"),
		"timezone": h.settingsService.Timezone(),
	})
}
