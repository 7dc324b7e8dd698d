package handler

import (
	"tokensale-platform/internal/adapter/http/dto"
	"tokensale-platform/internal/adapter/http/middleware"
	"tokensale-platform/internal/core/ports"
	"tokensale-platform/pkg/apperror"
	"tokensale-platform/pkg/response"

	"github.com/gin-gonic/gin"
)

// ConfigHandler serves the system configuration endpoints.
type ConfigHandler struct {
	configSvc ports.ConfigService
}

// NewConfigHandler creates a new ConfigHandler.
func NewConfigHandler(configSvc ports.ConfigService) *ConfigHandler {
	return &ConfigHandler{configSvc: configSvc}
}

// GetPublic handles GET /api/config/get.
func (h *ConfigHandler) GetPublic(c *gin.Context) {
	configs, err := h.configSvc.PublicConfigs(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, configs)
}

// Update handles POST /api/config/admin/update.
func (h *ConfigHandler) Update(c *gin.Context) {
	var req dto.ConfigUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	entry, err := h.configSvc.Update(c.Request.Context(), middleware.SessionWallet(c), req.Key, req.Value)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, entry)
}
