package handler

import (
	"tokensale-platform/internal/adapter/http/dto"
	"tokensale-platform/internal/adapter/http/middleware"
	"tokensale-platform/internal/core/ports"
	"tokensale-platform/pkg/response"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the admin reporting endpoints. Authorization is
// decided per request by the admin service, never by the session token
// alone.
type AdminHandler struct {
	adminSvc ports.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminSvc ports.AdminService) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc}
}

// Dashboard handles GET /api/admin/dashboard.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.adminSvc.Dashboard(c.Request.Context(), middleware.SessionWallet(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{
		"total_users":       stats.TotalUsers,
		"total_staked":      stats.TotalStaked.String(),
		"total_subscribers": stats.TotalSubscribers,
		"last_updated":      stats.LastUpdated,
	})
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.adminSvc.Stats(c.Request.Context(), middleware.SessionWallet(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{
		"total_users":             stats.TotalUsers,
		"active_last_24h":         stats.ActiveLast24h,
		"total_tokens":            stats.TotalTokens.String(),
		"total_staked":            stats.TotalStaked.String(),
		"staking_percentage":      stats.StakingPercentage.String(),
		"total_subscribers":       stats.TotalSubscribers,
		"subscribers_by_language": stats.SubscribersByLanguage,
		"content_by_language":     stats.ContentByLanguage,
		"last_updated":            stats.LastUpdated,
	})
}

// Users handles GET /api/admin/users.
func (h *AdminHandler) Users(c *gin.Context) {
	accounts, err := h.adminSvc.ListUsers(c.Request.Context(), middleware.SessionWallet(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.AccountResponse, 0, len(accounts))
	for i := range accounts {
		out = append(out, toAccountResponse(&accounts[i]))
	}
	response.OK(c, out)
}
