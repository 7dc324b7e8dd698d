package handler

import (
	"encoding/hex"
	"net/http"
	"strings"

	"tokensale-platform/internal/adapter/http/dto"
	"tokensale-platform/internal/adapter/http/middleware"
	"tokensale-platform/internal/core/ports"
	"tokensale-platform/pkg/apperror"
	"tokensale-platform/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles wallet authentication endpoints.
type AuthHandler struct {
	accountSvc ports.AccountService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(accountSvc ports.AccountService) *AuthHandler {
	return &AuthHandler{accountSvc: accountSvc}
}

// Connect handles POST /api/auth/connect.
func (h *AuthHandler) Connect(c *gin.Context) {
	var req dto.ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	sig, err := hex.DecodeString(strings.TrimPrefix(req.Signature, "0x"))
	if err != nil {
		response.Error(c, apperror.ErrInvalidSignature(err))
		return
	}

	result, err := h.accountSvc.ConnectOrLoad(c.Request.Context(), ports.ConnectRequest{
		WalletAddress: req.WalletAddress,
		Message:       req.Message,
		Signature:     sig,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ConnectResponse{
		WalletAddress: result.Account.WalletAddress,
		IsAdmin:       result.IsAdmin,
		SessionToken:  result.SessionToken,
		TokenExpiry:   result.TokenExpiry.Unix(),
		ReferralCode:  result.Account.ReferralCode,
	})
}

// Verify handles GET /api/auth/verify?wallet_address=0x... The shorter
// wallet parameter is accepted as an alias.
func (h *AuthHandler) Verify(c *gin.Context) {
	wallet := c.Query("wallet_address")
	if wallet == "" {
		wallet = c.Query("wallet")
	}
	if wallet == "" {
		response.Error(c, apperror.Validation("wallet_address query parameter is required"))
		return
	}

	account, err := h.accountSvc.Verify(c.Request.Context(), wallet)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toAccountResponse(account))
}

// Disconnect handles POST /api/auth/disconnect. Session tokens are
// stateless, so disconnect is an acknowledgement; the client discards
// the token.
func (h *AuthHandler) Disconnect(c *gin.Context) {
	response.OK(c, gin.H{"disconnected": true})
}

// UpdateProfile handles PUT /api/auth/profile.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req dto.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	account, err := h.accountSvc.UpdateProfile(c.Request.Context(), ports.ProfileUpdateRequest{
		WalletAddress:     middleware.SessionWallet(c),
		Username:          req.Username,
		Email:             req.Email,
		PreferredLanguage: req.PreferredLanguage,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toAccountResponse(account))
}

// HealthCheck handles GET /health — deep health check verifying all dependencies.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		type depStatus struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		}

		deps := make(map[string]depStatus)
		allHealthy := true

		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				deps[checker.Name()] = depStatus{Status: "unhealthy", Error: err.Error()}
				allHealthy = false
			} else {
				deps[checker.Name()] = depStatus{Status: "healthy"}
			}
		}

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}
