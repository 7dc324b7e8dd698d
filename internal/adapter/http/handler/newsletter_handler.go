package handler

import (
	"tokensale-platform/internal/adapter/http/dto"
	"tokensale-platform/internal/adapter/http/middleware"
	"tokensale-platform/internal/core/ports"
	"tokensale-platform/pkg/apperror"
	"tokensale-platform/pkg/response"

	"github.com/gin-gonic/gin"
)

// NewsletterHandler serves the newsletter subscription endpoints.
type NewsletterHandler struct {
	newsletterSvc ports.NewsletterService
}

// NewNewsletterHandler creates a new NewsletterHandler.
func NewNewsletterHandler(newsletterSvc ports.NewsletterService) *NewsletterHandler {
	return &NewsletterHandler{newsletterSvc: newsletterSvc}
}

// Subscribe handles POST /api/newsletter/subscribe.
func (h *NewsletterHandler) Subscribe(c *gin.Context) {
	var req dto.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	reactivated, err := h.newsletterSvc.Subscribe(c.Request.Context(), req.Email, req.Language)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"subscribed": true, "reactivated": reactivated})
}

// Unsubscribe handles POST /api/newsletter/unsubscribe.
func (h *NewsletterHandler) Unsubscribe(c *gin.Context) {
	var req dto.UnsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if err := h.newsletterSvc.Unsubscribe(c.Request.Context(), req.Email); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"unsubscribed": true})
}

// List handles GET /api/newsletter/admin/list.
func (h *NewsletterHandler) List(c *gin.Context) {
	subs, err := h.newsletterSvc.ListSubscribers(c.Request.Context(), middleware.SessionWallet(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, subs)
}
