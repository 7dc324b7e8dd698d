package handler

import (
	"tokensale-platform/internal/adapter/http/dto"
	"tokensale-platform/internal/adapter/http/middleware"
	"tokensale-platform/internal/core/ports"
	"tokensale-platform/pkg/apperror"
	"tokensale-platform/pkg/response"

	"github.com/gin-gonic/gin"
)

// ContentHandler serves the multilingual content store.
type ContentHandler struct {
	contentSvc ports.ContentService
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(contentSvc ports.ContentService) *ContentHandler {
	return &ContentHandler{contentSvc: contentSvc}
}

// GetPage handles GET /api/content/:page/:language.
func (h *ContentHandler) GetPage(c *gin.Context) {
	pageID := c.Param("page")
	language := c.Param("language")

	resolved, sections, err := h.contentSvc.GetPage(c.Request.Context(), pageID, language)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{
		"page_id":  pageID,
		"language": resolved,
		"sections": sections,
	})
}

// Translations handles GET /api/content/translations.
func (h *ContentHandler) Translations(c *gin.Context) {
	translations, err := h.contentSvc.Translations(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, translations)
}

// Update handles POST /api/content/admin/update.
func (h *ContentHandler) Update(c *gin.Context) {
	var req dto.ContentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	entry, err := h.contentSvc.Update(c.Request.Context(), ports.ContentUpdateRequest{
		AdminWallet:  middleware.SessionWallet(c),
		PageID:       req.PageID,
		SectionID:    req.SectionID,
		ContentType:  req.ContentType,
		ContentValue: req.ContentValue,
		LanguageCode: req.LanguageCode,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, entry)
}
