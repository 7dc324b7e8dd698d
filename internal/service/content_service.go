package service

import (
	"context"
	"fmt"

	"tokensale-platform/internal/core/domain"
	"tokensale-platform/internal/core/ports"
	"tokensale-platform/pkg/apperror"
)

// ContentServiceImpl implements ports.ContentService.
type ContentServiceImpl struct {
	contentRepo ports.ContentRepository
	adminSvc    ports.AdminService
}

// NewContentService creates a new ContentServiceImpl.
func NewContentService(contentRepo ports.ContentRepository, adminSvc ports.AdminService) *ContentServiceImpl {
	return &ContentServiceImpl{
		contentRepo: contentRepo,
		adminSvc:    adminSvc,
	}
}

// GetPage returns the sections of a page in the requested language. An
// unsupported language code falls back to the default; a supported but
// untranslated page retries in the default language so pages never come
// back empty when a default translation exists.
func (s *ContentServiceImpl) GetPage(ctx context.Context, pageID, language string) (string, map[string]ports.ContentSection, error) {
	if !domain.IsSupportedLanguage(language) {
		language = domain.DefaultLanguage
	}

	entries, err := s.contentRepo.GetPage(ctx, pageID, language)
	if err != nil {
		return "", nil, apperror.InternalError(fmt.Errorf("load page: %w", err))
	}

	if len(entries) == 0 && language != domain.DefaultLanguage {
		language = domain.DefaultLanguage
		entries, err = s.contentRepo.GetPage(ctx, pageID, language)
		if err != nil {
			return "", nil, apperror.InternalError(fmt.Errorf("load page fallback: %w", err))
		}
	}

	sections := make(map[string]ports.ContentSection, len(entries))
	for _, e := range entries {
		lastUpdated := e.LastUpdated
		sections[e.SectionID] = ports.ContentSection{
			Type:        e.ContentType,
			Value:       e.ContentValue,
			LastUpdated: &lastUpdated,
		}
	}
	return language, sections, nil
}

// Translations returns the page id -> available languages map.
func (s *ContentServiceImpl) Translations(ctx context.Context) (map[string][]string, error) {
	translations, err := s.contentRepo.Translations(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load translations: %w", err))
	}
	return translations, nil
}

// Update upserts one content section, admin-gated.
func (s *ContentServiceImpl) Update(ctx context.Context, req ports.ContentUpdateRequest) (*domain.ContentEntry, error) {
	admin, err := s.adminSvc.RequireAdmin(ctx, req.AdminWallet)
	if err != nil {
		return nil, err
	}

	if !domain.IsSupportedLanguage(req.LanguageCode) {
		return nil, apperror.Validation(fmt.Sprintf("unsupported language %q", req.LanguageCode))
	}

	entry := &domain.ContentEntry{
		PageID:       req.PageID,
		SectionID:    req.SectionID,
		ContentType:  req.ContentType,
		ContentValue: req.ContentValue,
		LanguageCode: req.LanguageCode,
		UpdatedBy:    &admin.WalletAddress,
	}

	saved, err := s.contentRepo.Upsert(ctx, entry)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("upsert content: %w", err))
	}
	return saved, nil
}
