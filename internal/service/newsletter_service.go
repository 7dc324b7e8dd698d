package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tokensale-platform/internal/core/domain"
	"tokensale-platform/internal/core/ports"
	"tokensale-platform/pkg/apperror"
)

// NewsletterServiceImpl implements ports.NewsletterService.
type NewsletterServiceImpl struct {
	newsletterRepo ports.NewsletterRepository
	adminSvc       ports.AdminService
}

// NewNewsletterService creates a new NewsletterServiceImpl.
func NewNewsletterService(newsletterRepo ports.NewsletterRepository, adminSvc ports.AdminService) *NewsletterServiceImpl {
	return &NewsletterServiceImpl{
		newsletterRepo: newsletterRepo,
		adminSvc:       adminSvc,
	}
}

// Subscribe adds an email to the list. A soft-deactivated subscription is
// reactivated in place; an already active one is rejected.
func (s *NewsletterServiceImpl) Subscribe(ctx context.Context, email, language string) (bool, error) {
	email = normalizeEmail(email)
	if !domain.IsSupportedLanguage(language) && language != "" {
		language = domain.DefaultLanguage
	}

	existing, err := s.newsletterRepo.Get(ctx, email)
	if err != nil {
		return false, apperror.InternalError(fmt.Errorf("load subscription: %w", err))
	}

	if existing != nil {
		if existing.IsActive {
			return false, apperror.ErrAlreadySubscribed()
		}
		existing.IsActive = true
		existing.SubscribedAt = time.Now().UTC()
		if language != "" {
			existing.LanguagePreference = language
		}
		if err := s.newsletterRepo.Save(ctx, existing); err != nil {
			return false, apperror.InternalError(fmt.Errorf("reactivate subscription: %w", err))
		}
		return true, nil
	}

	if err := s.newsletterRepo.Save(ctx, domain.NewSubscription(email, language)); err != nil {
		return false, apperror.InternalError(fmt.Errorf("save subscription: %w", err))
	}
	return false, nil
}

// Unsubscribe soft-deactivates a subscription so the address can
// resubscribe later without a duplicate row.
func (s *NewsletterServiceImpl) Unsubscribe(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	existing, err := s.newsletterRepo.Get(ctx, email)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("load subscription: %w", err))
	}
	if existing == nil || !existing.IsActive {
		return apperror.ErrNotSubscribed()
	}

	existing.IsActive = false
	if err := s.newsletterRepo.Save(ctx, existing); err != nil {
		return apperror.InternalError(fmt.Errorf("deactivate subscription: %w", err))
	}
	return nil
}

// ListSubscribers returns the active subscriptions, admin-gated.
func (s *NewsletterServiceImpl) ListSubscribers(ctx context.Context, adminWallet string) ([]domain.Subscription, error) {
	if _, err := s.adminSvc.RequireAdmin(ctx, adminWallet); err != nil {
		return nil, err
	}

	subs, err := s.newsletterRepo.ListActive(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list subscribers: %w", err))
	}
	return subs, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
