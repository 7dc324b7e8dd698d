package service

import (
	"context"
	"fmt"
	"time"

	"tokensale-platform/internal/core/domain"
	"tokensale-platform/internal/core/ports"
	"tokensale-platform/pkg/apperror"

	"github.com/shopspring/decimal"
)

// AdminServiceImpl implements ports.AdminService. The admin flag is read
// from storage on every gate check; revoking admin takes effect on the
// next request.
type AdminServiceImpl struct {
	accountRepo    ports.AccountRepository
	tokenRepo      ports.TokenRepository
	newsletterRepo ports.NewsletterRepository
	contentRepo    ports.ContentRepository
	totalSupply    decimal.Decimal
}

// NewAdminService creates a new AdminServiceImpl.
func NewAdminService(
	accountRepo ports.AccountRepository,
	tokenRepo ports.TokenRepository,
	newsletterRepo ports.NewsletterRepository,
	contentRepo ports.ContentRepository,
	totalSupply decimal.Decimal,
) *AdminServiceImpl {
	return &AdminServiceImpl{
		accountRepo:    accountRepo,
		tokenRepo:      tokenRepo,
		newsletterRepo: newsletterRepo,
		contentRepo:    contentRepo,
		totalSupply:    totalSupply,
	}
}

// RequireAdmin authorizes an admin-only operation for the given wallet.
func (s *AdminServiceImpl) RequireAdmin(ctx context.Context, wallet string) (*domain.Account, error) {
	wallet = domain.NormalizeAddress(wallet)

	account, err := s.accountRepo.GetByWallet(ctx, wallet)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrNotFound("Account")
	}
	if !account.IsAdmin {
		return nil, apperror.ErrAdminRequired()
	}
	return account, nil
}

// Dashboard returns the condensed admin dashboard payload.
func (s *AdminServiceImpl) Dashboard(ctx context.Context, adminWallet string) (*ports.DashboardStats, error) {
	if _, err := s.RequireAdmin(ctx, adminWallet); err != nil {
		return nil, err
	}

	users, err := s.accountRepo.Count(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("count users: %w", err))
	}
	staked, err := s.tokenRepo.SumStaked(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("sum staked: %w", err))
	}
	subscribers, err := s.newsletterRepo.CountActive(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("count subscribers: %w", err))
	}

	return &ports.DashboardStats{
		TotalUsers:       users,
		TotalStaked:      staked,
		TotalSubscribers: subscribers,
		LastUpdated:      time.Now().UTC(),
	}, nil
}

// Stats returns the detailed site statistics payload.
func (s *AdminServiceImpl) Stats(ctx context.Context, adminWallet string) (*ports.SiteStats, error) {
	if _, err := s.RequireAdmin(ctx, adminWallet); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	users, err := s.accountRepo.Count(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("count users: %w", err))
	}
	active, err := s.accountRepo.CountActiveSince(ctx, now.Add(-24*time.Hour))
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("count active users: %w", err))
	}
	totalTokens, err := s.tokenRepo.SumTotal(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("sum tokens: %w", err))
	}
	staked, err := s.tokenRepo.SumStaked(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("sum staked: %w", err))
	}
	subscribers, err := s.newsletterRepo.CountActive(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("count subscribers: %w", err))
	}
	subsByLang, err := s.newsletterRepo.CountActiveByLanguage(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("count subscribers by language: %w", err))
	}
	contentByLang, err := s.contentRepo.CountByLanguage(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("count content by language: %w", err))
	}

	stakingPct := decimal.Zero
	if s.totalSupply.IsPositive() {
		stakingPct = staked.Div(s.totalSupply).Mul(decimal.NewFromInt(100)).Round(supplyShareScale)
	}

	return &ports.SiteStats{
		TotalUsers:            users,
		ActiveLast24h:         active,
		TotalTokens:           totalTokens,
		TotalStaked:           staked,
		StakingPercentage:     stakingPct,
		TotalSubscribers:      subscribers,
		SubscribersByLanguage: subsByLang,
		ContentByLanguage:     contentByLang,
		LastUpdated:           now,
	}, nil
}

// ListUsers returns every registered account, admin-gated.
func (s *AdminServiceImpl) ListUsers(ctx context.Context, adminWallet string) ([]domain.Account, error) {
	if _, err := s.RequireAdmin(ctx, adminWallet); err != nil {
		return nil, err
	}

	accounts, err := s.accountRepo.List(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list accounts: %w", err))
	}
	return accounts, nil
}
