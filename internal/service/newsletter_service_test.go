package service

import (
	"context"
	"testing"
	"time"

	"tokensale-platform/internal/core/domain"
	"tokensale-platform/internal/core/ports/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func setupNewsletterService(t *testing.T) (*NewsletterServiceImpl, *mocks.MockNewsletterRepository, *mocks.MockAdminService, *gomock.Controller) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockNewsletterRepository(ctrl)
	adminSvc := mocks.NewMockAdminService(ctrl)
	return NewNewsletterService(repo, adminSvc), repo, adminSvc, ctrl
}

func TestNewsletterService_Subscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("new subscription", func(t *testing.T) {
		svc, repo, _, ctrl := setupNewsletterService(t)
		defer ctrl.Finish()

		repo.EXPECT().Get(ctx, "user@example.com").Return(nil, nil)
		repo.EXPECT().Save(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, sub *domain.Subscription) error {
				assert.Equal(t, "user@example.com", sub.Email)
				assert.True(t, sub.IsActive)
				assert.Equal(t, "en", sub.LanguagePreference)
				return nil
			})

		reactivated, err := svc.Subscribe(ctx, "User@Example.com", "en")
		require.NoError(t, err)
		assert.False(t, reactivated)
	})

	t.Run("active duplicate rejected", func(t *testing.T) {
		svc, repo, _, ctrl := setupNewsletterService(t)
		defer ctrl.Finish()

		repo.EXPECT().Get(ctx, "user@example.com").Return(&domain.Subscription{
			Email:    "user@example.com",
			IsActive: true,
		}, nil)

		_, err := svc.Subscribe(ctx, "user@example.com", "")
		assertAppError(t, err, "NLT_001")
	})

	t.Run("inactive subscription reactivated", func(t *testing.T) {
		svc, repo, _, ctrl := setupNewsletterService(t)
		defer ctrl.Finish()

		repo.EXPECT().Get(ctx, "user@example.com").Return(&domain.Subscription{
			Email:              "user@example.com",
			SubscribedAt:       time.Now().Add(-30 * 24 * time.Hour),
			LanguagePreference: "pt",
			IsActive:           false,
		}, nil)
		repo.EXPECT().Save(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, sub *domain.Subscription) error {
				assert.True(t, sub.IsActive)
				assert.Equal(t, "fr", sub.LanguagePreference)
				return nil
			})

		reactivated, err := svc.Subscribe(ctx, "user@example.com", "fr")
		require.NoError(t, err)
		assert.True(t, reactivated)
	})
}

func TestNewsletterService_Unsubscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("active subscription deactivated", func(t *testing.T) {
		svc, repo, _, ctrl := setupNewsletterService(t)
		defer ctrl.Finish()

		repo.EXPECT().Get(ctx, "user@example.com").Return(&domain.Subscription{
			Email:    "user@example.com",
			IsActive: true,
		}, nil)
		repo.EXPECT().Save(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, sub *domain.Subscription) error {
				assert.False(t, sub.IsActive)
				return nil
			})

		require.NoError(t, svc.Unsubscribe(ctx, "user@example.com"))
	})

	t.Run("unknown email", func(t *testing.T) {
		svc, repo, _, ctrl := setupNewsletterService(t)
		defer ctrl.Finish()

		repo.EXPECT().Get(ctx, "ghost@example.com").Return(nil, nil)
		assertAppError(t, svc.Unsubscribe(ctx, "ghost@example.com"), "NLT_002")
	})

	t.Run("already inactive", func(t *testing.T) {
		svc, repo, _, ctrl := setupNewsletterService(t)
		defer ctrl.Finish()

		repo.EXPECT().Get(ctx, "user@example.com").Return(&domain.Subscription{
			Email:    "user@example.com",
			IsActive: false,
		}, nil)
		assertAppError(t, svc.Unsubscribe(ctx, "user@example.com"), "NLT_002")
	})
}

func TestNewsletterService_ListSubscribers(t *testing.T) {
	svc, repo, adminSvc, ctrl := setupNewsletterService(t)
	defer ctrl.Finish()
	ctx := context.Background()

	adminSvc.EXPECT().RequireAdmin(ctx, testWallet).Return(&domain.Account{WalletAddress: testWallet, IsAdmin: true}, nil)
	repo.EXPECT().ListActive(ctx).Return([]domain.Subscription{
		{Email: "a@example.com", IsActive: true},
		{Email: "b@example.com", IsActive: true},
	}, nil)

	subs, err := svc.ListSubscribers(ctx, testWallet)
	require.NoError(t, err)
	assert.Len(t, subs, 2)
}
