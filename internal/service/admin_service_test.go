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

type adminTestDeps struct {
	svc            *AdminServiceImpl
	accountRepo    *mocks.MockAccountRepository
	tokenRepo      *mocks.MockTokenRepository
	newsletterRepo *mocks.MockNewsletterRepository
	contentRepo    *mocks.MockContentRepository
	ctrl           *gomock.Controller
}

func setupAdminService(t *testing.T) *adminTestDeps {
	ctrl := gomock.NewController(t)
	d := &adminTestDeps{
		accountRepo:    mocks.NewMockAccountRepository(ctrl),
		tokenRepo:      mocks.NewMockTokenRepository(ctrl),
		newsletterRepo: mocks.NewMockNewsletterRepository(ctrl),
		contentRepo:    mocks.NewMockContentRepository(ctrl),
		ctrl:           ctrl,
	}
	d.svc = NewAdminService(
		d.accountRepo, d.tokenRepo, d.newsletterRepo, d.contentRepo,
		dec("21000000"),
	)
	return d
}

func expectAdmin(d *adminTestDeps, ctx context.Context, wallet string) {
	d.accountRepo.EXPECT().GetByWallet(ctx, wallet).Return(&domain.Account{
		WalletAddress: wallet,
		IsAdmin:       true,
	}, nil)
}

func TestAdminService_RequireAdmin(t *testing.T) {
	d := setupAdminService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()

	t.Run("admin passes", func(t *testing.T) {
		expectAdmin(d, ctx, testWallet)
		account, err := d.svc.RequireAdmin(ctx, testWallet)
		require.NoError(t, err)
		assert.True(t, account.IsAdmin)
	})

	t.Run("non-admin rejected", func(t *testing.T) {
		d.accountRepo.EXPECT().GetByWallet(ctx, referrerWallet).Return(&domain.Account{
			WalletAddress: referrerWallet,
		}, nil)
		_, err := d.svc.RequireAdmin(ctx, referrerWallet)
		assertAppError(t, err, "AUTH_003")
	})

	t.Run("unknown wallet", func(t *testing.T) {
		d.accountRepo.EXPECT().GetByWallet(ctx, referrerWallet).Return(nil, nil)
		_, err := d.svc.RequireAdmin(ctx, referrerWallet)
		assertAppError(t, err, "RES_001")
	})
}

func TestAdminService_Dashboard(t *testing.T) {
	d := setupAdminService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()

	expectAdmin(d, ctx, testWallet)
	d.accountRepo.EXPECT().Count(ctx).Return(int64(42), nil)
	d.tokenRepo.EXPECT().SumStaked(ctx).Return(dec("123456"), nil)
	d.newsletterRepo.EXPECT().CountActive(ctx).Return(int64(7), nil)

	stats, err := d.svc.Dashboard(ctx, testWallet)
	require.NoError(t, err)
	assert.Equal(t, int64(42), stats.TotalUsers)
	assert.True(t, stats.TotalStaked.Equal(dec("123456")))
	assert.Equal(t, int64(7), stats.TotalSubscribers)
}

func TestAdminService_Stats(t *testing.T) {
	d := setupAdminService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()

	expectAdmin(d, ctx, testWallet)
	d.accountRepo.EXPECT().Count(ctx).Return(int64(100), nil)
	d.accountRepo.EXPECT().CountActiveSince(ctx, gomock.Any()).Return(int64(12), nil)
	d.tokenRepo.EXPECT().SumTotal(ctx).Return(dec("420000"), nil)
	d.tokenRepo.EXPECT().SumStaked(ctx).Return(dec("210000"), nil)
	d.newsletterRepo.EXPECT().CountActive(ctx).Return(int64(30), nil)
	d.newsletterRepo.EXPECT().CountActiveByLanguage(ctx).Return(map[string]int64{"pt": 20, "en": 10}, nil)
	d.contentRepo.EXPECT().CountByLanguage(ctx).Return(map[string]int64{"pt": 15}, nil)

	stats, err := d.svc.Stats(ctx, testWallet)
	require.NoError(t, err)
	assert.Equal(t, int64(100), stats.TotalUsers)
	assert.Equal(t, int64(12), stats.ActiveLast24h)
	// 210000 / 21000000 * 100 = 1
	assert.True(t, stats.StakingPercentage.Equal(dec("1")), "got %s", stats.StakingPercentage)
	assert.Equal(t, int64(20), stats.SubscribersByLanguage["pt"])
	assert.WithinDuration(t, time.Now().UTC(), stats.LastUpdated, time.Minute)
}

func TestAdminService_ListUsers_GateEnforced(t *testing.T) {
	d := setupAdminService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()

	d.accountRepo.EXPECT().GetByWallet(ctx, referrerWallet).Return(&domain.Account{
		WalletAddress: referrerWallet,
	}, nil)

	_, err := d.svc.ListUsers(ctx, referrerWallet)
	assertAppError(t, err, "AUTH_003")
}
