package ports

import (
	"context"
	"time"

	"tokensale-platform/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountRepository defines persistence operations for wallet accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByWallet(ctx context.Context, wallet string) (*domain.Account, error)
	UpdateLastLogin(ctx context.Context, wallet string, at time.Time) error
	UpdateProfile(ctx context.Context, account *domain.Account) error
	// SetReferrer records who referred the wallet inside the commission
	// transaction block. Used once per account.
	SetReferrer(ctx context.Context, tx pgx.Tx, wallet, referrer string) error
	// AddAffiliateEarnings credits a commission inside a transaction block.
	AddAffiliateEarnings(ctx context.Context, tx pgx.Tx, wallet string, amount decimal.Decimal) error
	List(ctx context.Context) ([]domain.Account, error)
	Count(ctx context.Context) (int64, error)
	CountActiveSince(ctx context.Context, since time.Time) (int64, error)
}

// TokenRepository defines persistence for per-wallet staking state.
// Methods accepting pgx.Tx run inside transaction blocks where the row is
// held under a pessimistic lock; staking mutations must go through them.
type TokenRepository interface {
	Create(ctx context.Context, balance *domain.TokenBalance) error
	GetByWallet(ctx context.Context, wallet string) (*domain.TokenBalance, error)
	GetByWalletForUpdate(ctx context.Context, tx pgx.Tx, wallet string) (*domain.TokenBalance, error)
	// UpdateBalances writes both sides of a liquid/staked transfer plus the
	// lock anchor as a single statement.
	UpdateBalances(ctx context.Context, tx pgx.Tx, wallet string, liquid, staked decimal.Decimal, stakeStart *time.Time) error
	// SetLiquid overwrites the liquid balance outside a staking transaction
	// (opportunistic refresh from the on-chain oracle).
	SetLiquid(ctx context.Context, wallet string, liquid decimal.Decimal) error
	SumStaked(ctx context.Context) (decimal.Decimal, error)
	SumTotal(ctx context.Context) (decimal.Decimal, error)
}

// TransactionRepository defines persistence for the append-only audit
// ledger.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) error
	ListByWallet(ctx context.Context, wallet string, limit int) ([]domain.Transaction, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TransactionStatus) error
}

// ContentRepository defines persistence for the multilingual content store.
type ContentRepository interface {
	GetPage(ctx context.Context, pageID, language string) ([]domain.ContentEntry, error)
	// Translations returns page id -> available language codes.
	Translations(ctx context.Context) (map[string][]string, error)
	Upsert(ctx context.Context, entry *domain.ContentEntry) (*domain.ContentEntry, error)
	CountByLanguage(ctx context.Context) (map[string]int64, error)
}

// ConfigRepository defines persistence for system configuration pairs.
type ConfigRepository interface {
	Get(ctx context.Context, key string) (*domain.ConfigEntry, error)
	List(ctx context.Context) ([]domain.ConfigEntry, error)
	Upsert(ctx context.Context, entry *domain.ConfigEntry) (*domain.ConfigEntry, error)
}

// NewsletterRepository defines persistence for newsletter subscriptions.
type NewsletterRepository interface {
	Get(ctx context.Context, email string) (*domain.Subscription, error)
	Save(ctx context.Context, sub *domain.Subscription) error
	ListActive(ctx context.Context) ([]domain.Subscription, error)
	CountActive(ctx context.Context) (int64, error)
	CountActiveByLanguage(ctx context.Context) (map[string]int64, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
