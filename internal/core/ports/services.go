package ports

import (
	"context"
	"time"

	"tokensale-platform/internal/core/domain"

	"github.com/shopspring/decimal"
)

// SignatureVerifier recovers the signer of a personal-message signature
// and compares it to a claimed wallet address. This is the only place raw
// signature recovery happens; the whole auth flow reduces to it.
type SignatureVerifier interface {
	// Verify returns nil when signature over message was produced by the
	// claimed address. Malformed signatures and signer mismatches both
	// surface as authentication errors, never as internal faults.
	Verify(claimedAddress, message string, signature []byte) error
}

// SessionTokenService issues and validates wallet session tokens handed
// out after a successful connect.
type SessionTokenService interface {
	Generate(wallet string, isAdmin bool) (string, time.Time, error)
	Validate(tokenString string) (*SessionClaims, error)
}

// SessionClaims holds the parsed session token claims.
type SessionClaims struct {
	WalletAddress string
	IsAdmin       bool
}

// BalanceOracle reads a wallet's on-chain token balance. Callers must
// time-box the query and treat failure as "balance unknown", never as a
// request-fatal error.
type BalanceOracle interface {
	QueryBalance(ctx context.Context, wallet string) (decimal.Decimal, error)
}

// TransferExecutor submits a token transfer and returns an external
// reference id. The simulated variant always succeeds with a synthetic
// reference; the on-chain variant owns its own retry/backoff.
type TransferExecutor interface {
	Transfer(ctx context.Context, toWallet string, amount decimal.Decimal) (string, error)
}

// ConfigCache is the best-effort Redis layer in front of the public
// config endpoint. A nil payload means cache miss.
type ConfigCache interface {
	Get(ctx context.Context) ([]byte, error)
	Set(ctx context.Context, payload []byte, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// --- Service Ports (Business Logic) ---

// AccountService defines the wallet-identity flows.
type AccountService interface {
	// ConnectOrLoad authenticates a signed connect message, creating the
	// account on first contact. Repeated connects are idempotent.
	ConnectOrLoad(ctx context.Context, req ConnectRequest) (*ConnectResult, error)
	// Verify looks up an existing account without signature proof.
	Verify(ctx context.Context, wallet string) (*domain.Account, error)
	UpdateProfile(ctx context.Context, req ProfileUpdateRequest) (*domain.Account, error)
	RegisterAffiliate(ctx context.Context, referrer, newWallet string) (*AffiliateResult, error)
}

// ConnectRequest holds validated input for wallet connection.
type ConnectRequest struct {
	WalletAddress string
	Message       string
	Signature     []byte
}

// ConnectResult is the outcome of a successful connect.
type ConnectResult struct {
	Account      *domain.Account
	IsAdmin      bool
	SessionToken string
	TokenExpiry  time.Time
}

// ProfileUpdateRequest holds validated profile fields.
type ProfileUpdateRequest struct {
	WalletAddress     string
	Username          *string
	Email             *string
	PreferredLanguage *string
}

// AffiliateResult reports a processed referral.
type AffiliateResult struct {
	Referrer   string
	NewWallet  string
	Commission decimal.Decimal
	TxRef      string
	// AlreadyReferred is set when the new wallet had a referrer before this
	// call; no commission is paid in that case.
	AlreadyReferred bool
}

// StakingService defines the staking ledger operations.
type StakingService interface {
	Stake(ctx context.Context, wallet string, amount decimal.Decimal) (*domain.TokenBalance, error)
	Unstake(ctx context.Context, wallet string, amount decimal.Decimal) (*domain.TokenBalance, error)
	Buy(ctx context.Context, req BuyRequest) (*BuyResult, error)
	// Balance returns the wallet's token record, creating an empty one on
	// first query and opportunistically refreshing liquid from the chain.
	Balance(ctx context.Context, wallet string) (*domain.TokenBalance, error)
	StakedInfo(ctx context.Context, wallet string) (*domain.TokenBalance, error)
	PercentageOfSupply(ctx context.Context, wallet string) (*SupplyShare, error)
	// History returns the wallet's most recent ledger entries.
	History(ctx context.Context, wallet string, limit int) ([]domain.Transaction, error)
}

// BuyRequest holds validated input for a token purchase.
type BuyRequest struct {
	WalletAddress string
	Amount        decimal.Decimal
	Currency      string
}

// BuyResult reports a completed (simulated or on-chain) purchase.
type BuyResult struct {
	TokensReceived decimal.Decimal
	TxRef          string
	Balance        *domain.TokenBalance
}

// SupplyShare is a wallet's holdings expressed against total supply.
type SupplyShare struct {
	Percentage  decimal.Decimal
	TotalTokens decimal.Decimal
	TotalSupply decimal.Decimal
}

// AdminService defines the admission gate and the admin reporting surface.
type AdminService interface {
	// RequireAdmin authorizes an admin-only operation. The admin flag is
	// re-read from storage on every call; the decision is never cached.
	RequireAdmin(ctx context.Context, wallet string) (*domain.Account, error)
	Dashboard(ctx context.Context, adminWallet string) (*DashboardStats, error)
	Stats(ctx context.Context, adminWallet string) (*SiteStats, error)
	ListUsers(ctx context.Context, adminWallet string) ([]domain.Account, error)
}

// DashboardStats is the condensed admin dashboard payload.
type DashboardStats struct {
	TotalUsers       int64
	TotalStaked      decimal.Decimal
	TotalSubscribers int64
	LastUpdated      time.Time
}

// SiteStats is the detailed admin statistics payload.
type SiteStats struct {
	TotalUsers            int64
	ActiveLast24h         int64
	TotalTokens           decimal.Decimal
	TotalStaked           decimal.Decimal
	StakingPercentage     decimal.Decimal
	TotalSubscribers      int64
	SubscribersByLanguage map[string]int64
	ContentByLanguage     map[string]int64
	LastUpdated           time.Time
}

// ContentService defines the multilingual content store surface.
type ContentService interface {
	GetPage(ctx context.Context, pageID, language string) (string, map[string]ContentSection, error)
	Translations(ctx context.Context) (map[string][]string, error)
	Update(ctx context.Context, req ContentUpdateRequest) (*domain.ContentEntry, error)
}

// ContentSection is one rendered section of a page.
type ContentSection struct {
	Type        string     `json:"type"`
	Value       string     `json:"value"`
	LastUpdated *time.Time `json:"last_updated"`
}

// ContentUpdateRequest holds validated input for a content upsert.
type ContentUpdateRequest struct {
	AdminWallet  string
	PageID       string
	SectionID    string
	ContentType  string
	ContentValue string
	LanguageCode string
}

// ConfigService defines the system configuration surface.
type ConfigService interface {
	PublicConfigs(ctx context.Context) (map[string]string, error)
	Update(ctx context.Context, adminWallet, key, value string) (*domain.ConfigEntry, error)
}

// NewsletterService defines the newsletter list surface.
type NewsletterService interface {
	Subscribe(ctx context.Context, email, language string) (reactivated bool, err error)
	Unsubscribe(ctx context.Context, email string) error
	ListSubscribers(ctx context.Context, adminWallet string) ([]domain.Subscription, error)
}
