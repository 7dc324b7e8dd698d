package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a wallet-identified platform user. The wallet address
// is both the primary key and the cryptographic identity anchor.
type Account struct {
	WalletAddress     string          `json:"wallet_address"`
	Username          *string         `json:"username"`
	Email             *string         `json:"email"`
	PreferredLanguage string          `json:"preferred_language"`
	RegistrationDate  time.Time       `json:"registration_date"`
	LastLogin         *time.Time      `json:"last_login"`
	IsAdmin           bool            `json:"is_admin"`
	ReferralCode      string          `json:"referral_code"`
	ReferredBy        *string         `json:"referred_by,omitempty"`
	AffiliateEarnings decimal.Decimal `json:"affiliate_earnings"`
}

// DefaultLanguage is applied to accounts created without an explicit
// language preference.
const DefaultLanguage = "pt"

// NewAccount builds a zero-state account for a previously unseen wallet.
// The referral code defaults to the wallet address itself.
func NewAccount(wallet string) *Account {
	wallet = NormalizeAddress(wallet)
	return &Account{
		WalletAddress:     wallet,
		PreferredLanguage: DefaultLanguage,
		RegistrationDate:  time.Now().UTC(),
		ReferralCode:      wallet,
		AffiliateEarnings: decimal.Zero,
	}
}

// NormalizeAddress lower-cases a hex wallet address. Address case carries
// no meaning (EIP-55 checksumming is display-only), so all storage and
// lookups use the normalized form.
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}
