package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TokenBalance carries the per-wallet staking state: the liquid amount,
// the staked amount, and the timestamp anchoring the minimum lock period.
//
// Invariant: Staked > 0 if and only if StakeStart is non-nil. StakeStart
// is set by the first stake, survives top-up stakes, and is cleared only
// when the staked balance returns to exactly zero.
type TokenBalance struct {
	WalletAddress string          `json:"wallet_address"`
	Liquid        decimal.Decimal `json:"token_amount"`
	Staked        decimal.Decimal `json:"staked_amount"`
	StakeStart    *time.Time      `json:"staking_start_date"`
	LastReward    *time.Time      `json:"last_reward_date"`
}

// NewTokenBalance builds an empty balance record for a wallet.
func NewTokenBalance(wallet string) *TokenBalance {
	return &TokenBalance{
		WalletAddress: NormalizeAddress(wallet),
		Liquid:        decimal.Zero,
		Staked:        decimal.Zero,
	}
}

// Total returns liquid + staked holdings.
func (b *TokenBalance) Total() decimal.Decimal {
	return b.Liquid.Add(b.Staked)
}

// IsStaked reports whether the wallet currently has tokens locked.
func (b *TokenBalance) IsStaked() bool {
	return b.Staked.IsPositive()
}

// LockElapsed reports whether the minimum lock period has passed since
// the first stake. A nil StakeStart satisfies the lock vacuously.
func (b *TokenBalance) LockElapsed(now time.Time, lockPeriod time.Duration) bool {
	if b.StakeStart == nil {
		return true
	}
	return now.Sub(*b.StakeStart) >= lockPeriod
}
