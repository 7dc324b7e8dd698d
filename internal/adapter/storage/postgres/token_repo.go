package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tokensale-platform/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// TokenRepo implements ports.TokenRepository.
type TokenRepo struct {
	pool Pool
}

// NewTokenRepo creates a new TokenRepo.
func NewTokenRepo(pool Pool) *TokenRepo {
	return &TokenRepo{pool: pool}
}

const tokenColumns = `wallet_address, token_amount, staked_amount, staking_start_date, last_reward_date`

func scanTokenBalance(row pgx.Row) (*domain.TokenBalance, error) {
	b := &domain.TokenBalance{}
	err := row.Scan(&b.WalletAddress, &b.Liquid, &b.Staked, &b.StakeStart, &b.LastReward)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Create inserts an empty token balance row for a wallet. An existing
// row is left untouched, so the call doubles as a repair for accounts
// whose balance row never landed.
func (r *TokenRepo) Create(ctx context.Context, b *domain.TokenBalance) error {
	query := `INSERT INTO token_balances (` + tokenColumns + `)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (wallet_address) DO NOTHING`

	_, err := r.pool.Exec(ctx, query,
		b.WalletAddress, b.Liquid, b.Staked, b.StakeStart, b.LastReward,
	)
	if err != nil {
		return fmt.Errorf("insert token balance: %w", err)
	}
	return nil
}

// GetByWallet fetches a wallet's token balance (non-locking read).
func (r *TokenRepo) GetByWallet(ctx context.Context, wallet string) (*domain.TokenBalance, error) {
	query := `SELECT ` + tokenColumns + ` FROM token_balances WHERE wallet_address = $1`

	b, err := scanTokenBalance(r.pool.QueryRow(ctx, query, wallet))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get token balance: %w", err)
	}
	return b, nil
}

// GetByWalletForUpdate fetches a wallet's token balance with pessimistic
// locking. This MUST be called within a transaction.
func (r *TokenRepo) GetByWalletForUpdate(ctx context.Context, tx pgx.Tx, wallet string) (*domain.TokenBalance, error) {
	query := `SELECT ` + tokenColumns + ` FROM token_balances WHERE wallet_address = $1 FOR UPDATE`

	b, err := scanTokenBalance(tx.QueryRow(ctx, query, wallet))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get token balance for update: %w", err)
	}
	return b, nil
}

// UpdateBalances writes both sides of a liquid/staked transfer plus the
// lock anchor as one statement, inside the caller's transaction.
func (r *TokenRepo) UpdateBalances(ctx context.Context, tx pgx.Tx, wallet string, liquid, staked decimal.Decimal, stakeStart *time.Time) error {
	query := `UPDATE token_balances
		SET token_amount = $1, staked_amount = $2, staking_start_date = $3
		WHERE wallet_address = $4`

	tag, err := tx.Exec(ctx, query, liquid, staked, stakeStart, wallet)
	if err != nil {
		return fmt.Errorf("update token balances: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("token balance not found: %s", wallet)
	}
	return nil
}

// SetLiquid overwrites the liquid balance outside a staking transaction.
func (r *TokenRepo) SetLiquid(ctx context.Context, wallet string, liquid decimal.Decimal) error {
	query := `UPDATE token_balances SET token_amount = $1 WHERE wallet_address = $2`

	tag, err := r.pool.Exec(ctx, query, liquid, wallet)
	if err != nil {
		return fmt.Errorf("set liquid balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("token balance not found: %s", wallet)
	}
	return nil
}

// SumStaked returns the total staked amount across all wallets.
func (r *TokenRepo) SumStaked(ctx context.Context) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(staked_amount), 0) FROM token_balances`,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum staked: %w", err)
	}
	return sum, nil
}

// SumTotal returns liquid plus staked across all wallets.
func (r *TokenRepo) SumTotal(ctx context.Context) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(token_amount + staked_amount), 0) FROM token_balances`,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum total: %w", err)
	}
	return sum, nil
}
