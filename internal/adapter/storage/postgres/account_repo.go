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

// AccountRepo implements ports.AccountRepository.
type AccountRepo struct {
	pool Pool
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(pool Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

const accountColumns = `wallet_address, username, email, preferred_language, registration_date,
	last_login, is_admin, referral_code, referred_by, affiliate_earnings`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	a := &domain.Account{}
	err := row.Scan(
		&a.WalletAddress, &a.Username, &a.Email, &a.PreferredLanguage, &a.RegistrationDate,
		&a.LastLogin, &a.IsAdmin, &a.ReferralCode, &a.ReferredBy, &a.AffiliateEarnings,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts a new account. The insert is conflict-free so two
// racing first connects for the same wallet both succeed.
func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	query := `INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (wallet_address) DO NOTHING`

	_, err := r.pool.Exec(ctx, query,
		a.WalletAddress, a.Username, a.Email, a.PreferredLanguage, a.RegistrationDate,
		a.LastLogin, a.IsAdmin, a.ReferralCode, a.ReferredBy, a.AffiliateEarnings,
	)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// GetByWallet fetches an account by wallet address.
func (r *AccountRepo) GetByWallet(ctx context.Context, wallet string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE wallet_address = $1`

	a, err := scanAccount(r.pool.QueryRow(ctx, query, wallet))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account by wallet: %w", err)
	}
	return a, nil
}

// UpdateLastLogin stamps the account's most recent connect.
func (r *AccountRepo) UpdateLastLogin(ctx context.Context, wallet string, at time.Time) error {
	query := `UPDATE accounts SET last_login = $1 WHERE wallet_address = $2`

	tag, err := r.pool.Exec(ctx, query, at, wallet)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account not found: %s", wallet)
	}
	return nil
}

// UpdateProfile writes the mutable profile fields.
func (r *AccountRepo) UpdateProfile(ctx context.Context, a *domain.Account) error {
	query := `UPDATE accounts SET username = $1, email = $2, preferred_language = $3
		WHERE wallet_address = $4`

	tag, err := r.pool.Exec(ctx, query, a.Username, a.Email, a.PreferredLanguage, a.WalletAddress)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account not found: %s", a.WalletAddress)
	}
	return nil
}

// SetReferrer records who referred the wallet inside the commission
// transaction block. Only unreferred rows match, so a second referral
// attempt is a no-op at the SQL level.
func (r *AccountRepo) SetReferrer(ctx context.Context, tx pgx.Tx, wallet, referrer string) error {
	query := `UPDATE accounts SET referred_by = $1
		WHERE wallet_address = $2 AND referred_by IS NULL`

	if _, err := tx.Exec(ctx, query, referrer, wallet); err != nil {
		return fmt.Errorf("set referrer: %w", err)
	}
	return nil
}

// AddAffiliateEarnings credits a commission inside a transaction block.
func (r *AccountRepo) AddAffiliateEarnings(ctx context.Context, tx pgx.Tx, wallet string, amount decimal.Decimal) error {
	query := `UPDATE accounts SET affiliate_earnings = affiliate_earnings + $1
		WHERE wallet_address = $2`

	tag, err := tx.Exec(ctx, query, amount, wallet)
	if err != nil {
		return fmt.Errorf("add affiliate earnings: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account not found: %s", wallet)
	}
	return nil
}

// List returns every account, newest registration first.
func (r *AccountRepo) List(ctx context.Context) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY registration_date DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return accounts, nil
}

// Count returns the total number of accounts.
func (r *AccountRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return count, nil
}

// CountActiveSince counts accounts whose last login falls after the cutoff.
func (r *AccountRepo) CountActiveSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM accounts WHERE last_login >= $1`, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active accounts: %w", err)
	}
	return count, nil
}
