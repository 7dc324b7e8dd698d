package postgres

import (
	"context"
	"errors"
	"fmt"

	"tokensale-platform/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// NewsletterRepo implements ports.NewsletterRepository.
type NewsletterRepo struct {
	pool Pool
}

// NewNewsletterRepo creates a new NewsletterRepo.
func NewNewsletterRepo(pool Pool) *NewsletterRepo {
	return &NewsletterRepo{pool: pool}
}

// Get fetches a subscription by email, active or not.
func (r *NewsletterRepo) Get(ctx context.Context, email string) (*domain.Subscription, error) {
	query := `SELECT email, subscription_date, language_preference, is_active
		FROM newsletter_subscriptions WHERE email = $1`

	sub := &domain.Subscription{}
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&sub.Email, &sub.SubscribedAt, &sub.LanguagePreference, &sub.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return sub, nil
}

// Save inserts the subscription or replaces the existing row for the same
// email. Covers create, reactivate and deactivate in one statement.
func (r *NewsletterRepo) Save(ctx context.Context, sub *domain.Subscription) error {
	query := `INSERT INTO newsletter_subscriptions (email, subscription_date, language_preference, is_active)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email)
		DO UPDATE SET subscription_date = EXCLUDED.subscription_date,
			language_preference = EXCLUDED.language_preference,
			is_active = EXCLUDED.is_active`

	_, err := r.pool.Exec(ctx, query, sub.Email, sub.SubscribedAt, sub.LanguagePreference, sub.IsActive)
	if err != nil {
		return fmt.Errorf("save subscription: %w", err)
	}
	return nil
}

// ListActive returns every active subscription, newest first.
func (r *NewsletterRepo) ListActive(ctx context.Context) ([]domain.Subscription, error) {
	query := `SELECT email, subscription_date, language_preference, is_active
		FROM newsletter_subscriptions
		WHERE is_active = TRUE
		ORDER BY subscription_date DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []domain.Subscription
	for rows.Next() {
		var sub domain.Subscription
		if err := rows.Scan(&sub.Email, &sub.SubscribedAt, &sub.LanguagePreference, &sub.IsActive); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriptions: %w", err)
	}
	return subs, nil
}

// CountActive returns the number of active subscriptions.
func (r *NewsletterRepo) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM newsletter_subscriptions WHERE is_active = TRUE`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count subscriptions: %w", err)
	}
	return count, nil
}

// CountActiveByLanguage returns active subscription counts keyed by
// language preference.
func (r *NewsletterRepo) CountActiveByLanguage(ctx context.Context) (map[string]int64, error) {
	query := `SELECT language_preference, COUNT(*)
		FROM newsletter_subscriptions
		WHERE is_active = TRUE
		GROUP BY language_preference`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count subscriptions by language: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var lang string
		var count int64
		if err := rows.Scan(&lang, &count); err != nil {
			return nil, fmt.Errorf("scan subscription count: %w", err)
		}
		counts[lang] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscription counts: %w", err)
	}
	return counts, nil
}
