package postgres

import (
	"context"
	"errors"
	"fmt"

	"tokensale-platform/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// ConfigRepo implements ports.ConfigRepository.
type ConfigRepo struct {
	pool Pool
}

// NewConfigRepo creates a new ConfigRepo.
func NewConfigRepo(pool Pool) *ConfigRepo {
	return &ConfigRepo{pool: pool}
}

// Get fetches one configuration pair by key.
func (r *ConfigRepo) Get(ctx context.Context, key string) (*domain.ConfigEntry, error) {
	query := `SELECT config_id, config_key, config_value, last_updated, updated_by
		FROM configs WHERE config_key = $1`

	e := &domain.ConfigEntry{}
	err := r.pool.QueryRow(ctx, query, key).Scan(
		&e.ID, &e.Key, &e.Value, &e.LastUpdated, &e.UpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get config: %w", err)
	}
	return e, nil
}

// List returns every configuration pair.
func (r *ConfigRepo) List(ctx context.Context) ([]domain.ConfigEntry, error) {
	query := `SELECT config_id, config_key, config_value, last_updated, updated_by
		FROM configs ORDER BY config_key`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list configs: %w", err)
	}
	defer rows.Close()

	var entries []domain.ConfigEntry
	for rows.Next() {
		var e domain.ConfigEntry
		if err := rows.Scan(&e.ID, &e.Key, &e.Value, &e.LastUpdated, &e.UpdatedBy); err != nil {
			return nil, fmt.Errorf("scan config: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate configs: %w", err)
	}
	return entries, nil
}

// Upsert inserts or replaces one configuration pair.
func (r *ConfigRepo) Upsert(ctx context.Context, e *domain.ConfigEntry) (*domain.ConfigEntry, error) {
	query := `INSERT INTO configs (config_key, config_value, last_updated, updated_by)
		VALUES ($1, $2, NOW(), $3)
		ON CONFLICT (config_key)
		DO UPDATE SET config_value = EXCLUDED.config_value,
			last_updated = NOW(),
			updated_by = EXCLUDED.updated_by
		RETURNING config_id, last_updated`

	saved := *e
	err := r.pool.QueryRow(ctx, query, e.Key, e.Value, e.UpdatedBy).Scan(&saved.ID, &saved.LastUpdated)
	if err != nil {
		return nil, fmt.Errorf("upsert config: %w", err)
	}
	return &saved, nil
}
