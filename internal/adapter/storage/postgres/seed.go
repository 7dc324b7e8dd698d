package postgres

import (
	"context"
	"fmt"

	"tokensale-platform/internal/core/domain"

	"github.com/rs/zerolog"
)

// defaultConfigs are written on first start only. Existing keys are never
// overwritten so operator edits survive restarts.
var defaultConfigs = []struct {
	key   string
	value string
}{
	{"contract_address", ""},
	{"total_supply", "21000000"},
	{"ico_phase", "1"},
	{"ico_phase1_price", "0.02"},
	{"ico_phase2_price", "0.10"},
	{"launch_date", "2026-01-01T00:00:00Z"},
	{"default_language", domain.DefaultLanguage},
}

// Seed provisions the bootstrap admin account and the default config keys.
// It is idempotent and safe to run on every startup.
func Seed(ctx context.Context, accounts *AccountRepo, tokens *TokenRepo, configs *ConfigRepo, bootstrapWallet string, log zerolog.Logger) error {
	wallet := domain.NormalizeAddress(bootstrapWallet)
	if wallet != "" {
		existing, err := accounts.GetByWallet(ctx, wallet)
		if err != nil {
			return fmt.Errorf("look up bootstrap admin: %w", err)
		}
		if existing == nil {
			admin := domain.NewAccount(wallet)
			admin.IsAdmin = true
			if err := accounts.Create(ctx, admin); err != nil {
				return fmt.Errorf("create bootstrap admin: %w", err)
			}
			if err := tokens.Create(ctx, domain.NewTokenBalance(wallet)); err != nil {
				return fmt.Errorf("create bootstrap admin balance: %w", err)
			}
			log.Info().Str("wallet", wallet).Msg("bootstrap admin created")
		}
	}

	for _, dc := range defaultConfigs {
		existing, err := configs.Get(ctx, dc.key)
		if err != nil {
			return fmt.Errorf("look up config %s: %w", dc.key, err)
		}
		if existing != nil {
			continue
		}
		if _, err := configs.Upsert(ctx, &domain.ConfigEntry{Key: dc.key, Value: dc.value}); err != nil {
			return fmt.Errorf("seed config %s: %w", dc.key, err)
		}
		log.Debug().Str("key", dc.key).Msg("default config seeded")
	}

	return nil
}
