package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tokensale-platform/internal/core/domain"
	"tokensale-platform/internal/core/ports"
	"tokensale-platform/pkg/apperror"

	"github.com/rs/zerolog"
)

// configCacheTTL bounds staleness of the public config payload served
// from Redis.
const configCacheTTL = 60 * time.Second

// ConfigServiceImpl implements ports.ConfigService with a best-effort
// Redis cache in front of the public read path. Cache failures are logged
// and the database is consulted directly.
type ConfigServiceImpl struct {
	configRepo ports.ConfigRepository
	cache      ports.ConfigCache
	adminSvc   ports.AdminService
	log        zerolog.Logger
}

// NewConfigService creates a new ConfigServiceImpl.
func NewConfigService(
	configRepo ports.ConfigRepository,
	cache ports.ConfigCache,
	adminSvc ports.AdminService,
	log zerolog.Logger,
) *ConfigServiceImpl {
	return &ConfigServiceImpl{
		configRepo: configRepo,
		cache:      cache,
		adminSvc:   adminSvc,
		log:        log,
	}
}

// PublicConfigs returns every non-private configuration pair. Keys with
// the private prefix never leave this method.
func (s *ConfigServiceImpl) PublicConfigs(ctx context.Context) (map[string]string, error) {
	if cached, err := s.cache.Get(ctx); err != nil {
		s.log.Warn().Err(err).Msg("config cache read failed, falling through to DB")
	} else if cached != nil {
		configs := make(map[string]string)
		if err := json.Unmarshal(cached, &configs); err == nil {
			return configs, nil
		}
		s.log.Warn().Msg("malformed config cache payload, falling through to DB")
	}

	entries, err := s.configRepo.List(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list configs: %w", err))
	}

	configs := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsPublic() {
			configs[e.Key] = e.Value
		}
	}

	if payload, err := json.Marshal(configs); err == nil {
		if err := s.cache.Set(ctx, payload, configCacheTTL); err != nil {
			s.log.Warn().Err(err).Msg("failed to cache public configs")
		}
	}

	return configs, nil
}

// Update upserts one configuration pair, admin-gated, and invalidates the
// public cache.
func (s *ConfigServiceImpl) Update(ctx context.Context, adminWallet, key, value string) (*domain.ConfigEntry, error) {
	admin, err := s.adminSvc.RequireAdmin(ctx, adminWallet)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, apperror.Validation("config key is required")
	}

	entry := &domain.ConfigEntry{
		Key:       key,
		Value:     value,
		UpdatedBy: &admin.WalletAddress,
	}

	saved, err := s.configRepo.Upsert(ctx, entry)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("upsert config: %w", err))
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to invalidate config cache")
	}

	return saved, nil
}
