package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ConfigCache implements ports.ConfigCache using Redis. It caches the
// serialized public configuration payload under a single key so reads on
// the hot public endpoint skip PostgreSQL entirely.
type ConfigCache struct {
	client *goredis.Client
	key    string
}

// NewConfigCache creates a new Redis-backed public config cache.
func NewConfigCache(client *goredis.Client) *ConfigCache {
	return &ConfigCache{
		client: client,
		key:    "configs:public",
	}
}

// Get retrieves the cached payload. Returns nil, nil on cache miss.
func (c *ConfigCache) Get(ctx context.Context) ([]byte, error) {
	val, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis config get: %w", err)
	}
	return val, nil
}

// Set stores the payload with the given TTL.
func (c *ConfigCache) Set(ctx context.Context, payload []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis config set: %w", err)
	}
	return nil
}

// Invalidate drops the cached payload after an admin write.
func (c *ConfigCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("redis config invalidate: %w", err)
	}
	return nil
}
