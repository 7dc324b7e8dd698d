package redis_test

import (
	"context"
	"testing"
	"time"

	"tokensale-platform/internal/adapter/storage/redis"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := redis.NewConfigCache(client)
	ctx := context.Background()

	t.Run("miss returns nil without error", func(t *testing.T) {
		payload, err := cache.Get(ctx)
		require.NoError(t, err)
		assert.Nil(t, payload)
	})

	t.Run("set then get round-trips", func(t *testing.T) {
		want := []byte(`{"ico_phase":"1"}`)
		require.NoError(t, cache.Set(ctx, want, time.Minute))

		got, err := cache.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("invalidate drops the payload", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, []byte(`{}`), time.Minute))
		require.NoError(t, cache.Invalidate(ctx))

		payload, err := cache.Get(ctx)
		require.NoError(t, err)
		assert.Nil(t, payload)
	})

	t.Run("ttl expires the payload", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, []byte(`{}`), 30*time.Second))
		mr.FastForward(31 * time.Second)

		payload, err := cache.Get(ctx)
		require.NoError(t, err)
		assert.Nil(t, payload)
	})
}
