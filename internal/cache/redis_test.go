// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()

	mr := miniredis.RunT(t)
	c, err := NewRedis(RedisConfig{Addr: mr.Addr()}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return mr, c
}

func TestRedisCache_SetGet(t *testing.T) {
	mr, c := setupMiniRedis(t)
	ctx := context.Background()

	c.Set(ctx, "token", "abc123", 5*time.Minute)

	val, ok := c.Get(ctx, "token")
	require.True(t, ok)
	assert.Equal(t, "abc123", val)

	raw, err := mr.Get(defaultKeyPrefix + "token")
	require.NoError(t, err)
	assert.Equal(t, "abc123", raw)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Sets)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, 1, stats.CurrentSize)
}

func TestRedisCache_GetMissing(t *testing.T) {
	_, c := setupMiniRedis(t)

	val, ok := c.Get(context.Background(), "missing")
	assert.False(t, ok)
	assert.Empty(t, val)
	assert.Equal(t, int64(1), c.Stats().Misses)
}

func TestRedisCache_TTL(t *testing.T) {
	mr, c := setupMiniRedis(t)
	ctx := context.Background()

	c.Set(ctx, "token", "abc123", time.Minute)
	assert.Equal(t, time.Minute, mr.TTL(defaultKeyPrefix+"token"))

	mr.FastForward(2 * time.Minute)

	_, ok := c.Get(ctx, "token")
	assert.False(t, ok)
}

func TestRedisCache_Delete(t *testing.T) {
	mr, c := setupMiniRedis(t)
	ctx := context.Background()

	c.Set(ctx, "token", "abc123", time.Minute)
	c.Delete(ctx, "token")

	assert.False(t, mr.Exists(defaultKeyPrefix+"token"))
}

func TestRedisCache_CustomPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := NewRedis(RedisConfig{Addr: mr.Addr(), KeyPrefix: "tenant-a:"}, zerolog.Nop())
	require.NoError(t, err)
	defer c.Close()

	c.Set(context.Background(), "token", "abc123", time.Minute)
	assert.True(t, mr.Exists("tenant-a:token"))
}

func TestRedisCache_ConnectionFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedis(RedisConfig{Addr: addr}, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis connection failed")
}

func TestRedisCache_GetAfterServerDown(t *testing.T) {
	mr, c := setupMiniRedis(t)
	mr.Close()

	_, ok := c.Get(context.Background(), "token")
	assert.False(t, ok)
}

func TestRedisCache_HealthCheck(t *testing.T) {
	_, c := setupMiniRedis(t)
	require.NoError(t, c.HealthCheck(context.Background()))
}
