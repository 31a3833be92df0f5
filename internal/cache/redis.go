// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	defaultKeyPrefix   = "skillgate:"
	redisOpTimeout     = 2 * time.Second
	redisDialTimeout   = 5 * time.Second
	redisPingTimeout   = 5 * time.Second
	redisPoolSize      = 10
	redisMinIdleConns  = 2
	redisReadWriteTime = 3 * time.Second
)

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// RedisCache is a Redis-backed Cache. Keys are namespaced with a prefix so a
// shared Redis instance can hold tokens for several deployments.
type RedisCache struct {
	client *redis.Client
	prefix string
	logger zerolog.Logger
	stats  counters
}

// NewRedis connects to Redis and verifies the connection with a PING.
func NewRedis(cfg RedisConfig, logger zerolog.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  redisDialTimeout,
		ReadTimeout:  redisReadWriteTime,
		WriteTimeout: redisReadWriteTime,
		PoolSize:     redisPoolSize,
		MinIdleConns: redisMinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Info().
		Str("event", "cache.redis_connected").
		Str("addr", cfg.Addr).
		Int("db", cfg.DB).
		Msg("connected to redis cache")

	return newRedisWithClient(client, cfg.KeyPrefix, logger), nil
}

func newRedisWithClient(client *redis.Client, prefix string, logger zerolog.Logger) *RedisCache {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisCache{client: client, prefix: prefix, logger: logger}
}

func (c *RedisCache) key(k string) string { return c.prefix + k }

// Get implements Cache. Redis failures are logged and reported as misses.
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	val, err := c.client.Get(ctx, c.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		c.stats.misses.Add(1)
		return "", false
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("redis get failed")
		c.stats.misses.Add(1)
		return "", false
	}

	c.stats.hits.Add(1)
	return val, true
}

// Set implements Cache. A non-positive ttl removes the key.
func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if ttl <= 0 {
		c.Delete(ctx, key)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	if err := c.client.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("redis set failed")
		return
	}
	c.stats.sets.Add(1)
}

// Delete implements Cache.
func (c *RedisCache) Delete(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("redis delete failed")
	}
}

// Stats implements Cache. CurrentSize counts keys under the configured prefix.
func (c *RedisCache) Stats() Stats {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	size := 0
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		size++
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn().Err(err).Msg("redis scan failed")
	}
	return c.stats.snapshot(size)
}

// Close closes the Redis connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// HealthCheck pings Redis.
func (c *RedisCache) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
