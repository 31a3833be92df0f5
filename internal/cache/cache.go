// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package cache provides a small string cache with TTL support, backed either
// by process memory or by Redis.
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Cache stores short-lived string values such as platform access tokens.
type Cache interface {
	// Get returns the value for key. Expired or missing entries report false.
	Get(ctx context.Context, key string) (string, bool)
	// Set stores value under key for ttl.
	Set(ctx context.Context, key, value string, ttl time.Duration)
	// Delete removes key.
	Delete(ctx context.Context, key string)
	// Stats returns cache statistics.
	Stats() Stats
}

// Stats holds cache counters.
type Stats struct {
	Hits        int64
	Misses      int64
	Sets        int64
	Evictions   int64
	CurrentSize int
}

type counters struct {
	hits      atomic.Int64
	misses    atomic.Int64
	sets      atomic.Int64
	evictions atomic.Int64
}

func (c *counters) snapshot(size int) Stats {
	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Sets:        c.sets.Load(),
		Evictions:   c.evictions.Load(),
		CurrentSize: size,
	}
}

type entry struct {
	value      string
	expiration time.Time
}

func (e entry) expired(now time.Time) bool {
	return !now.Before(e.expiration)
}

// MemoryCache is an in-memory Cache. Expired entries are removed lazily and,
// when a cleanup interval is configured, by a background janitor.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	stats   counters
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemory creates an in-memory cache. A cleanupInterval of zero disables the janitor.
func NewMemory(cleanupInterval time.Duration) *MemoryCache {
	c := &MemoryCache{
		entries: make(map[string]entry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go c.janitor(cleanupInterval)
	}
	return c
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.RLock()
	e, found := c.entries[key]
	c.mu.RUnlock()

	if !found || e.expired(c.now()) {
		c.stats.misses.Add(1)
		return "", false
	}
	c.stats.hits.Add(1)
	return e.value, true
}

// Set implements Cache. A non-positive ttl removes the key.
func (c *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl <= 0 {
		delete(c.entries, key)
		return
	}
	c.entries[key] = entry{value: value, expiration: c.now().Add(ttl)}
	c.stats.sets.Add(1)
}

// Delete implements Cache.
func (c *MemoryCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Stats implements Cache.
func (c *MemoryCache) Stats() Stats {
	c.mu.RLock()
	size := len(c.entries)
	c.mu.RUnlock()
	return c.stats.snapshot(size)
}

// Close stops the janitor. It is safe to call more than once.
func (c *MemoryCache) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	return nil
}

func (c *MemoryCache) deleteExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	count := 0
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
			count++
		}
	}
	c.stats.evictions.Add(int64(count))
	return count
}

func (c *MemoryCache) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.deleteExpired()
		case <-c.stop:
			return
		}
	}
}
