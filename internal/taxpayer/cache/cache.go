// Package cache keeps stable registry answers for a bounded time.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"fiscalid/internal/taxpayer/metrics"
	"fiscalid/internal/taxpayer/models"
	"fiscalid/pkg/platform/sentinel"
)

// ErrNotFound is returned on a miss or an expired entry.
var ErrNotFound = fmt.Errorf("taxpayer cache miss: %w", sentinel.ErrNotFound)

// Cache stores lookup results keyed by query.
type Cache interface {
	Find(ctx context.Context, q models.Query) (models.LookupResult, error)
	Save(ctx context.Context, q models.Query, r models.LookupResult) error
}

// hashKey keeps identity numbers out of cache keys.
func hashKey(q models.Query) string {
	sum := sha256.Sum256([]byte(q.Key()))
	return hex.EncodeToString(sum[:])
}

type entry struct {
	result   models.LookupResult
	storedAt time.Time
}

// MemoryCache is a process-local TTL cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
	metrics *metrics.Metrics
}

type MemoryOption func(*MemoryCache)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(c *MemoryCache) { c.now = now }
}

func WithMemoryMetrics(m *metrics.Metrics) MemoryOption {
	return func(c *MemoryCache) { c.metrics = m }
}

func NewMemoryCache(ttl time.Duration, opts ...MemoryOption) *MemoryCache {
	c := &MemoryCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Save ignores results that are not stable registry facts.
func (c *MemoryCache) Save(_ context.Context, q models.Query, r models.LookupResult) error {
	if !r.Cacheable() {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[hashKey(q)] = entry{result: r, storedAt: c.now()}
	return nil
}

func (c *MemoryCache) Find(_ context.Context, q models.Query) (models.LookupResult, error) {
	key := hashKey(q)
	c.mu.RLock()
	cached, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && c.now().Sub(cached.storedAt) < c.ttl {
		c.metrics.RecordCacheHit("memory")
		return cached.result, nil
	}
	if ok {
		c.mu.Lock()
		if cur, still := c.entries[key]; still && cur.storedAt.Equal(cached.storedAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
	}
	c.metrics.RecordCacheMiss("memory")
	return models.LookupResult{}, ErrNotFound
}

// Len reports the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
