package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fiscalid/internal/taxpayer/metrics"
	"fiscalid/internal/taxpayer/models"
)

const keyPrefix = "fiscalid:ruc:"

// RedisCache shares lookup results across instances. Entries expire through
// the Redis TTL.
type RedisCache struct {
	client  *redis.Client
	ttl     time.Duration
	metrics *metrics.Metrics
}

func NewRedisCache(client *redis.Client, ttl time.Duration, m *metrics.Metrics) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, metrics: m}
}

func (c *RedisCache) Save(ctx context.Context, q models.Query, r models.LookupResult) error {
	if !r.Cacheable() {
		return nil
	}
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode lookup result: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+hashKey(q), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("save lookup result: %w", err)
	}
	return nil
}

func (c *RedisCache) Find(ctx context.Context, q models.Query) (models.LookupResult, error) {
	raw, err := c.client.Get(ctx, keyPrefix+hashKey(q)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.metrics.RecordCacheMiss("redis")
		return models.LookupResult{}, ErrNotFound
	}
	if err != nil {
		return models.LookupResult{}, fmt.Errorf("find lookup result: %w", err)
	}

	var r models.LookupResult
	if err := json.Unmarshal(raw, &r); err != nil {
		// A payload we cannot read is treated as absent.
		c.metrics.RecordCacheMiss("redis")
		return models.LookupResult{}, ErrNotFound
	}
	c.metrics.RecordCacheHit("redis")
	return r, nil
}
