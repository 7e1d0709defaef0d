// internal/cache/price_cache.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/hargapangan/pangan-backend/internal/config"
)

// PriceCache holds day-comparison results for a bounded TTL. It is injected
// wherever caching is wanted; there is no ambient package-level state.
// A nil *PriceCache is a valid no-op cache, so callers never branch on
// whether Redis is configured.
type PriceCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPriceCache(cfg config.RedisConfig, ttl time.Duration) *PriceCache {
	if !cfg.Enabled {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &PriceCache{
		client: client,
		ttl:    ttl,
	}
}

// CompareKey is the cache key for one day's comparison at one price level.
func CompareKey(date time.Time, level string) string {
	return fmt.Sprintf("compare:%s:%s", date.Format("2006-01-02"), level)
}

// Get unmarshals a cached entry into dest. The second return value reports
// a hit; cache errors degrade to misses.
func (c *PriceCache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil {
		return false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logrus.WithError(err).WithField("key", key).Warn("Price cache read failed")
		}
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Price cache entry corrupt, dropping")
		c.client.Del(ctx, key)
		return false
	}

	return true
}

func (c *PriceCache) Set(ctx context.Context, key string, value interface{}) {
	if c == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Price cache marshal failed")
		return
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Price cache write failed")
	}
}

// Invalidate drops entries explicitly, e.g. after a reconcile run touches
// the day the entries were computed from.
func (c *PriceCache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logrus.WithError(err).Warn("Price cache invalidation failed")
	}
}

func (c *PriceCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
