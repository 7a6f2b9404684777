// Package cache provides an optional Redis-backed read-through cache
// for the admin-managed reference data (servers and the color
// catalog). Those collections are read on nearly every mount write
// but only change through admin endpoints, so cached copies are
// invalidated on admin mutation and otherwise trusted for a short TTL.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/mountbook/mountbook/internal/config"
)

const (
	keyServers       = "mountbook:servers"
	keyColorsGrouped = "mountbook:colors:grouped"

	defaultTTL = 10 * time.Minute
)

// Cache wraps a Redis client. A nil *Cache (or a cache with no
// client) is valid and behaves as a permanent miss.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New connects to Redis per config. It returns nil when no address is
// configured, which disables caching.
func New(cfg config.RedisConfig) *Cache {
	if cfg.Addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Cache{rdb: rdb, ttl: defaultTTL}
}

// Close releases the underlying Redis connection.
func (c *Cache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

// GetJSON loads the value stored under key into out. It reports
// whether a cached value was found; Redis errors count as a miss.
func (c *Cache) GetJSON(ctx context.Context, key string, out any) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	data, errGet := c.rdb.Get(ctx, key).Bytes()
	if errGet != nil {
		if errGet != redis.Nil {
			log.WithError(errGet).WithField("key", key).Debug("cache read failed")
		}
		return false
	}
	if errUnmarshal := json.Unmarshal(data, out); errUnmarshal != nil {
		log.WithError(errUnmarshal).WithField("key", key).Warn("cache entry corrupt, dropping")
		c.Invalidate(ctx, key)
		return false
	}
	return true
}

// SetJSON stores value under key with the cache TTL. Failures are
// logged only; the database remains the source of truth.
func (c *Cache) SetJSON(ctx context.Context, key string, value any) {
	if c == nil || c.rdb == nil {
		return
	}
	data, errMarshal := json.Marshal(value)
	if errMarshal != nil {
		log.WithError(errMarshal).WithField("key", key).Warn("cache marshal failed")
		return
	}
	if errSet := c.rdb.Set(ctx, key, data, c.ttl).Err(); errSet != nil {
		log.WithError(errSet).WithField("key", key).Debug("cache write failed")
	}
}

// Invalidate removes keys from the cache.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.rdb == nil || len(keys) == 0 {
		return
	}
	if errDel := c.rdb.Del(ctx, keys...).Err(); errDel != nil {
		log.WithError(errDel).Debug("cache invalidate failed")
	}
}

// ServersKey returns the cache key for the server list.
func ServersKey() string { return keyServers }

// ColorsGroupedKey returns the cache key for the grouped color catalog.
func ColorsGroupedKey() string { return keyColorsGrouped }
