// Package rediscache implements the query cache on Redis, for deployments
// where several instances should share warmed entries. Expiry and eviction
// are delegated to Redis, so the stale-serving fallback of the in-process
// cache does not apply: an expired entry is simply gone.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lanternblog/lantern"
)

const keyPrefix = "lantern:query:"

// Cache is a lantern.Cache backed by Redis.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New creates a Cache over the given client. Non-positive ttl falls back to
// the default.
func New(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = lantern.DefaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

func (c *Cache) Get(key string) ([]*lantern.Post, bool) {
	raw, err := c.client.Get(context.Background(), keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("redis cache read failed", "key", key, "error", err.Error())
		return nil, false
	}

	var posts []*lantern.Post
	if err := json.Unmarshal(raw, &posts); err != nil {
		c.logger.Warn("redis cache entry corrupt", "key", key, "error", err.Error())
		return nil, false
	}
	return posts, true
}

// GetStale is equivalent to Get: Redis removes expired entries itself, so a
// resident entry is always fresh.
func (c *Cache) GetStale(key string) ([]*lantern.Post, bool, bool) {
	posts, ok := c.Get(key)
	return posts, ok, ok
}

func (c *Cache) Set(key string, posts []*lantern.Post) {
	raw, err := json.Marshal(posts)
	if err != nil {
		c.logger.Warn("redis cache encode failed", "key", key, "error", err.Error())
		return
	}
	if err := c.client.Set(context.Background(), keyPrefix+key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("redis cache write failed", "key", key, "error", err.Error())
	}
}
