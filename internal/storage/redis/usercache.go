// Package redis caches identity lookups. Users are never modified after
// creation, so a cached record cannot go stale; only hits are stored.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	goredis "github.com/redis/go-redis/v9"
	"log/slog"
	"shareIt/internal/lib/logger/sl"
	"shareIt/internal/lib/metrics"
	"shareIt/internal/models"
	"strings"
	"time"
)

const cacheName = "users"

type UserProvider interface {
	User(ctx context.Context, id int64) (*models.User, error)
}

// Client is the subset of *goredis.Client the cache needs.
type Client interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
}

type UserCache struct {
	log     *slog.Logger
	client  Client
	next    UserProvider
	ttl     time.Duration
	metrics *metrics.Metrics
}

// NewClient connects to address, which is either host:port or a redis:// URL.
func NewClient(ctx context.Context, address string) (*goredis.Client, error) {
	const op = "storage.redis.NewClient"

	opt := &goredis.Options{Addr: address}
	if strings.Contains(address, "://") {
		var err error
		opt, err = goredis.ParseURL(address)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to parse Redis URL: %w", op, err)
		}
	}

	client := goredis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: failed to ping Redis: %w", op, err)
	}

	return client, nil
}

func NewUserCache(log *slog.Logger, client Client, next UserProvider, ttl time.Duration, m *metrics.Metrics) *UserCache {
	return &UserCache{
		log:     log.With(slog.String("component", "storage/redis")),
		client:  client,
		next:    next,
		ttl:     ttl,
		metrics: m,
	}
}

// User serves from the cache and falls back to the wrapped provider. Cache
// failures are logged and never fail the lookup.
func (c *UserCache) User(ctx context.Context, id int64) (*models.User, error) {
	key := userKey(id)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var u models.User
		if err = json.Unmarshal(data, &u); err == nil {
			c.metrics.RecordCacheLookup(cacheName, true)
			return &u, nil
		}
		c.log.Warn("failed to decode cached user", slog.String("key", key), sl.Err(err))
	case errors.Is(err, goredis.Nil):
	default:
		c.log.Warn("failed to read user cache", slog.String("key", key), sl.Err(err))
	}

	c.metrics.RecordCacheLookup(cacheName, false)

	u, err := c.next.User(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err = json.Marshal(u)
	if err != nil {
		return u, nil
	}

	if err = c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn("failed to write user cache", slog.String("key", key), sl.Err(err))
	}

	return u, nil
}

func userKey(id int64) string {
	return fmt.Sprintf("shareit:user:%d", id)
}
