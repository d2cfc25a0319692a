package cache

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisPrefix = "portfolio:todos:"
	genKey      = redisPrefix + "gen"
)

// Redis keys every page under the current generation so one INCR invalidates
// all instances' pages. Old generations expire by TTL.
type Redis struct {
	client  *redis.Client
	log     *slog.Logger
	ttl     time.Duration
	timeout time.Duration
}

// NewRedis creates a list cache shared by every instance using client.
func NewRedis(client *redis.Client, ttl time.Duration, log *slog.Logger) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, log: log, ttl: ttl, timeout: 250 * time.Millisecond}
}

func (c *Redis) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, genKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *Redis) pageKey(gen int64, key string) string {
	return redisPrefix + strconv.FormatInt(gen, 10) + ":" + key
}

func (c *Redis) Version(ctx context.Context) int64 {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	gen, err := c.generation(ctx)
	if err != nil {
		c.log.Warn("list cache generation lookup failed", slog.Any("error", err))
		return -1
	}
	return gen
}

func (c *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	gen, err := c.generation(ctx)
	if err != nil {
		c.log.Warn("list cache generation lookup failed", slog.Any("error", err))
		return nil, false
	}
	val, err := c.client.Get(ctx, c.pageKey(gen, key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("list cache get failed", slog.Any("error", err))
		}
		return nil, false
	}
	return val, true
}

// Set writes under the generation the reader started from. After an
// Invalidate that key is never read again and expires by TTL.
func (c *Redis) Set(ctx context.Context, version int64, key string, value []byte) {
	if version < 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.client.Set(ctx, c.pageKey(version, key), value, c.ttl).Err(); err != nil {
		c.log.Warn("list cache set failed", slog.Any("error", err))
	}
}

func (c *Redis) Invalidate(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.client.Incr(ctx, genKey).Err(); err != nil {
		c.log.Error("list cache invalidation failed", slog.Any("error", err))
	}
}
