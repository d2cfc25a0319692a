package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "portfolio:ratelimit:"

// Redis shares counters across instances using INCR with a TTL per window.
// Redis failures fail open.
type Redis struct {
	client  *redis.Client
	log     *slog.Logger
	timeout time.Duration
}

// NewRedis creates a limiter backed by client.
func NewRedis(client *redis.Client, log *slog.Logger) *Redis {
	return &Redis{client: client, log: log, timeout: 250 * time.Millisecond}
}

// Allow counts the hit and reads the key's TTL in one transaction. A key
// without an expiry, whether new or left behind by a failed EXPIRE, gets the
// policy window, so a counter can never outlive its window.
func (rl *Redis) Allow(ctx context.Context, key string, p Policy) Decision {
	if p.Limit <= 0 {
		return Decision{Allowed: true}
	}
	ctx, cancel := context.WithTimeout(ctx, rl.timeout)
	defer cancel()

	redisKey := redisPrefix + p.Key(key)
	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	_, err := rl.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		ttl = pipe.TTL(ctx, redisKey)
		return nil
	})
	if err != nil {
		rl.logRedisError("incr", err)
		return Decision{Allowed: true, Remaining: p.Limit, ResetAt: time.Now().Add(p.Window)}
	}

	counter := incr.Val()
	left := ttl.Val()
	if left < 0 {
		if err := rl.client.Expire(ctx, redisKey, p.Window).Err(); err != nil {
			rl.logRedisError("expire", err)
		}
		left = p.Window
	}

	return Decision{
		Allowed:   int(counter) <= p.Limit,
		Remaining: remaining(p.Limit, int(counter)),
		ResetAt:   time.Now().Add(left),
	}
}

// Close is a no-op; the client is owned by the caller.
func (rl *Redis) Close() error { return nil }

func (rl *Redis) logRedisError(op string, err error) {
	rl.log.Error("redis rate limiter error", slog.String("op", op), slog.Any("error", err))
}
