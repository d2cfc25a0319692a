package ratelimit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	uri, err := ctr.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)

	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisLoginWindow(t *testing.T) {
	client := newTestRedis(t)
	rl := NewRedis(client, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	for _, want := range []int{4, 3, 2, 1, 0} {
		d := rl.Allow(ctx, "10.0.0.1", Login)
		require.True(t, d.Allowed)
		assert.Equal(t, want, d.Remaining)
	}
	blocked := rl.Allow(ctx, "10.0.0.1", Login)
	assert.False(t, blocked.Allowed)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), blocked.ResetAt, 5*time.Second)

	short := Policy{Name: "short", Limit: 1, Window: time.Second}
	assert.True(t, rl.Allow(ctx, "k", short).Allowed)
	assert.False(t, rl.Allow(ctx, "k", short).Allowed)
	require.Eventually(t, func() bool {
		return client.Exists(ctx, redisPrefix+"k").Val() == 0
	}, 5*time.Second, 100*time.Millisecond)
	assert.True(t, rl.Allow(ctx, "k", short).Allowed)
}

func TestRedisRestoresMissingExpiry(t *testing.T) {
	client := newTestRedis(t)
	rl := NewRedis(client, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()
	short := Policy{Name: "short", Limit: 1, Window: time.Second}
	redisKey := redisPrefix + "stuck"

	require.True(t, rl.Allow(ctx, "stuck", short).Allowed)
	// simulate an EXPIRE that never landed
	require.NoError(t, client.Persist(ctx, redisKey).Err())
	require.Equal(t, time.Duration(-1), client.TTL(ctx, redisKey).Val())

	d := rl.Allow(ctx, "stuck", short)
	assert.False(t, d.Allowed)
	assert.Positive(t, client.TTL(ctx, redisKey).Val(), "expiry must be restored")

	require.Eventually(t, func() bool {
		return client.Exists(ctx, redisKey).Val() == 0
	}, 5*time.Second, 100*time.Millisecond)
	assert.True(t, rl.Allow(ctx, "stuck", short).Allowed)
}
