package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisLimiter(t *testing.T) (*redis.Client, *RedisLimiter) {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // 테스트용 DB
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Redis not available:", err)
	}

	client.FlushDB(ctx)

	return client, NewRedisLimiter(client, "test:ratelimit:")
}

func TestRedisLimiter_Allow(t *testing.T) {
	client, limiter := setupRedisLimiter(t)
	defer client.Close()

	ctx := context.Background()

	// 5회까지 허용
	for i := 0; i < 5; i++ {
		allowed, err := limiter.Allow(ctx, "conn1", 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}

	// 6번째는 거부
	allowed, err := limiter.Allow(ctx, "conn1", 5, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed, "6th request should be denied")

	// 다른 키는 별도 버킷
	allowed, err = limiter.Allow(ctx, "conn2", 5, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisLimiter_AllowWithInfo(t *testing.T) {
	client, limiter := setupRedisLimiter(t)
	defer client.Close()

	ctx := context.Background()

	allowed, info, err := limiter.AllowWithInfo(ctx, "conn1", 10, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	require.NotNil(t, info)
	assert.Equal(t, 10, info.Limit)
	assert.Equal(t, 9, info.Remaining)
	assert.False(t, info.ResetTime.IsZero())
}

func TestRedisLimiter_Reset(t *testing.T) {
	client, limiter := setupRedisLimiter(t)
	defer client.Close()

	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "conn1", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "conn1", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	require.NoError(t, limiter.Reset(ctx, "conn1"))

	allowed, err = limiter.Allow(ctx, "conn1", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}
