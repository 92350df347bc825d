package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// allowScript Token Bucket 알고리즘을 원자적으로 수행하는 Lua 스크립트
// 반환값: {allowed, tokens_remaining, reset_time}
var allowScript = redis.NewScript(`
	local key = KEYS[1]
	local limit = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])

	local tokens_key = key .. ":tokens"
	local timestamp_key = key .. ":timestamp"

	local tokens = tonumber(redis.call('GET', tokens_key))
	local last_update = tonumber(redis.call('GET', timestamp_key))

	if tokens == nil then
		tokens = limit
		last_update = now
	end

	local elapsed = now - last_update
	local refill_rate = limit / window
	local new_tokens = math.min(limit, tokens + (elapsed * refill_rate))

	local allowed = 0
	if new_tokens >= 1 then
		new_tokens = new_tokens - 1
		allowed = 1
	end

	redis.call('SET', tokens_key, new_tokens, 'EX', window * 2)
	redis.call('SET', timestamp_key, now, 'EX', window * 2)

	return {allowed, math.floor(new_tokens), last_update + window}
`)

// RedisLimiter Redis 기반 분산 Rate Limiter
// 다중 인스턴스 배포에서 공유 카운터가 필요한 엔드포인트용
type RedisLimiter struct {
	client    *redis.Client
	keyPrefix string
}

// Info Rate Limit 상세 정보
type Info struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetTime time.Time `json:"reset_time"`
}

// NewRedisLimiter 주입된 Redis 클라이언트로 분산 Rate Limiter 생성
func NewRedisLimiter(client *redis.Client, keyPrefix string) *RedisLimiter {
	if keyPrefix == "" {
		keyPrefix = "ratelimit:"
	}
	return &RedisLimiter{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Allow 요청 허용 여부 확인
func (r *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	allowed, _, err := r.AllowWithInfo(ctx, key, limit, window)
	return allowed, err
}

// AllowWithInfo 요청 허용 여부와 남은 토큰/리셋 시각 반환
func (r *RedisLimiter) AllowWithInfo(ctx context.Context, key string, limit int, window time.Duration) (bool, *Info, error) {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}

	redisKey := r.keyPrefix + key
	now := time.Now().Unix()

	result, err := allowScript.Run(ctx, r.client, []string{redisKey}, limit, int(window.Seconds()), now).Result()
	if err != nil {
		return false, nil, fmt.Errorf("redis script execution failed: %w", err)
	}

	values, ok := result.([]interface{})
	if !ok || len(values) < 3 {
		return false, nil, fmt.Errorf("invalid script result")
	}

	allowed, _ := values[0].(int64)
	remaining, _ := values[1].(int64)
	resetTime, _ := values[2].(int64)

	info := &Info{
		Limit:     limit,
		Remaining: int(remaining),
		ResetTime: time.Unix(resetTime, 0),
	}

	return allowed == 1, info, nil
}

// Reset 특정 키의 Rate Limit 초기화
func (r *RedisLimiter) Reset(ctx context.Context, key string) error {
	redisKey := r.keyPrefix + key

	pipe := r.client.Pipeline()
	pipe.Del(ctx, redisKey+":tokens")
	pipe.Del(ctx, redisKey+":timestamp")
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to reset rate limit: %w", err)
	}

	return nil
}
