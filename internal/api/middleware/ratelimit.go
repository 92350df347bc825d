package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/willemhelmet/prompt-pugilists/pkg/logger"
	"github.com/willemhelmet/prompt-pugilists/pkg/ratelimit"
)

// RateLimitConfig 인메모리 Rate Limit 설정
type RateLimitConfig struct {
	Capacity   int64
	RefillRate int64 // 초당 토큰 수
	KeyFunc    func(*gin.Context) string
}

// RedisRateLimitConfig Redis 기반 Rate Limit 설정
type RedisRateLimitConfig struct {
	Limiter *ratelimit.RedisLimiter
	Limit   int           // 윈도우 내 최대 요청 수
	Window  time.Duration // 윈도우 크기
	KeyFunc func(*gin.Context) string
}

// DefaultKeyFunc 인증된 사용자는 userId, 아니면 IP 기준
func DefaultKeyFunc(c *gin.Context) string {
	if userID, exists := c.Get("userId"); exists {
		return fmt.Sprintf("user:%v", userID)
	}
	return fmt.Sprintf("ip:%s", c.ClientIP())
}

// IPKeyFunc IP 기준 (공개 엔드포인트용)
func IPKeyFunc(c *gin.Context) string {
	return fmt.Sprintf("ip:%s", c.ClientIP())
}

// UserKeyFunc userId 기준 (인증 필요)
func UserKeyFunc(c *gin.Context) string {
	if userID, exists := c.Get("userId"); exists {
		return fmt.Sprintf("user:%v", userID)
	}
	return ""
}

// RateLimit 인메모리 토큰 버킷 Rate Limiting 미들웨어
func RateLimit(config RateLimitConfig) gin.HandlerFunc {
	limiter := ratelimit.NewLimiter(config.Capacity, config.RefillRate)

	if config.KeyFunc == nil {
		config.KeyFunc = DefaultKeyFunc
	}

	return func(c *gin.Context) {
		key := config.KeyFunc(c)
		if key == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required for rate limiting",
			})
			c.Abort()
			return
		}

		if !limiter.Allow(key) {
			c.Header("X-RateLimit-Limit", strconv.FormatInt(config.Capacity, 10))
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", "1")

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded",
			})
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(config.Capacity, 10))
		c.Next()
	}
}

// RedisRateLimit Redis 기반 분산 Rate Limiting 미들웨어
func RedisRateLimit(config RedisRateLimitConfig) gin.HandlerFunc {
	if config.KeyFunc == nil {
		config.KeyFunc = DefaultKeyFunc
	}
	if config.Limit <= 0 {
		config.Limit = 60
	}
	if config.Window <= 0 {
		config.Window = time.Minute
	}

	return func(c *gin.Context) {
		key := config.KeyFunc(c)
		if key == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required for rate limiting",
			})
			c.Abort()
			return
		}

		ctx := context.Background()
		allowed, info, err := config.Limiter.AllowWithInfo(ctx, key, config.Limit, config.Window)
		if err != nil {
			// Redis 오류 시 요청 허용 (Fail-open)
			logger.Warn("Redis rate limit check failed", "key", key, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))

		if !allowed {
			retryAfter := int(time.Until(info.ResetTime).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": retryAfter,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// AuthRateLimit 로그인/가입 시도 제한 (IP당 분당 5회)
func AuthRateLimit() gin.HandlerFunc {
	return RateLimit(RateLimitConfig{
		Capacity:   5,
		RefillRate: 1,
		KeyFunc:    IPKeyFunc,
	})
}

// RedisSuggestionRateLimit 제안 생성 제한 (분당 10회)
// LLM 호출 비용이 드는 엔드포인트이므로 인스턴스 간 공유 카운터 사용
func RedisSuggestionRateLimit(limiter *ratelimit.RedisLimiter) gin.HandlerFunc {
	return RedisRateLimit(RedisRateLimitConfig{
		Limiter: limiter,
		Limit:   10,
		Window:  time.Minute,
		KeyFunc: DefaultKeyFunc,
	})
}

// RedisAuthRateLimit Redis 기반 인증 제한 (IP당 분당 5회)
func RedisAuthRateLimit(limiter *ratelimit.RedisLimiter) gin.HandlerFunc {
	return RedisRateLimit(RedisRateLimitConfig{
		Limiter: limiter,
		Limit:   5,
		Window:  time.Minute,
		KeyFunc: IPKeyFunc,
	})
}
