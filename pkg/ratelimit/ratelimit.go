package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket implements the token bucket algorithm for rate limiting
type TokenBucket struct {
	mu         sync.Mutex
	capacity   int64
	tokens     int64
	refillRate int64 // tokens per second
	lastRefill time.Time
}

// NewTokenBucket creates a new token bucket
func NewTokenBucket(capacity, refillRate int64) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow checks if a request is allowed and consumes a token if so
func (tb *TokenBucket) Allow() bool {
	return tb.AllowN(1)
}

// AllowN checks if n requests are allowed and consumes n tokens if so
func (tb *TokenBucket) AllowN(n int64) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()

	if tb.tokens >= n {
		tb.tokens -= n
		return true
	}

	return false
}

// refill adds tokens based on elapsed time
func (tb *TokenBucket) refill() {
	now := time.Now()
	tokensToAdd := int64(now.Sub(tb.lastRefill).Seconds()) * tb.refillRate

	if tokensToAdd > 0 {
		tb.tokens += tokensToAdd
		if tb.tokens > tb.capacity {
			tb.tokens = tb.capacity
		}
		tb.lastRefill = now
	}
}

// Limiter manages token buckets for multiple keys (connection IDs, IPs)
type Limiter struct {
	mu         sync.RWMutex
	buckets    map[string]*TokenBucket
	capacity   int64
	refillRate int64
	stopChan   chan struct{}
}

// NewLimiter creates a keyed rate limiter with a background cleanup loop
func NewLimiter(capacity, refillRate int64) *Limiter {
	l := &Limiter{
		buckets:    make(map[string]*TokenBucket),
		capacity:   capacity,
		refillRate: refillRate,
		stopChan:   make(chan struct{}),
	}

	go l.cleanupLoop(10 * time.Minute)

	return l
}

// Allow checks if a request from the given key is allowed
func (l *Limiter) Allow(key string) bool {
	return l.getBucket(key).Allow()
}

// Reset drops the bucket for a key
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}

// Stop terminates the cleanup loop
func (l *Limiter) Stop() {
	close(l.stopChan)
}

func (l *Limiter) getBucket(key string) *TokenBucket {
	l.mu.RLock()
	bucket, exists := l.buckets[key]
	l.mu.RUnlock()

	if exists {
		return bucket
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if bucket, exists = l.buckets[key]; exists {
		return bucket
	}

	bucket = NewTokenBucket(l.capacity, l.refillRate)
	l.buckets[key] = bucket
	return bucket
}

// cleanupLoop removes idle full buckets to bound memory
func (l *Limiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.C:
			l.cleanup(interval)
		}
	}
}

func (l *Limiter) cleanup(idle time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for key, bucket := range l.buckets {
		bucket.mu.Lock()
		full := bucket.tokens == bucket.capacity
		stale := now.Sub(bucket.lastRefill) > idle
		bucket.mu.Unlock()

		if full && stale {
			delete(l.buckets, key)
		}
	}
}
