package resilience

import (
	"sync"
	"time"
)

// RateLimiter is a token bucket that also honors the backend's
// Retry-After.
type RateLimiter struct {
	config RateLimiterConfig
	now    func() time.Time

	mu              sync.Mutex
	tokens          float64
	lastRefillAt    time.Time
	retryAfterUntil time.Time
}

// NewRateLimiter creates a full bucket. Zero config values take their
// defaults.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	return &RateLimiter{config: config.withDefaults(), now: time.Now}
}

// refill adds tokens for the time elapsed since the last refill.
func (rl *RateLimiter) refill(now time.Time) {
	if rl.lastRefillAt.IsZero() {
		rl.tokens = rl.config.MaxTokens
		rl.lastRefillAt = now
		return
	}
	rl.tokens = min(rl.tokens+now.Sub(rl.lastRefillAt).Seconds()*rl.config.RefillRate, rl.config.MaxTokens)
	rl.lastRefillAt = now
}

// Allow consumes a token when one is available and no Retry-After is
// pending.
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Before(rl.retryAfterUntil) {
		return false
	}
	rl.refill(now)
	if rl.tokens < 1 {
		return false
	}
	rl.tokens--
	return true
}

// SetRetryAfter blocks requests for d.
func (rl *RateLimiter) SetRetryAfter(d time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if until := rl.now().Add(d); until.After(rl.retryAfterUntil) {
		rl.retryAfterUntil = until
	}
}

// Wait is how long until the next request may proceed.
func (rl *RateLimiter) Wait() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Before(rl.retryAfterUntil) {
		return rl.retryAfterUntil.Sub(now)
	}
	rl.refill(now)
	if rl.tokens >= 1 {
		return 0
	}
	return time.Duration((1 - rl.tokens) / rl.config.RefillRate * float64(time.Second))
}

// Tokens returns the tokens currently available.
func (rl *RateLimiter) Tokens() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill(rl.now())
	return rl.tokens
}
