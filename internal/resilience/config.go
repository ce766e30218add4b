// Package resilience guards backend calls with a circuit breaker and a
// token bucket, so a failing or throttling backend is not hammered by the
// planner's periodic reloads.
package resilience

import (
	"time"
)

// Config holds configuration for all resilience primitives.
type Config struct {
	CircuitBreaker CircuitBreakerConfig
	RateLimiter    RateLimiterConfig
}

// CircuitBreakerConfig configures the circuit breaker.
type CircuitBreakerConfig struct {
	// FailureThreshold is the number of consecutive failures before opening.
	// Default: 5
	FailureThreshold int

	// SuccessThreshold is the number of consecutive successes in half-open
	// state before closing the circuit.
	// Default: 2
	SuccessThreshold int

	// OpenTimeout is how long to wait before transitioning from open to half-open.
	// Default: 30 seconds
	OpenTimeout time.Duration

	// HalfOpenMaxRequests is the max concurrent requests allowed in half-open state.
	// Default: 1
	HalfOpenMaxRequests int
}

// RateLimiterConfig configures the token bucket.
type RateLimiterConfig struct {
	// MaxTokens is the bucket size.
	// Default: 50
	MaxTokens float64

	// RefillRate is tokens added per second.
	// Default: 10
	RefillRate float64
}

// DefaultConfig returns the defaults used by the CLI.
func DefaultConfig() *Config {
	return &Config{
		CircuitBreaker: CircuitBreakerConfig{
			FailureThreshold:    5,
			SuccessThreshold:    2,
			OpenTimeout:         30 * time.Second,
			HalfOpenMaxRequests: 1,
		},
		RateLimiter: RateLimiterConfig{
			MaxTokens:  50,
			RefillRate: 10,
		},
	}
}

func (cb CircuitBreakerConfig) withDefaults() CircuitBreakerConfig {
	if cb.FailureThreshold <= 0 {
		cb.FailureThreshold = 5
	}
	if cb.SuccessThreshold <= 0 {
		cb.SuccessThreshold = 2
	}
	if cb.OpenTimeout <= 0 {
		cb.OpenTimeout = 30 * time.Second
	}
	if cb.HalfOpenMaxRequests <= 0 {
		cb.HalfOpenMaxRequests = 1
	}
	return cb
}

func (rl RateLimiterConfig) withDefaults() RateLimiterConfig {
	if rl.MaxTokens <= 0 {
		rl.MaxTokens = 50
	}
	if rl.RefillRate <= 0 {
		rl.RefillRate = 10
	}
	return rl
}
