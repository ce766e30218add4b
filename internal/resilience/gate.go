package resilience

import (
	"errors"
	"time"
)

var (
	// ErrCircuitOpen rejects a call while the backend is considered down.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrRateLimited rejects a call while the bucket is empty or a
	// Retry-After is pending.
	ErrRateLimited = errors.New("rate limited")
)

// Outcome classifies a finished call for the gate.
type Outcome int

const (
	// Succeeded includes client errors: the backend answered.
	Succeeded Outcome = iota
	// Failed is a network failure or a server error.
	Failed
	// Throttled is a 429; RetryAfter carries the backend's hint.
	Throttled
)

// Gate combines a circuit breaker and a rate limiter in front of one
// backend.
type Gate struct {
	breaker *CircuitBreaker
	limiter *RateLimiter
}

// NewGate builds a gate from cfg; nil means DefaultConfig.
func NewGate(cfg *Config) *Gate {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Gate{
		breaker: NewCircuitBreaker(cfg.CircuitBreaker),
		limiter: NewRateLimiter(cfg.RateLimiter),
	}
}

// Enter admits a call, or returns ErrCircuitOpen or ErrRateLimited with
// how long to wait. Every admitted call must be followed by Exit.
func (g *Gate) Enter() (time.Duration, error) {
	if !g.breaker.Allow() {
		return g.breaker.RetryIn(), ErrCircuitOpen
	}
	if !g.limiter.Allow() {
		g.breaker.Release()
		return g.limiter.Wait(), ErrRateLimited
	}
	return 0, nil
}

// Exit reports the outcome of an admitted call.
func (g *Gate) Exit(outcome Outcome, retryAfter time.Duration) {
	switch outcome {
	case Failed:
		g.breaker.RecordFailure()
	case Throttled:
		g.breaker.RecordSuccess()
		if retryAfter > 0 {
			g.limiter.SetRetryAfter(retryAfter)
		}
	default:
		g.breaker.RecordSuccess()
	}
}

// Breaker exposes the circuit breaker, e.g. for diagnostics.
func (g *Gate) Breaker() *CircuitBreaker { return g.breaker }
