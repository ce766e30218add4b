package resilience

import (
	"sync"
	"time"
)

// Circuit breaker states.
const (
	CircuitClosed   = "closed"
	CircuitOpen     = "open"
	CircuitHalfOpen = "half_open"
)

// CircuitBreaker fails fast after repeated failures and probes the backend
// again once OpenTimeout has passed.
type CircuitBreaker struct {
	config CircuitBreakerConfig
	now    func() time.Time

	mu               sync.Mutex
	state            string
	failures         int
	successes        int
	halfOpenAttempts int
	openedAt         time.Time
}

// NewCircuitBreaker creates a closed circuit breaker. Zero config values
// take their defaults.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{config: config.withDefaults(), now: time.Now, state: CircuitClosed}
}

// Allow reports whether a request may proceed. In half-open state it
// reserves one of the probe slots; the caller must report the outcome.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitOpen:
		if cb.now().Sub(cb.openedAt) < cb.config.OpenTimeout {
			return false
		}
		cb.state = CircuitHalfOpen
		cb.successes = 0
		cb.halfOpenAttempts = 1
		return true
	case CircuitHalfOpen:
		if cb.halfOpenAttempts >= cb.config.HalfOpenMaxRequests {
			return false
		}
		cb.halfOpenAttempts++
		return true
	}
	return true
}

// RecordSuccess records a successful request.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitHalfOpen:
		if cb.halfOpenAttempts > 0 {
			cb.halfOpenAttempts--
		}
		cb.successes++
		if cb.successes >= cb.config.SuccessThreshold {
			cb.state = CircuitClosed
			cb.failures = 0
			cb.successes = 0
			cb.halfOpenAttempts = 0
		}
	case CircuitClosed:
		cb.failures = 0
	}
}

// Release frees a half-open slot without judging the backend.
func (cb *CircuitBreaker) Release() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitHalfOpen && cb.halfOpenAttempts > 0 {
		cb.halfOpenAttempts--
	}
}

// RecordFailure records a failed request.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		cb.failures++
		if cb.failures >= cb.config.FailureThreshold {
			cb.open()
		}
	case CircuitHalfOpen:
		cb.open()
	}
}

func (cb *CircuitBreaker) open() {
	cb.state = CircuitOpen
	cb.openedAt = cb.now()
	cb.successes = 0
	cb.halfOpenAttempts = 0
}

// State returns the current state. An open circuit whose timeout expired
// reports half-open.
func (cb *CircuitBreaker) State() string {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitOpen && cb.now().Sub(cb.openedAt) >= cb.config.OpenTimeout {
		return CircuitHalfOpen
	}
	return cb.state
}

// RetryIn is how long an open circuit keeps rejecting requests.
func (cb *CircuitBreaker) RetryIn() time.Duration {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != CircuitOpen {
		return 0
	}
	return max(cb.config.OpenTimeout-cb.now().Sub(cb.openedAt), 0)
}

// Reset closes the circuit.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.state = CircuitClosed
	cb.failures = 0
	cb.successes = 0
	cb.halfOpenAttempts = 0
}
