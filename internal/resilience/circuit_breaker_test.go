package resilience

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(cfg CircuitBreakerConfig) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)}
	cb := NewCircuitBreaker(cfg)
	cb.now = clock.now
	return cb, clock
}

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb, _ := newTestBreaker(CircuitBreakerConfig{FailureThreshold: 3})

	for i := range 3 {
		if !cb.Allow() {
			t.Fatalf("request %d rejected while closed", i)
		}
		cb.RecordFailure()
	}

	if got := cb.State(); got != CircuitOpen {
		t.Fatalf("State() = %q, want %q", got, CircuitOpen)
	}
	if cb.Allow() {
		t.Error("open circuit allowed a request")
	}
}

func TestCircuitBreakerSuccessResetsFailures(t *testing.T) {
	cb, _ := newTestBreaker(CircuitBreakerConfig{FailureThreshold: 2})

	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()

	if got := cb.State(); got != CircuitClosed {
		t.Errorf("State() = %q, want %q", got, CircuitClosed)
	}
}

func TestCircuitBreakerHalfOpenAfterTimeout(t *testing.T) {
	cb, clock := newTestBreaker(CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: 10 * time.Second, HalfOpenMaxRequests: 1})

	cb.RecordFailure()
	clock.advance(4 * time.Second)
	if got := cb.RetryIn(); got != 6*time.Second {
		t.Errorf("RetryIn() = %v, want 6s", got)
	}

	clock.advance(6 * time.Second)
	if got := cb.State(); got != CircuitHalfOpen {
		t.Fatalf("State() = %q, want %q", got, CircuitHalfOpen)
	}
	if !cb.Allow() {
		t.Fatal("first probe rejected")
	}
	if cb.Allow() {
		t.Error("second concurrent probe allowed")
	}
}

func TestCircuitBreakerClosesAfterSuccesses(t *testing.T) {
	cb, clock := newTestBreaker(CircuitBreakerConfig{FailureThreshold: 1, SuccessThreshold: 2, OpenTimeout: time.Second})

	cb.RecordFailure()
	clock.advance(time.Second)

	for i := range 2 {
		if !cb.Allow() {
			t.Fatalf("probe %d rejected", i)
		}
		cb.RecordSuccess()
	}

	if got := cb.State(); got != CircuitClosed {
		t.Errorf("State() = %q, want %q", got, CircuitClosed)
	}
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb, clock := newTestBreaker(CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: time.Second})

	cb.RecordFailure()
	clock.advance(time.Second)
	if !cb.Allow() {
		t.Fatal("probe rejected")
	}
	cb.RecordFailure()

	if got := cb.State(); got != CircuitOpen {
		t.Errorf("State() = %q, want %q", got, CircuitOpen)
	}
	if got := cb.RetryIn(); got != time.Second {
		t.Errorf("RetryIn() = %v, want 1s", got)
	}
}

func TestCircuitBreakerReleaseFreesProbe(t *testing.T) {
	cb, clock := newTestBreaker(CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: time.Second})

	cb.RecordFailure()
	clock.advance(time.Second)
	cb.Allow()
	cb.Release()

	if !cb.Allow() {
		t.Error("released probe slot not reusable")
	}
	if got := cb.State(); got != CircuitHalfOpen {
		t.Errorf("State() = %q, want %q", got, CircuitHalfOpen)
	}
}

func TestCircuitBreakerReset(t *testing.T) {
	cb, _ := newTestBreaker(CircuitBreakerConfig{FailureThreshold: 1})

	cb.RecordFailure()
	cb.Reset()

	if got := cb.State(); got != CircuitClosed {
		t.Errorf("State() = %q, want %q", got, CircuitClosed)
	}
	if !cb.Allow() {
		t.Error("reset circuit rejected a request")
	}
}
