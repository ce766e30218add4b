package effects

import (
	"context"
	"sync"
	"time"
)

// DefaultRefreshInterval is the assignment polling period of the planner view.
const DefaultRefreshInterval = 10 * time.Second

// Refresher runs fn on a fixed interval while its owner is active. At most
// one interval runs at a time.
type Refresher struct {
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRefresher returns a stopped refresher. A non-positive interval means
// DefaultRefreshInterval.
func NewRefresher(interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Refresher{interval: interval}
}

// Interval returns the tick period.
func (r *Refresher) Interval() time.Duration { return r.interval }

// Start stops any running interval and begins a new one that calls fn every
// tick until Stop is called or ctx ends. fn is not called immediately.
func (r *Refresher) Start(ctx context.Context, fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.cancel, r.done = cancel, done

	go func() {
		defer close(done)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
}

// Stop cancels the running interval and waits for it to exit.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

// Active reports whether an interval is running.
func (r *Refresher) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done == nil {
		return false
	}
	select {
	case <-r.done:
		return false
	default:
		return true
	}
}

func (r *Refresher) stopLocked() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
	r.cancel, r.done = nil, nil
}
