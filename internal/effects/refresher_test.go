package effects

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRefresherTicks(t *testing.T) {
	r := NewRefresher(5 * time.Millisecond)
	var n atomic.Int32
	r.Start(context.Background(), func() { n.Add(1) })
	defer r.Stop()

	assert.Eventually(t, func() bool { return n.Load() >= 3 }, time.Second, time.Millisecond)
	assert.True(t, r.Active())
}

func TestRefresherStopHalts(t *testing.T) {
	r := NewRefresher(5 * time.Millisecond)
	var n atomic.Int32
	r.Start(context.Background(), func() { n.Add(1) })
	assert.Eventually(t, func() bool { return n.Load() >= 1 }, time.Second, time.Millisecond)

	r.Stop()
	after := n.Load()
	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, after, n.Load())
	assert.False(t, r.Active())
}

func TestRefresherRestartReplacesInterval(t *testing.T) {
	r := NewRefresher(5 * time.Millisecond)
	var first, second atomic.Int32
	r.Start(context.Background(), func() { first.Add(1) })
	r.Start(context.Background(), func() { second.Add(1) })
	defer r.Stop()

	stopped := first.Load()
	assert.Eventually(t, func() bool { return second.Load() >= 2 }, time.Second, time.Millisecond)
	assert.Equal(t, stopped, first.Load())
}

func TestRefresherEndsWithContext(t *testing.T) {
	r := NewRefresher(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx, func() {})
	cancel()

	assert.Eventually(t, func() bool { return !r.Active() }, time.Second, time.Millisecond)
	r.Stop()
}

func TestRefresherDefaultInterval(t *testing.T) {
	assert.Equal(t, 10*time.Second, NewRefresher(0).Interval())
}
