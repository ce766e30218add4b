package observability

import (
	"context"
	"sync"
	"time"
)

// Hooks receives lifecycle callbacks from the gateway.
type Hooks interface {
	OnOperationStart(ctx context.Context, op OperationInfo) context.Context
	OnOperationEnd(ctx context.Context, op OperationInfo, err error, duration time.Duration)
	OnRequestStart(ctx context.Context, info RequestInfo) context.Context
	OnRequestEnd(ctx context.Context, info RequestInfo, result RequestResult)
	OnRetry(ctx context.Context, info RequestInfo, attempt int, err error)
}

// NopHooks ignores every callback.
type NopHooks struct{}

func (NopHooks) OnOperationStart(ctx context.Context, _ OperationInfo) context.Context {
	return ctx
}

func (NopHooks) OnOperationEnd(context.Context, OperationInfo, error, time.Duration) {}

func (NopHooks) OnRequestStart(ctx context.Context, _ RequestInfo) context.Context {
	return ctx
}

func (NopHooks) OnRequestEnd(context.Context, RequestInfo, RequestResult) {}

func (NopHooks) OnRetry(context.Context, RequestInfo, int, error) {}

var (
	_ Hooks = NopHooks{}
	_ Hooks = (*CLIHooks)(nil)
)

// CLIHooks traces gateway activity at a configurable verbosity:
//   - 0: silent, metrics only
//   - 1: operations
//   - 2: operations and HTTP requests
type CLIHooks struct {
	mu        sync.Mutex
	level     int
	collector *SessionCollector
	writer    *TraceWriter
}

// NewCLIHooks creates hooks at level. A nil collector disables metrics and
// a nil writer disables trace output.
func NewCLIHooks(level int, collector *SessionCollector, writer *TraceWriter) *CLIHooks {
	return &CLIHooks{level: level, collector: collector, writer: writer}
}

func (h *CLIHooks) SetLevel(level int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.level = level
}

func (h *CLIHooks) Level() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.level
}

func (h *CLIHooks) snapshot() (int, *SessionCollector, *TraceWriter) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.level, h.collector, h.writer
}

func (h *CLIHooks) OnOperationStart(ctx context.Context, op OperationInfo) context.Context {
	if level, _, w := h.snapshot(); level >= 1 && w != nil {
		w.WriteOperationStart(op)
	}
	return ctx
}

func (h *CLIHooks) OnOperationEnd(_ context.Context, op OperationInfo, err error, duration time.Duration) {
	level, c, w := h.snapshot()
	if c != nil {
		c.RecordOperation(op, err)
	}
	if level >= 1 && w != nil {
		w.WriteOperationEnd(op, err, duration)
	}
}

func (h *CLIHooks) OnRequestStart(ctx context.Context, info RequestInfo) context.Context {
	if level, _, w := h.snapshot(); level >= 2 && w != nil {
		w.WriteRequestStart(info)
	}
	return ctx
}

func (h *CLIHooks) OnRequestEnd(_ context.Context, info RequestInfo, result RequestResult) {
	level, c, w := h.snapshot()
	if c != nil {
		c.RecordRequest(info, result)
	}
	if level >= 2 && w != nil {
		w.WriteRequestEnd(result)
	}
}

func (h *CLIHooks) OnRetry(_ context.Context, _ RequestInfo, attempt int, err error) {
	level, c, w := h.snapshot()
	if c != nil {
		c.RecordRetry()
	}
	if level >= 2 && w != nil {
		w.WriteRetry(attempt, err)
	}
}
