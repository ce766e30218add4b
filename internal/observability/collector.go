// Package observability collects session metrics and traces for gateway
// traffic.
package observability

import (
	"sync"
	"time"
)

// RequestInfo describes one HTTP attempt against the planner backend.
type RequestInfo struct {
	Method  string
	URL     string
	Attempt int
}

// RequestResult is the outcome of one HTTP attempt.
type RequestResult struct {
	StatusCode int
	Duration   time.Duration
	Retryable  bool
	Error      error
}

// OperationInfo names a gateway call such as "Employees.List".
type OperationInfo struct {
	Resource   string
	Operation  string
	IsMutation bool
}

func (o OperationInfo) String() string {
	return o.Resource + "." + o.Operation
}

// SessionCollector accumulates counters across a session. It is safe for
// concurrent use.
type SessionCollector struct {
	mu sync.Mutex

	startTime       time.Time
	totalRequests   int
	failedRequests  int
	totalOperations int
	failedOps       int
	mutations       int
	totalRetries    int
	totalLatency    time.Duration
}

func NewSessionCollector() *SessionCollector {
	return &SessionCollector{startTime: time.Now()}
}

// RecordRequest counts one HTTP attempt.
func (c *SessionCollector) RecordRequest(_ RequestInfo, result RequestResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalRequests++
	c.totalLatency += result.Duration
	if result.Error != nil || result.StatusCode >= 400 {
		c.failedRequests++
	}
}

// RecordOperation counts one completed gateway call.
func (c *SessionCollector) RecordOperation(op OperationInfo, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalOperations++
	if op.IsMutation {
		c.mutations++
	}
	if err != nil {
		c.failedOps++
	}
}

func (c *SessionCollector) RecordRetry() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalRetries++
}

// Summary returns aggregated metrics for the session so far.
func (c *SessionCollector) Summary() SessionMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	return SessionMetrics{
		StartTime:       c.startTime,
		EndTime:         time.Now(),
		TotalRequests:   c.totalRequests,
		FailedRequests:  c.failedRequests,
		TotalOperations: c.totalOperations,
		FailedOps:       c.failedOps,
		Mutations:       c.mutations,
		TotalRetries:    c.totalRetries,
		TotalLatency:    c.totalLatency,
	}
}

// Reset clears all counters and restarts the session clock.
func (c *SessionCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startTime = time.Now()
	c.totalRequests, c.failedRequests = 0, 0
	c.totalOperations, c.failedOps, c.mutations = 0, 0, 0
	c.totalRetries = 0
	c.totalLatency = 0
}
