package observability

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	listEmployees  = OperationInfo{Resource: "Employees", Operation: "List"}
	createProject  = OperationInfo{Resource: "Projects", Operation: "Create", IsMutation: true}
	employeesPage0 = RequestInfo{Method: "GET", URL: "/api/employees?page=0&pageSize=5", Attempt: 1}
)

func TestSessionCollector_Counts(t *testing.T) {
	c := NewSessionCollector()

	c.RecordRequest(employeesPage0, RequestResult{StatusCode: 200, Duration: 40 * time.Millisecond})
	c.RecordRequest(employeesPage0, RequestResult{StatusCode: 503, Duration: 10 * time.Millisecond})
	c.RecordRetry()
	c.RecordOperation(listEmployees, nil)
	c.RecordOperation(createProject, errors.New("boom"))

	s := c.Summary()
	assert.Equal(t, 2, s.TotalRequests)
	assert.Equal(t, 1, s.FailedRequests)
	assert.Equal(t, 1, s.TotalRetries)
	assert.Equal(t, 2, s.TotalOperations)
	assert.Equal(t, 1, s.FailedOps)
	assert.Equal(t, 1, s.Mutations)
	assert.Equal(t, 50*time.Millisecond, s.TotalLatency)
	assert.False(t, s.EndTime.Before(s.StartTime))
}

func TestSessionCollector_Reset(t *testing.T) {
	c := NewSessionCollector()
	c.RecordRetry()
	c.Reset()

	s := c.Summary()
	assert.Zero(t, s.TotalRetries)
	assert.False(t, s.StartTime.IsZero())
}

func TestSessionCollector_Concurrent(t *testing.T) {
	c := NewSessionCollector()
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RecordRequest(employeesPage0, RequestResult{StatusCode: 200})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, c.Summary().TotalRequests)
}

func TestSessionMetrics_MapRoundTrip(t *testing.T) {
	start := time.Now()
	m := SessionMetrics{
		StartTime:     start,
		EndTime:       start.Add(1500 * time.Millisecond),
		TotalRequests: 3,
		TotalRetries:  2,
		Mutations:     1,
	}

	back := SessionMetricsFromMap(m.ToMap())
	assert.Equal(t, 3, back.TotalRequests)
	assert.Equal(t, 2, back.TotalRetries)
	assert.Equal(t, 1500*time.Millisecond, back.Duration())
}

func TestSessionMetrics_FromJSONNumbers(t *testing.T) {
	m := SessionMetricsFromMap(map[string]any{"requests": float64(4), "duration_ms": float64(20)})
	assert.Equal(t, 4, m.TotalRequests)
	assert.Equal(t, 20*time.Millisecond, m.Duration())
}

func TestSessionMetrics_FormatParts(t *testing.T) {
	start := time.Now()
	m := SessionMetrics{StartTime: start, EndTime: start.Add(320 * time.Millisecond), TotalRequests: 1}
	assert.Equal(t, []string{"320ms", "1 request"}, m.FormatParts())

	m.EndTime = start.Add(2 * time.Second)
	m.TotalRequests = 3
	m.TotalRetries = 2
	m.FailedRequests = 1
	m.Mutations = 1
	assert.Equal(t, []string{"2.0s", "3 requests", "1 failed", "2 retries", "1 change"}, m.FormatParts())
}

func TestCLIHooks_Levels(t *testing.T) {
	tests := []struct {
		level    int
		wantOps  bool
		wantHTTP bool
	}{
		{0, false, false},
		{1, true, false},
		{2, true, true},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		collector := NewSessionCollector()
		h := NewCLIHooks(tt.level, collector, NewTraceWriterTo(&buf))

		ctx := h.OnOperationStart(context.Background(), listEmployees)
		ctx = h.OnRequestStart(ctx, employeesPage0)
		h.OnRequestEnd(ctx, employeesPage0, RequestResult{StatusCode: 200, Duration: 5 * time.Millisecond})
		h.OnOperationEnd(ctx, listEmployees, nil, 6*time.Millisecond)

		out := buf.String()
		assert.Equal(t, tt.wantOps, bytes.Contains(buf.Bytes(), []byte("Calling Employees.List")), "level %d: %q", tt.level, out)
		assert.Equal(t, tt.wantHTTP, bytes.Contains(buf.Bytes(), []byte("-> GET /api/employees")), "level %d: %q", tt.level, out)

		s := collector.Summary()
		assert.Equal(t, 1, s.TotalOperations)
		assert.Equal(t, 1, s.TotalRequests)
	}
}

func TestCLIHooks_RetryAndFailure(t *testing.T) {
	var buf bytes.Buffer
	collector := NewSessionCollector()
	h := NewCLIHooks(2, collector, NewTraceWriterTo(&buf))
	ctx := context.Background()

	h.OnRetry(ctx, employeesPage0, 2, errors.New("connection reset"))
	h.OnRequestEnd(ctx, employeesPage0, RequestResult{Error: errors.New("timeout")})
	h.OnOperationEnd(ctx, createProject, errors.New("rejected"), 0)

	assert.Contains(t, buf.String(), "RETRY #2: connection reset")
	assert.Contains(t, buf.String(), "<- ERROR: timeout")
	assert.Contains(t, buf.String(), "Failed Projects.Create: rejected")
	assert.Equal(t, 1, collector.Summary().TotalRetries)
}

func TestCLIHooks_NilCollaborators(t *testing.T) {
	h := NewCLIHooks(2, nil, nil)
	require.NotPanics(t, func() {
		ctx := h.OnOperationStart(context.Background(), listEmployees)
		h.OnRequestEnd(ctx, employeesPage0, RequestResult{})
		h.OnRetry(ctx, employeesPage0, 1, nil)
		h.OnOperationEnd(ctx, listEmployees, nil, 0)
	})

	h.SetLevel(1)
	assert.Equal(t, 1, h.Level())
}

func TestScrubURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/api/employees?page=0", "/api/employees?page=0"},
		{"/api/user?token=abc", "/api/user?token=%5BREDACTED%5D"},
		{"/api/user?JWT=abc&x=1", "/api/user?JWT=%5BREDACTED%5D&x=1"},
		{"://bad", "[unparseable URL]"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, scrubURL(tt.in), tt.in)
	}
}
