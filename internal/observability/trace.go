package observability

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
)

// sensitiveParams are query parameters redacted from trace output.
var sensitiveParams = map[string]bool{
	"access_token": true,
	"token":        true,
	"jwt":          true,
	"password":     true,
	"secret":       true,
}

// TraceWriter prints trace lines stamped relative to session start.
type TraceWriter struct {
	mu        sync.Mutex
	writer    io.Writer
	startTime time.Time
}

// NewTraceWriter writes to stderr.
func NewTraceWriter() *TraceWriter {
	return NewTraceWriterTo(os.Stderr)
}

func NewTraceWriterTo(w io.Writer) *TraceWriter {
	return &TraceWriter{writer: w, startTime: time.Now()}
}

func (t *TraceWriter) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	elapsed := time.Since(t.startTime).Seconds()
	fmt.Fprintf(t.writer, "[%.3fs] "+format+"\n", append([]any{elapsed}, args...)...)
}

// WriteOperationStart: [0.012s] Calling Employees.List
func (t *TraceWriter) WriteOperationStart(op OperationInfo) {
	t.printf("Calling %s", op)
}

// WriteOperationEnd: [0.120s] Completed Employees.List (108ms)
func (t *TraceWriter) WriteOperationEnd(op OperationInfo, err error, duration time.Duration) {
	if err != nil {
		t.printf("Failed %s: %v", op, err)
		return
	}
	t.printf("Completed %s (%dms)", op, duration.Milliseconds())
}

// WriteRequestStart: [0.013s]   -> GET /api/employees?page=0
func (t *TraceWriter) WriteRequestStart(info RequestInfo) {
	t.printf("  -> %s %s", info.Method, scrubURL(info.URL))
}

// WriteRequestEnd: [0.119s]   <- 200 (106ms)
func (t *TraceWriter) WriteRequestEnd(result RequestResult) {
	if result.Error != nil {
		t.printf("  <- ERROR: %v", result.Error)
		return
	}
	t.printf("  <- %d (%dms)", result.StatusCode, result.Duration.Milliseconds())
}

// WriteRetry: [0.500s]   RETRY #2: connection reset
func (t *TraceWriter) WriteRetry(attempt int, err error) {
	t.printf("  RETRY #%d: %v", attempt, err)
}

// Reset restarts the relative clock.
func (t *TraceWriter) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.startTime = time.Now()
}

// scrubURL redacts sensitive query parameters. Unparseable input is
// replaced entirely.
func scrubURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "[unparseable URL]"
	}

	query := u.Query()
	modified := false
	for key := range query {
		if sensitiveParams[strings.ToLower(key)] {
			query.Set(key, "[REDACTED]")
			modified = true
		}
	}
	if !modified {
		return rawURL
	}
	u.RawQuery = query.Encode()
	return u.String()
}
