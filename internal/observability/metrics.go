package observability

import (
	"fmt"
	"time"
)

// SessionMetrics is a snapshot of a SessionCollector.
type SessionMetrics struct {
	StartTime       time.Time
	EndTime         time.Time
	TotalRequests   int
	FailedRequests  int
	TotalOperations int
	FailedOps       int
	Mutations       int
	TotalRetries    int
	TotalLatency    time.Duration
}

// Duration is the wall time covered by the snapshot.
func (m SessionMetrics) Duration() time.Duration {
	return m.EndTime.Sub(m.StartTime)
}

// ToMap flattens the snapshot for the meta.stats field of a JSON envelope.
func (m SessionMetrics) ToMap() map[string]any {
	return map[string]any{
		"duration_ms":     m.Duration().Milliseconds(),
		"requests":        m.TotalRequests,
		"failed_requests": m.FailedRequests,
		"operations":      m.TotalOperations,
		"failed_ops":      m.FailedOps,
		"mutations":       m.Mutations,
		"retries":         m.TotalRetries,
		"latency_ms":      m.TotalLatency.Milliseconds(),
	}
}

// SessionMetricsFromMap rebuilds a snapshot from ToMap output. Numbers may
// arrive as float64 after a JSON round trip.
func SessionMetricsFromMap(stats map[string]any) SessionMetrics {
	num := func(key string) int64 {
		switch v := stats[key].(type) {
		case int:
			return int64(v)
		case int64:
			return v
		case float64:
			return int64(v)
		}
		return 0
	}

	end := time.Now()
	return SessionMetrics{
		StartTime:       end.Add(-time.Duration(num("duration_ms")) * time.Millisecond),
		EndTime:         end,
		TotalRequests:   int(num("requests")),
		FailedRequests:  int(num("failed_requests")),
		TotalOperations: int(num("operations")),
		FailedOps:       int(num("failed_ops")),
		Mutations:       int(num("mutations")),
		TotalRetries:    int(num("retries")),
		TotalLatency:    time.Duration(num("latency_ms")) * time.Millisecond,
	}
}

// FormatParts renders the snapshot as short phrases for a stats line,
// e.g. ["320ms", "3 requests", "1 retry"].
func (m SessionMetrics) FormatParts() []string {
	var parts []string

	if d := m.Duration(); d < time.Second {
		parts = append(parts, fmt.Sprintf("%dms", d.Milliseconds()))
	} else {
		parts = append(parts, fmt.Sprintf("%.1fs", d.Seconds()))
	}

	if m.TotalRequests > 0 {
		parts = append(parts, plural(m.TotalRequests, "request"))
	}
	if m.FailedRequests > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", m.FailedRequests))
	}
	if m.TotalRetries > 0 {
		parts = append(parts, plural(m.TotalRetries, "retry"))
	}
	if m.Mutations > 0 {
		parts = append(parts, plural(m.Mutations, "change"))
	}
	return parts
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	if noun == "retry" {
		return fmt.Sprintf("%d retries", n)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
