package dateparse

import (
	"testing"
	"time"
)

// FuzzParseFrom checks that ParseFrom never panics and that every accepted
// input resolves to a day that survives a round trip.
func FuzzParseFrom(f *testing.F) {
	seeds := []string{
		"today", "tomorrow", "yesterday",
		"monday", "tue", "next friday", "SUNDAY",
		"this week", "next week", "last week",
		"+1", "-7", "+-1", "+", "in 3 days", "in 2 weeks", "in days",
		"2024-01-15", "2024-13-45", "", " ", "next", "week",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	ref := time.Date(2024, 1, 17, 12, 0, 0, 0, time.UTC)

	f.Fuzz(func(t *testing.T, input string) {
		d, err := ParseFrom(input, ref)
		if err != nil {
			return
		}
		again, err := ParseFrom(d.String(), ref)
		if err != nil {
			t.Fatalf("ParseFrom(%q) = %s, which does not parse back: %v", input, d, err)
		}
		if !again.Equal(d) {
			t.Fatalf("round trip of %q changed %s to %s", input, d, again)
		}
	})
}
