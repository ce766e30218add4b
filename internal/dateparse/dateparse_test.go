package dateparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plannerhq/planner/internal/models"
)

func TestParseFrom(t *testing.T) {
	// Wednesday, 2024-01-17 (Jan 15 is Monday)
	ref := time.Date(2024, 1, 17, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		input    string
		expected string
	}{
		{"today", "2024-01-17"},
		{"TODAY", "2024-01-17"},
		{"Tomorrow", "2024-01-18"},
		{"yesterday", "2024-01-16"},

		// Week keywords snap to Monday
		{"this week", "2024-01-15"},
		{"next week", "2024-01-22"},
		{"nextweek", "2024-01-22"},
		{"last week", "2024-01-08"},

		// Weekdays: next occurrence, same day goes to next week
		{"monday", "2024-01-22"},
		{"mon", "2024-01-22"},
		{"wednesday", "2024-01-24"},
		{"thursday", "2024-01-18"},
		{"sunday", "2024-01-21"},
		{"next monday", "2024-01-29"},
		{"next wednesday", "2024-01-24"},
		{"next friday", "2024-01-26"},

		// Relative days
		{"+1", "2024-01-18"},
		{"+7", "2024-01-24"},
		{"-3", "2024-01-14"},
		{"in 1 day", "2024-01-18"},
		{"in 3 days", "2024-01-20"},
		{"in 2 weeks", "2024-01-31"},

		{"2024-06-15", "2024-06-15"},
		{" 2025-12-25 ", "2025-12-25"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFrom(tt.input, ref)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got.String())
		})
	}
}

func TestParseFromRejects(t *testing.T) {
	ref := time.Date(2024, 1, 17, 12, 0, 0, 0, time.UTC)

	for _, input := range []string{"", "invalid", "next year", "2024-13-01", "+x", "in days"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseFrom(input, ref)
			assert.Error(t, err)
		})
	}
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("today"))
	assert.True(t, IsValid("2024-06-15"))
	assert.False(t, IsValid("someday"))
}

func TestMonday(t *testing.T) {
	tests := []struct {
		day      string
		expected string
	}{
		{"2024-01-15", "2024-01-15"}, // Monday itself
		{"2024-01-17", "2024-01-15"}, // Wednesday
		{"2024-01-21", "2024-01-15"}, // Sunday belongs to the week before
		{"2024-03-02", "2024-02-26"}, // Saturday across a month boundary
		{"2025-01-01", "2024-12-30"}, // across a year boundary
	}
	for _, tt := range tests {
		t.Run(tt.day, func(t *testing.T) {
			d, err := models.ParseDate(tt.day)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, Monday(d).String())
		})
	}
}

func TestWeek(t *testing.T) {
	w := CurrentWeek(time.Date(2024, 3, 6, 18, 0, 0, 0, time.UTC))

	assert.Equal(t, "2024-03-04", w.Start.String())
	assert.Equal(t, "2024-03-10", w.End().String())
	assert.Equal(t, "2024-W10", w.String())

	days := w.Days()
	require.Len(t, days, 7)
	assert.Equal(t, time.Monday, days[0].Weekday())
	assert.Equal(t, time.Sunday, days[6].Weekday())
	assert.True(t, days[5].IsWeekend())

	assert.True(t, w.Contains(days[3]))
	assert.False(t, w.Contains(w.Next().Start))
	assert.False(t, w.Contains(w.Prev().End()))
	assert.Equal(t, w, w.Next().Prev())

	req := w.Request()
	assert.Equal(t, "2024-03-04", req.StartDate.String())
	assert.Equal(t, "2024-03-10", req.EndDate.String())
}

func TestWeekNumberAtYearBoundary(t *testing.T) {
	// 2024-12-30 is a Monday that belongs to ISO week 1 of 2025.
	w := WeekOf(models.NewDate(2025, time.January, 2))
	year, n := w.Number()
	assert.Equal(t, 2025, year)
	assert.Equal(t, 1, n)

	// 2021-01-03 is a Sunday in week 53 of 2020.
	year, n = WeekOf(models.NewDate(2021, time.January, 3)).Number()
	assert.Equal(t, 2020, year)
	assert.Equal(t, 53, n)
}
