// Package dateparse turns human date input into calendar days and provides
// the week arithmetic used by the planner grid.
package dateparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/plannerhq/planner/internal/models"
)

// Parse resolves input relative to today.
func Parse(input string) (models.Date, error) {
	return ParseFrom(input, time.Now())
}

// ParseFrom resolves input relative to now. Supported forms:
//   - today, tomorrow, yesterday
//   - monday ... sunday (next occurrence, same day = next week), next <weekday>
//   - this week, next week, last week (Monday of that week)
//   - +N, -N, in N days, in N weeks
//   - YYYY-MM-DD
func ParseFrom(input string, now time.Time) (models.Date, error) {
	raw := input
	input = strings.ToLower(strings.TrimSpace(input))
	today := models.DateOf(now)

	switch input {
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDays(1), nil
	case "yesterday":
		return today.AddDays(-1), nil
	case "this week", "thisweek":
		return Monday(today), nil
	case "next week", "nextweek":
		return Monday(today).AddDays(7), nil
	case "last week", "lastweek":
		return Monday(today).AddDays(-7), nil
	}

	if day, ok := parseWeekday(input); ok {
		forceNext := strings.HasPrefix(input, "next ")
		return nextWeekday(today, day, forceNext), nil
	}

	if strings.HasPrefix(input, "+") || strings.HasPrefix(input, "-") {
		if days, err := strconv.Atoi(input); err == nil && inRange(days) {
			return today.AddDays(days), nil
		}
	}

	if match := inDaysPattern.FindStringSubmatch(input); match != nil {
		if days, err := strconv.Atoi(match[1]); err == nil && inRange(days) {
			return today.AddDays(days), nil
		}
	}

	if match := inWeeksPattern.FindStringSubmatch(input); match != nil {
		if weeks, err := strconv.Atoi(match[1]); err == nil && inRange(weeks) && inRange(weeks*7) {
			return today.AddDays(weeks * 7), nil
		}
	}

	if datePattern.MatchString(input) {
		return models.ParseDate(input)
	}

	return models.Date{}, fmt.Errorf("unrecognized date %q", raw)
}

// IsValid reports whether ParseFrom would accept input.
func IsValid(input string) bool {
	_, err := Parse(input)
	return err == nil
}

// maxOffsetDays bounds relative input to roughly ten years either way.
const maxOffsetDays = 3660

func inRange(days int) bool {
	return days >= -maxOffsetDays && days <= maxOffsetDays
}

var (
	datePattern    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	inDaysPattern  = regexp.MustCompile(`^in (\d+) days?$`)
	inWeeksPattern = regexp.MustCompile(`^in (\d+) weeks?$`)
)

func parseWeekday(input string) (time.Weekday, bool) {
	switch strings.TrimPrefix(input, "next ") {
	case "sunday", "sun":
		return time.Sunday, true
	case "monday", "mon":
		return time.Monday, true
	case "tuesday", "tue":
		return time.Tuesday, true
	case "wednesday", "wed":
		return time.Wednesday, true
	case "thursday", "thu":
		return time.Thursday, true
	case "friday", "fri":
		return time.Friday, true
	case "saturday", "sat":
		return time.Saturday, true
	}
	return 0, false
}

// nextWeekday returns the next occurrence of target after today. With
// forceNext the occurrence in the following week is returned, unless today
// already is the target day.
func nextWeekday(today models.Date, target time.Weekday, forceNext bool) models.Date {
	daysUntil := int(target - today.Weekday())
	sameDay := daysUntil == 0
	if daysUntil <= 0 {
		daysUntil += 7
	}
	if forceNext && !sameDay {
		daysUntil += 7
	}
	return today.AddDays(daysUntil)
}
