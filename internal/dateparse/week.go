package dateparse

import (
	"fmt"
	"time"

	"github.com/plannerhq/planner/internal/models"
)

// Monday returns the Monday on or before d.
func Monday(d models.Date) models.Date {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

// Week is a Monday-to-Sunday span.
type Week struct {
	Start models.Date
}

// WeekOf returns the week containing d.
func WeekOf(d models.Date) Week {
	return Week{Start: Monday(d)}
}

// CurrentWeek returns the week containing now.
func CurrentWeek(now time.Time) Week {
	return WeekOf(models.DateOf(now))
}

// End is the Sunday closing the week.
func (w Week) End() models.Date { return w.Start.AddDays(6) }

// Days returns the seven days of the week in order.
func (w Week) Days() []models.Date {
	days := make([]models.Date, 7)
	for i := range days {
		days[i] = w.Start.AddDays(i)
	}
	return days
}

func (w Week) Next() Week { return Week{Start: w.Start.AddDays(7)} }

func (w Week) Prev() Week { return Week{Start: w.Start.AddDays(-7)} }

// Number returns the ISO 8601 year and week number.
func (w Week) Number() (year, week int) {
	return w.Start.ISOWeek()
}

// Contains reports whether d falls inside the week.
func (w Week) Contains(d models.Date) bool {
	return !d.Before(w.Start) && !w.End().Before(d)
}

// Request builds the assignment range query covering the week.
func (w Week) Request() models.AssignmentRequest {
	return models.AssignmentRequest{StartDate: w.Start, EndDate: w.End()}
}

// String renders the week as "2024-W10".
func (w Week) String() string {
	y, n := w.Number()
	return fmt.Sprintf("%d-W%02d", y, n)
}
