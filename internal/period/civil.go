// Package period provides calendar arithmetic for reports: civil dates in a
// fixed timezone, inclusive date ranges, bucketing and period comparison.
//
// Civil dates are represented as time.Time values at midnight UTC. Instants
// are converted to civil dates through the configured location, so day
// boundaries follow the user's calendar regardless of the host timezone.
package period

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Veraticus/fleet-ledger/internal/model"
)

// DateLayout is the canonical civil date format.
const DateLayout = "2006-01-02"

// Layouts that carry a clock time and are converted through the location.
var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Layouts that already denote a calendar day.
var dayLayouts = []string{
	DateLayout,
	"02/01/2006",
}

// Civil returns the calendar day of t in loc as a civil date.
func Civil(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	return Day(t.Year(), t.Month(), t.Day())
}

// Day builds a civil date, normalizing out-of-range components like time.Date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Today returns the current civil date in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	return Civil(now, loc)
}

// ParseDate parses a civil date or timestamp string. Timestamps without an
// explicit offset are read as wall-clock time in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if loc == nil {
		loc = time.UTC
	}

	for _, layout := range dayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t.Year(), t.Month(), t.Day()), nil
		}
	}
	for _, layout := range instantLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return Civil(t, loc), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// ValidDate reports whether t is usable as a civil date.
func ValidDate(t time.Time) bool {
	return !t.IsZero()
}

// AddDays shifts a civil date by n calendar days.
func AddDays(d time.Time, n int) time.Time {
	return d.AddDate(0, 0, n)
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / 24))
}

// IsOverdue reports whether an unsettled obligation due on the civil date due
// is past due at instant now, evaluated in loc.
func IsOverdue(due time.Time, status model.SettlementStatus, now time.Time, loc *time.Location) bool {
	if status.IsSettled() || status == model.StatusCanceled || !ValidDate(due) {
		return false
	}
	return due.Before(Today(now, loc))
}
