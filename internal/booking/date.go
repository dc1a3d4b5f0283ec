package booking

import (
	"fmt"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses a "YYYY-MM-DD" string into a midnight UTC instant.
func ParseDate(value string) (time.Time, error) {
	date, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", value)
	}
	return date, nil
}

// DateOf truncates an instant to its calendar date, keeping the location so
// that "today" comparisons against an injected clock stay consistent.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDate reports whether two instants fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// WeekdayIndex maps a date to the Monday-based weekday index used by the
// time-distribution report: Monday=0 through Sunday=6.
func WeekdayIndex(date time.Time) int {
	return (int(date.Weekday()) + 6) % 7
}

// StartOfWeek returns the Monday of the week containing the reference date.
func StartOfWeek(reference time.Time) time.Time {
	start := DateOf(reference)
	return start.AddDate(0, 0, -WeekdayIndex(start))
}
