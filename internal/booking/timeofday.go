package booking

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time with minute precision, stored as minutes
// since midnight. Reservations carry their date separately, so the type never
// encodes a zone.
type TimeOfDay int

// MinutesPerDay bounds the valid range of a TimeOfDay. The value itself is a
// legal end bound (a reservation may end exactly at midnight-equivalent 24:00,
// though working hours never reach that far).
const MinutesPerDay = 24 * 60

// NewTimeOfDay builds a TimeOfDay from an hour and minute pair.
func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ParseTimeOfDay parses a "HH:MM" string.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(value, "%d:%d", &hour, &minute); err != nil {
		return 0, fmt.Errorf("invalid time of day %q", value)
	}
	if hour < 0 || hour > 24 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid time of day %q", value)
	}
	t := NewTimeOfDay(hour, minute)
	if !t.Valid() {
		return 0, fmt.Errorf("invalid time of day %q", value)
	}
	return t, nil
}

// Hour returns the hour component.
func (t TimeOfDay) Hour() int {
	return int(t) / 60
}

// Minute returns the minute component.
func (t TimeOfDay) Minute() int {
	return int(t) % 60
}

// Valid reports whether the value lies within a single day.
func (t TimeOfDay) Valid() bool {
	return t >= 0 && t <= MinutesPerDay
}

// Sub returns the duration between two times of day.
func (t TimeOfDay) Sub(other TimeOfDay) time.Duration {
	return time.Duration(t-other) * time.Minute
}

// String renders the time as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// At anchors the time of day on the given calendar date. The date is expected
// to be normalized to midnight; any time component it carries is added to.
func (t TimeOfDay) At(date time.Time) time.Time {
	return date.Add(time.Duration(t) * time.Minute)
}
