package utils

import (
	"fmt"
	"time"
)

// Wire formats for dates and clock times. Dates travel as plain strings
// so they compare lexicographically in Mongo queries.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// ParseClockMinutes parses "HH:MM" into minutes from midnight.
func ParseClockMinutes(s string) (int, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q (want HH:MM): %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Today returns the current date keyed to midnight, formatted as a
// "YYYY-MM-DD" string.
func Today() string {
	return time.Now().Format(DateLayout)
}
