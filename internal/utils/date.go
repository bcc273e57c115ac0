package utils

import (
	"fmt"
	"regexp"
	"time"
)

const DateLayout = "2006-01-02"

var dateFormat = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// DateOf truncates an instant to its calendar date in the instant's location
// and returns it as midnight UTC. Dates are always carried around in this
// normalized form so they can be compared with Equal/Before/After and used
// as map keys.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a strict YYYY-MM-DD string into a normalized date.
// Anything else (including valid but differently formatted dates) is rejected.
func ParseDate(s string) (time.Time, error) {
	if !dateFormat.MatchString(s) {
		return time.Time{}, fmt.Errorf("invalid date format, expected YYYY-MM-DD: %q", s)
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date: %w", err)
	}
	return DateOf(t), nil
}

// MaxDate returns the later of two dates.
func MaxDate(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

// MinDate returns the earlier of two dates.
func MinDate(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
