package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// NormalizeDate parses a user supplied date in any common layout and returns
// it as YYYY-MM-DD.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("date is required")
	}
	t, err := dateparse.ParseIn(s, time.Local)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t.Format(DateLayout), nil
}

// NormalizeTime accepts "10:00", "10:00:00", "9:30" or "10:00 AM" and returns HH:MM.
func NormalizeTime(s string) (string, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", fmt.Errorf("time is required")
	}
	for _, layout := range []string{"15:04", "15:04:05", "3:04 PM", "3:04PM", "3 PM"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(TimeLayout), nil
		}
	}
	return "", fmt.Errorf("invalid time %q", s)
}

// Weekday returns the lower-case weekday name of a YYYY-MM-DD date.
func Weekday(date string) (string, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", err
	}
	return strings.ToLower(t.Weekday().String()), nil
}
