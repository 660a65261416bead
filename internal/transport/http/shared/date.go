package shared

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// ParseDate reads a calendar date as UTC midnight. An RFC3339 timestamp is
// reduced to the day it names in its own offset, so "2025-03-10T23:00:00-05:00"
// is March 10.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		y, m, d := ts.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse(DateLayout, value)
}
