package sqlite

import (
	"time"
)

// FormatTimeForDB formats a time.Time value as an RFC3339 UTC string
func FormatTimeForDB(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTimeFromDB parses a stored timestamp. Empty values map to the zero time.
func ParseTimeFromDB(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
