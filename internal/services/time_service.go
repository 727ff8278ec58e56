package services

import (
	"time"

	"chronotrakr/internal/rounding"
)

// DefaultTimestampFormat is used when no display format is configured
const DefaultTimestampFormat = "2006-01-02 15:04"

// timeServiceImpl implements the TimeService interface
type timeServiceImpl struct {
	timestampFormat string
}

// NewTimeService creates a new TimeService instance
func NewTimeService(timestampFormat string) TimeService {
	if timestampFormat == "" {
		timestampFormat = DefaultTimestampFormat
	}
	return &timeServiceImpl{timestampFormat: timestampFormat}
}

// FormatHoursMinutes formats a billed total as HH:MM
func (t *timeServiceImpl) FormatHoursMinutes(totalSeconds int64) string {
	return FormatHoursMinutes(totalSeconds)
}

// FormatElapsedClock formats a running duration as HH:MM:SS
func (t *timeServiceImpl) FormatElapsedClock(d time.Duration) string {
	return FormatElapsedClock(d)
}

// FormatTimestamp formats a log entry boundary in local time. Zero times
// (entries imported without provenance) render as "-".
func (t *timeServiceImpl) FormatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format(t.timestampFormat)
}

// ParseEditedDuration parses HH:MM:SS and rounds it to billing units
func (t *timeServiceImpl) ParseEditedDuration(input string) (int64, error) {
	return rounding.RoundEditedDuration(input)
}
