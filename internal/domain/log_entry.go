package domain

import (
	"time"

	"chronotrakr/internal/rounding"
)

// LogEntry is a committed, rounded duration attached to a task.
// Start and End record where the time came from; Duration (seconds) is what
// gets billed and may differ from End-Start after a manual edit.
type LogEntry struct {
	ID       string
	Start    time.Time
	End      time.Time
	Duration int64
}

// NewLogEntry creates a LogEntry with a fresh ID.
func NewLogEntry(start, end time.Time, durationSeconds int64) LogEntry {
	return LogEntry{
		ID:       NewID(),
		Start:    start,
		End:      end,
		Duration: durationSeconds,
	}
}

// Elapsed returns the wall-clock span the entry was recorded over.
func (e LogEntry) Elapsed() time.Duration {
	return e.End.Sub(e.Start)
}

// Billed returns the billed duration as a time.Duration.
func (e LogEntry) Billed() time.Duration {
	return time.Duration(e.Duration) * time.Second
}

// IsValid reports whether the duration is a non-negative multiple of the
// billing unit and the recorded span is not reversed.
func (e LogEntry) IsValid() bool {
	if e.Duration < 0 || e.Duration%rounding.BillingUnit != 0 {
		return false
	}
	if e.End.Before(e.Start) {
		return false
	}
	return true
}
