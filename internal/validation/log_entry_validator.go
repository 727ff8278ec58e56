package validation

import (
	"chronotrakr/internal/domain"
)

// LogEntryValidator provides validation for log entry operations
type LogEntryValidator struct {
	validator *Validator
}

// NewLogEntryValidator creates a new log entry validator
func NewLogEntryValidator(v *Validator) *LogEntryValidator {
	if v == nil {
		v = NewValidator()
	}
	return &LogEntryValidator{validator: v}
}

// ValidateIndex checks a positional log entry index against the number of entries
func (lv *LogEntryValidator) ValidateIndex(index, length int) error {
	if !lv.validator.IsValidIndex(index, length) {
		validationError := NewValidationError()
		validationError.AddInvalidRangeError("log_index", index, "no entry at that position")
		return validationError
	}
	return nil
}

// ValidateEntry checks a log entry before it is committed
func (lv *LogEntryValidator) ValidateEntry(entry domain.LogEntry) error {
	validationError := NewValidationError()

	if !lv.validator.IsBillingAligned(entry.Duration) {
		validationError.AddInvalidValueError("duration", entry.Duration, "must be a non-negative multiple of 30 minutes")
	}
	if entry.End.Before(entry.Start) {
		validationError.AddInvalidRangeError("time_range", map[string]interface{}{
			"start": entry.Start,
			"end":   entry.End,
		}, "end time must not be before start time")
	}

	if validationError.HasErrors() {
		return validationError
	}
	return nil
}
