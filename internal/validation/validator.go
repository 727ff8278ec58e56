package validation

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"chronotrakr/internal/config"
	"chronotrakr/internal/rounding"
)

const (
	defaultNameMinLength = 1
	defaultNameMaxLength = 255
)

// Validator provides common validation utilities
type Validator struct {
	config *config.Config
}

// NewValidator creates a new validator instance using default limits
func NewValidator() *Validator {
	return &Validator{config: nil}
}

// NewValidatorWithConfig creates a new validator instance with configuration
func NewValidatorWithConfig(cfg *config.Config) *Validator {
	return &Validator{config: cfg}
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsValidStringLength checks if the trimmed rune count is within [min, max]
func (v *Validator) IsValidStringLength(s string, min, max int) bool {
	length := utf8.RuneCountInString(strings.TrimSpace(s))
	return length >= min && length <= max
}

// HasControlCharacters reports whether s contains newlines, tabs or other
// control characters, which would break list and invoice output.
func (v *Validator) HasControlCharacters(s string) bool {
	return strings.IndexFunc(s, unicode.IsControl) >= 0
}

// IsValidIndex checks that index addresses an element of a sequence of the given length
func (v *Validator) IsValidIndex(index, length int) bool {
	return index >= 0 && index < length
}

// IsBillingAligned checks that seconds is a non-negative multiple of the billing unit
func (v *Validator) IsBillingAligned(seconds int64) bool {
	return seconds >= 0 && seconds%rounding.BillingUnit == 0
}

// TrimAndValidateString trims whitespace and returns the cleaned string
func (v *Validator) TrimAndValidateString(s string) string {
	return strings.TrimSpace(s)
}

// NameLimits returns the configured minimum and maximum name length
func (v *Validator) NameLimits() (int, int) {
	if v.config != nil {
		return v.config.Validation.NameMinLength, v.config.Validation.NameMaxLength
	}
	return defaultNameMinLength, defaultNameMaxLength
}
