package validation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		build    func(*ValidationError)
		expected string
	}{
		{
			name:     "no errors",
			build:    func(*ValidationError) {},
			expected: "validation error",
		},
		{
			name: "single error",
			build: func(ve *ValidationError) {
				ve.AddRequiredError("task_name")
			},
			expected: "validation error for field 'task_name': task name is required",
		},
		{
			name: "multiple errors",
			build: func(ve *ValidationError) {
				ve.AddRequiredError("project_name")
				ve.AddInvalidCharacterError("task_name", "a\tb")
			},
			expected: "multiple validation errors: validation error for field 'project_name': project name is required; " +
				"validation error for field 'task_name': task name contains control characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ve := NewValidationError()
			tt.build(ve)
			assert.Equal(t, tt.expected, ve.Error())
		})
	}
}

func TestValidationError_HasErrors(t *testing.T) {
	ve := NewValidationError()
	assert.False(t, ve.HasErrors())

	ve.AddRequiredError("project_name")
	assert.True(t, ve.HasErrors())
}

func TestValidationError_AddInvalidLengthError(t *testing.T) {
	tests := []struct {
		name     string
		min, max int
		expected string
	}{
		{"both bounds", 1, 255, "task name must be between 1 and 255 characters long"},
		{"min only", 3, 0, "task name must be at least 3 characters long"},
		{"max only", 0, 10, "task name must be at most 10 characters long"},
		{"no bounds", 0, 0, "task name has invalid length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ve := NewValidationError()
			ve.AddInvalidLengthError("task_name", "x", tt.min, tt.max)

			require.Len(t, ve.Errors, 1)
			assert.Equal(t, ErrorTypeInvalidLength, ve.Errors[0].Type)
			assert.Equal(t, tt.expected, ve.Errors[0].Message)
			assert.Equal(t, "x", ve.Errors[0].Value)
		})
	}
}

func TestValidationError_AddInvalidRangeError(t *testing.T) {
	ve := NewValidationError()
	ve.AddInvalidRangeError("log_index", 4, "no entry at that position")

	require.Len(t, ve.Errors, 1)
	assert.Equal(t, ErrorTypeInvalidRange, ve.Errors[0].Type)
	assert.Equal(t, "log index is out of range: no entry at that position", ve.Errors[0].Message)
	assert.Equal(t, 4, ve.Errors[0].Value)
}

func TestValidationError_GetFieldErrors(t *testing.T) {
	ve := NewValidationError()
	ve.AddRequiredError("project_name")
	ve.AddInvalidCharacterError("task_name", "a\nb")
	ve.AddInvalidLengthError("task_name", "a\nb", 5, 10)

	assert.Len(t, ve.GetFieldErrors("task_name"), 2)
	assert.Len(t, ve.GetFieldErrors("project_name"), 1)
	assert.Empty(t, ve.GetFieldErrors("duration"))
}

func TestValidationError_GetUserFriendlyMessage(t *testing.T) {
	ve := NewValidationError()
	assert.Equal(t, "Input validation failed", ve.GetUserFriendlyMessage())

	ve.AddRequiredError("project_name")
	assert.Equal(t, "project name is required", ve.GetUserFriendlyMessage())

	ve.AddInvalidValueError("duration", int64(7), "must be a non-negative multiple of 30 minutes")
	assert.Equal(t,
		"Multiple validation errors occurred:\n- project name is required\n- duration has invalid value: must be a non-negative multiple of 30 minutes",
		ve.GetUserFriendlyMessage())
}

func TestIsValidationError(t *testing.T) {
	ve := NewValidationError()
	ve.AddRequiredError("task_name")

	assert.True(t, IsValidationError(ve))
	assert.True(t, IsValidationError(fmt.Errorf("rename: %w", ve)))
	assert.False(t, IsValidationError(fmt.Errorf("plain")))
	assert.False(t, IsValidationError(nil))
}
