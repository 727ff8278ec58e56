package errors

import (
	"context"
	"errors"
	"fmt"
)

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Code:    "VALIDATION_FAILED",
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string, identifier string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, identifier),
		Code:    "NOT_FOUND",
		Context: map[string]interface{}{
			"resource":   resource,
			"identifier": identifier,
		},
	}
}

// NewOutOfRangeError creates an error for a positional index outside [0, length)
func NewOutOfRangeError(resource string, index, length int) *AppError {
	return &AppError{
		Type:    ErrorTypeOutOfRange,
		Message: fmt.Sprintf("%s index %d out of range (have %d)", resource, index, length),
		Code:    "OUT_OF_RANGE",
		Context: map[string]interface{}{
			"resource": resource,
			"index":    index,
			"length":   length,
		},
	}
}

// NewParseError creates a new parse error for malformed textual input
func NewParseError(input string, expectedFormat string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeParse,
		Message: fmt.Sprintf("cannot parse %q, expected %s", input, expectedFormat),
		Code:    "PARSE_FAILED",
		Cause:   cause,
		Context: map[string]interface{}{
			"input":  input,
			"format": expectedFormat,
		},
	}
}

// NewInvalidStateError creates an error for an operation not allowed in the current state
func NewInvalidStateError(operation string, reason string) *AppError {
	return &AppError{
		Type:    ErrorTypeInvalidState,
		Message: fmt.Sprintf("cannot %s: %s", operation, reason),
		Code:    "INVALID_STATE",
		Context: map[string]interface{}{
			"operation": operation,
			"reason":    reason,
		},
	}
}

// NewDatabaseError creates a new database error
func NewDatabaseError(operation string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeDatabase,
		Message: fmt.Sprintf("database operation failed: %s", operation),
		Code:    "DATABASE_ERROR",
		Cause:   cause,
		Context: map[string]interface{}{
			"operation": operation,
		},
	}
}

// NewInvalidInputError creates a new invalid input error
func NewInvalidInputError(field string, value interface{}, reason string) *AppError {
	return &AppError{
		Type:    ErrorTypeInvalidInput,
		Message: fmt.Sprintf("invalid input for %s: %s", field, reason),
		Code:    "INVALID_INPUT",
		Context: map[string]interface{}{
			"field":  field,
			"value":  value,
			"reason": reason,
		},
	}
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(operation string, timeout interface{}) *AppError {
	return &AppError{
		Type:    ErrorTypeTimeout,
		Message: fmt.Sprintf("operation timed out: %s", operation),
		Code:    "TIMEOUT",
		Context: map[string]interface{}{
			"operation": operation,
			"timeout":   timeout,
		},
	}
}

// WrapError wraps an existing error with additional context
func WrapError(err error, errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Code:    errorType.String(),
		Cause:   err,
		Context: make(map[string]interface{}),
	}
}

// FromContext converts a context error into a timeout error, or returns nil
func FromContext(ctx context.Context, operation string) error {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return NewTimeoutError(operation, err.Error())
		}
		return WrapError(err, ErrorTypeTimeout, "operation cancelled: "+operation)
	}
	return nil
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsErrorType checks if the error is of the specified type
func IsErrorType(err error, errorType ErrorType) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.IsType(errorType)
	}
	return false
}

// GetUserMessage returns a user-friendly error message
func GetUserMessage(err error) string {
	if appErr, ok := AsAppError(err); ok {
		switch appErr.Type {
		case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeOutOfRange,
			ErrorTypeInvalidState, ErrorTypeInvalidInput:
			return appErr.Message
		case ErrorTypeParse:
			return appErr.Message + ". Please enter the value again."
		case ErrorTypeDatabase:
			return "A storage error occurred. Your changes are kept for this session."
		case ErrorTypeTimeout:
			return "The operation timed out. Please try again."
		default:
			return "An unexpected error occurred. Please try again."
		}
	}
	return err.Error()
}

// GetErrorCode returns the error code for the error
func GetErrorCode(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return "UNKNOWN_ERROR"
}

// ShouldLogError determines if an error should be logged based on its type
func ShouldLogError(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		switch appErr.Type {
		case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeOutOfRange,
			ErrorTypeParse, ErrorTypeInvalidState, ErrorTypeInvalidInput:
			return false // These are user errors, not system errors
		case ErrorTypeDatabase, ErrorTypeTimeout:
			return true
		default:
			return true
		}
	}
	return true // Unknown errors should be logged
}
