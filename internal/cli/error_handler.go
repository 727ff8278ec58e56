package cli

import (
	stderrors "errors"
	"fmt"
	"log/slog"

	"chronotrakr/internal/errors"
	"chronotrakr/internal/logging"
	"chronotrakr/internal/validation"
)

// ErrorHandler provides centralized error handling for command handlers
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler. A nil logger discards.
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &ErrorHandler{logger: logger}
}

// Handle provides user-friendly error messages for validation and other errors.
// System errors are logged before they are returned.
func (eh *ErrorHandler) Handle(operation string, err error) error {
	if err == nil {
		return nil
	}
	if errors.ShouldLogError(err) {
		eh.logger.Error("command failed",
			"operation", operation,
			"code", errors.GetErrorCode(err),
			"error", err)
	}
	return fmt.Errorf("failed to %s: %s", operation, eh.message(err))
}

func (eh *ErrorHandler) message(err error) string {
	var validationErr *validation.ValidationError
	if stderrors.As(err, &validationErr) {
		return validationErr.GetUserFriendlyMessage()
	}
	if appErr, ok := errors.AsAppError(err); ok && appErr.IsType(errors.ErrorTypeParse) {
		return appErr.Message + " (for example 01:15:00)"
	}
	return errors.GetUserMessage(err)
}
