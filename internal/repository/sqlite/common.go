package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"chronotrakr/internal/errors"
)

// HandleDatabaseError converts database errors to structured app errors.
// Context expiry is reported as a timeout rather than a storage failure.
func HandleDatabaseError(ctx context.Context, operation string, err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
		if ctxErr := errors.FromContext(ctx, operation); ctxErr != nil {
			return ctxErr
		}
		return errors.NewTimeoutError(operation, err.Error())
	}
	return errors.NewDatabaseError(operation, err)
}

// withTimeout derives a context bounded by d. A non-positive d leaves ctx unchanged.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// Execute runs a statement that returns no rows
func Execute(ctx context.Context, db *sql.DB, operation string, query string, args ...interface{}) error {
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return HandleDatabaseError(ctx, operation, err)
	}
	return nil
}

// QuerySingle executes a query that returns at most one row. The boolean
// result is false when no row matched.
func QuerySingle[T any](ctx context.Context, db *sql.DB, query string, scanFunc func(Scanner) (*T, error), entityType string, args ...interface{}) (*T, bool, error) {
	row := db.QueryRowContext(ctx, query, args...)
	result, err := scanFunc(row)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, HandleDatabaseError(ctx, "scan "+entityType, err)
	}
	return result, true, nil
}
