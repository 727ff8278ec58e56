package api

import (
	"context"
	"time"

	"chronotrakr/internal/domain"
	"chronotrakr/internal/errors"
	"chronotrakr/internal/services"
	"chronotrakr/internal/store"
	"chronotrakr/internal/timer"
)

// BusinessAPI adds the timer and export workflows on top of API
type BusinessAPI interface {
	API

	// ========== Timer Workflows ==========

	// StartTask starts the timer for a task. It fails while another task is running.
	StartTask(ctx context.Context, taskRef string) (*services.TaskSession, error)

	// SwitchTask stops and logs the running task, if any, then starts taskRef
	SwitchTask(ctx context.Context, taskRef string) (*domain.LogEntry, *services.TaskSession, error)

	// StopTask stops the timer and logs the rounded entry. An empty taskRef
	// stops whichever task is running. The entry is nil when nothing stopped.
	StopTask(ctx context.Context, taskRef string) (*domain.LogEntry, error)

	// GetCurrentSession returns the running session, or nil when idle
	GetCurrentSession(ctx context.Context) (*services.TaskSession, error)

	// Tick calls fn with the elapsed time every interval until the current
	// run ends or ctx is done. fn must not call the timer workflows.
	Tick(ctx context.Context, interval time.Duration, fn func(time.Duration)) error

	// ========== Export ==========

	// GenerateInvoice builds the invoice for a project. A reference that
	// matches nothing yields the Unknown Project invoice.
	GenerateInvoice(ctx context.Context, projectRef string) (*services.Invoice, error)

	// ExportInvoice generates the invoice and writes it into dir
	ExportInvoice(ctx context.Context, projectRef string, dir string) (*services.Invoice, string, error)

	// ========== Display ==========

	// FormatElapsed renders a running duration as HH:MM:SS
	FormatElapsed(d time.Duration) string

	// PersistErr returns the most recent storage failure, if any
	PersistErr() error
}

// businessAPIImpl implements the BusinessAPI interface
type businessAPIImpl struct {
	API
	store    *store.Store
	timer    *timer.Timer
	services *services.ServiceContainer
}

// NewBusinessAPI creates a new BusinessAPI over one store and its timer
func NewBusinessAPI(st *store.Store, tm *timer.Timer, timeFormat string) BusinessAPI {
	container := services.NewServiceContainer(st, tm, timeFormat)
	return &businessAPIImpl{
		API:      New(st, container),
		store:    st,
		timer:    tm,
		services: container,
	}
}

// ========== Timer Workflows ==========

func (b *businessAPIImpl) StartTask(ctx context.Context, taskRef string) (*services.TaskSession, error) {
	task, err := b.services.SearchService.ResolveTask(taskRef, "")
	if err != nil {
		return nil, err
	}
	return b.services.TaskService.StartTask(ctx, task.ID)
}

func (b *businessAPIImpl) SwitchTask(ctx context.Context, taskRef string) (*domain.LogEntry, *services.TaskSession, error) {
	task, err := b.services.SearchService.ResolveTask(taskRef, "")
	if err != nil {
		return nil, nil, err
	}
	return b.services.TaskService.SwitchTask(ctx, task.ID)
}

func (b *businessAPIImpl) StopTask(ctx context.Context, taskRef string) (*domain.LogEntry, error) {
	if taskRef == "" {
		active, ok := b.timer.Active()
		if !ok {
			return nil, nil
		}
		return b.services.TaskService.StopTask(ctx, active.TaskID)
	}

	task, err := b.services.SearchService.ResolveTask(taskRef, "")
	if err != nil {
		return nil, err
	}
	return b.services.TaskService.StopTask(ctx, task.ID)
}

func (b *businessAPIImpl) GetCurrentSession(ctx context.Context) (*services.TaskSession, error) {
	return b.services.TaskService.GetCurrentSession(ctx)
}

func (b *businessAPIImpl) Tick(ctx context.Context, interval time.Duration, fn func(time.Duration)) error {
	if interval <= 0 {
		return errors.NewInvalidInputError("tick interval", interval, "must be positive")
	}
	return b.timer.Tick(ctx, interval, fn)
}

// ========== Export ==========

func (b *businessAPIImpl) GenerateInvoice(ctx context.Context, projectRef string) (*services.Invoice, error) {
	if err := errors.FromContext(ctx, "generate invoice"); err != nil {
		return nil, err
	}

	projectID := projectRef
	project, err := b.services.SearchService.ResolveProject(projectRef)
	switch {
	case err == nil:
		projectID = project.ID
	case !errors.IsErrorType(err, errors.ErrorTypeNotFound):
		return nil, err
	}

	invoice := b.services.ReportingService.GenerateInvoice(projectID)
	return &invoice, nil
}

func (b *businessAPIImpl) ExportInvoice(ctx context.Context, projectRef string, dir string) (*services.Invoice, string, error) {
	invoice, err := b.GenerateInvoice(ctx, projectRef)
	if err != nil {
		return nil, "", err
	}
	path, err := b.services.ReportingService.WriteInvoice(dir, *invoice)
	if err != nil {
		return nil, "", err
	}
	return invoice, path, nil
}

// ========== Display ==========

func (b *businessAPIImpl) FormatElapsed(d time.Duration) string {
	return b.services.TimeService.FormatElapsedClock(d)
}

func (b *businessAPIImpl) PersistErr() error {
	return b.store.PersistErr()
}
