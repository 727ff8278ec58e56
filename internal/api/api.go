package api

import (
	"context"

	"chronotrakr/internal/domain"
	"chronotrakr/internal/errors"
	"chronotrakr/internal/services"
	"chronotrakr/internal/store"
)

// LogEntryView is a log entry together with its position in the task's log
// and its display strings.
type LogEntryView struct {
	Index    int             `json:"index"` // 0-based
	Entry    domain.LogEntry `json:"entry"`
	Start    string          `json:"start"`
	End      string          `json:"end"`
	Duration string          `json:"duration"` // HH:MM
}

// API defines the interface for project, task and log entry operations.
// Projects and tasks are addressed by reference: an id, a unique id prefix
// or a case-insensitive name.
type API interface {
	// Project operations
	AddProject(ctx context.Context, name string) (*domain.Project, error)
	RenameProject(ctx context.Context, projectRef string, name string) (*domain.Project, error)
	DeleteProject(ctx context.Context, projectRef string) (*domain.Project, error)
	ListProjects(ctx context.Context) ([]services.ProjectSummary, error)

	// Task operations
	AddTask(ctx context.Context, name string, projectRef string) (*domain.Task, error)
	RenameTask(ctx context.Context, taskRef string, name string) (*domain.Task, error)
	DeleteTask(ctx context.Context, taskRef string) (*domain.Task, error)
	ListTasks(ctx context.Context, projectRef string, textFilter string) ([]services.TaskSummary, error)

	// Log entry operations
	ListLogEntries(ctx context.Context, taskRef string) ([]LogEntryView, error)
	EditLogEntry(ctx context.Context, taskRef string, index int, duration string) (*LogEntryView, error)
	DeleteLogEntry(ctx context.Context, taskRef string, index int) (*LogEntryView, error)
}

type apiImpl struct {
	store    *store.Store
	services *services.ServiceContainer
}

// New creates a new API instance.
func New(st *store.Store, container *services.ServiceContainer) API {
	return &apiImpl{
		store:    st,
		services: container,
	}
}

// Project CRUD implementations
func (a *apiImpl) AddProject(ctx context.Context, name string) (*domain.Project, error) {
	project, err := a.store.AddProject(ctx, name)
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (a *apiImpl) RenameProject(ctx context.Context, projectRef string, name string) (*domain.Project, error) {
	project, err := a.services.SearchService.ResolveProject(projectRef)
	if err != nil {
		return nil, err
	}
	if err := a.store.RenameProject(ctx, project.ID, name); err != nil {
		return nil, err
	}

	renamed, ok := a.store.Project(project.ID)
	if !ok {
		return nil, errors.NewNotFoundError("project", project.ID)
	}
	return &renamed, nil
}

func (a *apiImpl) DeleteProject(ctx context.Context, projectRef string) (*domain.Project, error) {
	project, err := a.services.SearchService.ResolveProject(projectRef)
	if err != nil {
		return nil, err
	}
	if err := a.services.TaskService.DeleteProject(ctx, project.ID); err != nil {
		return nil, err
	}
	return &project, nil
}

func (a *apiImpl) ListProjects(ctx context.Context) ([]services.ProjectSummary, error) {
	if err := errors.FromContext(ctx, "list projects"); err != nil {
		return nil, err
	}
	return a.services.ReportingService.ProjectSummaries(), nil
}

// Task CRUD implementations
func (a *apiImpl) AddTask(ctx context.Context, name string, projectRef string) (*domain.Task, error) {
	project, err := a.services.SearchService.ResolveProject(projectRef)
	if err != nil {
		return nil, err
	}
	if err := a.store.SelectProject(project.ID); err != nil {
		return nil, err
	}

	selected, _ := a.store.SelectedProject()
	task, err := a.store.AddTask(ctx, name, selected.ID)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (a *apiImpl) RenameTask(ctx context.Context, taskRef string, name string) (*domain.Task, error) {
	task, err := a.services.SearchService.ResolveTask(taskRef, "")
	if err != nil {
		return nil, err
	}
	if err := a.store.RenameTask(ctx, task.ID, name); err != nil {
		return nil, err
	}

	renamed, ok := a.store.Task(task.ID)
	if !ok {
		return nil, errors.NewNotFoundError("task", task.ID)
	}
	return &renamed, nil
}

func (a *apiImpl) DeleteTask(ctx context.Context, taskRef string) (*domain.Task, error) {
	task, err := a.services.SearchService.ResolveTask(taskRef, "")
	if err != nil {
		return nil, err
	}
	if err := a.services.TaskService.DeleteTask(ctx, task.ID); err != nil {
		return nil, err
	}
	return &task, nil
}

func (a *apiImpl) ListTasks(ctx context.Context, projectRef string, textFilter string) ([]services.TaskSummary, error) {
	if err := errors.FromContext(ctx, "list tasks"); err != nil {
		return nil, err
	}

	criteria := services.SearchCriteria{TextFilter: textFilter}
	if projectRef != "" {
		project, err := a.services.SearchService.ResolveProject(projectRef)
		if err != nil {
			return nil, err
		}
		criteria.ProjectID = project.ID
	}

	running := ""
	if session, err := a.services.TaskService.GetCurrentSession(ctx); err == nil && session != nil {
		running = session.Task.ID
	}

	byID := make(map[string]services.TaskSummary)
	for _, summary := range a.services.ReportingService.TaskSummaries(criteria.ProjectID, running) {
		byID[summary.Task.ID] = summary
	}

	matches := a.services.SearchService.SearchTasks(criteria)
	summaries := make([]services.TaskSummary, 0, len(matches))
	for _, task := range matches {
		if summary, ok := byID[task.ID]; ok {
			summaries = append(summaries, summary)
		}
	}
	return summaries, nil
}

// Log entry implementations
func (a *apiImpl) ListLogEntries(ctx context.Context, taskRef string) ([]LogEntryView, error) {
	if err := errors.FromContext(ctx, "list log entries"); err != nil {
		return nil, err
	}
	task, err := a.services.SearchService.ResolveTask(taskRef, "")
	if err != nil {
		return nil, err
	}

	views := make([]LogEntryView, 0, len(task.TimeLogs))
	for i, entry := range task.TimeLogs {
		views = append(views, a.view(i, entry))
	}
	return views, nil
}

func (a *apiImpl) EditLogEntry(ctx context.Context, taskRef string, index int, duration string) (*LogEntryView, error) {
	task, err := a.services.SearchService.ResolveTask(taskRef, "")
	if err != nil {
		return nil, err
	}
	seconds, err := a.services.TimeService.ParseEditedDuration(duration)
	if err != nil {
		return nil, err
	}

	edited, err := a.store.EditLogEntry(ctx, task.ID, index, seconds)
	if err != nil {
		return nil, err
	}
	view := a.view(index, edited)
	return &view, nil
}

func (a *apiImpl) DeleteLogEntry(ctx context.Context, taskRef string, index int) (*LogEntryView, error) {
	task, err := a.services.SearchService.ResolveTask(taskRef, "")
	if err != nil {
		return nil, err
	}

	removed, err := a.store.DeleteLogEntry(ctx, task.ID, index)
	if err != nil {
		return nil, err
	}
	view := a.view(index, removed)
	return &view, nil
}

func (a *apiImpl) view(index int, entry domain.LogEntry) LogEntryView {
	ts := a.services.TimeService
	return LogEntryView{
		Index:    index,
		Entry:    entry,
		Start:    ts.FormatTimestamp(entry.Start),
		End:      ts.FormatTimestamp(entry.End),
		Duration: ts.FormatHoursMinutes(entry.Duration),
	}
}
