package services

import (
	"context"

	"chronotrakr/internal/domain"
	"chronotrakr/internal/errors"
	"chronotrakr/internal/timer"
)

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	store       TaskStore
	stopwatch   Stopwatch
	timeService TimeService
}

// NewTaskService creates a new TaskService instance
func NewTaskService(store TaskStore, stopwatch Stopwatch, timeService TimeService) TaskService {
	return &taskServiceImpl{
		store:       store,
		stopwatch:   stopwatch,
		timeService: timeService,
	}
}

// StartTask starts the timer for an existing task
func (t *taskServiceImpl) StartTask(ctx context.Context, taskID string) (*TaskSession, error) {
	if err := errors.FromContext(ctx, "start task"); err != nil {
		return nil, err
	}
	if _, ok := t.store.Task(taskID); !ok {
		return nil, errors.NewNotFoundError("task", taskID)
	}

	active, err := t.stopwatch.Start(taskID)
	if err != nil {
		return nil, err
	}
	return t.createTaskSession(active)
}

// SwitchTask stops whatever is running, logging it, and starts taskID
func (t *taskServiceImpl) SwitchTask(ctx context.Context, taskID string) (*domain.LogEntry, *TaskSession, error) {
	if err := errors.FromContext(ctx, "switch task"); err != nil {
		return nil, nil, err
	}
	if _, ok := t.store.Task(taskID); !ok {
		return nil, nil, errors.NewNotFoundError("task", taskID)
	}

	stopped, active, err := t.stopwatch.Switch(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	session, err := t.createTaskSession(active)
	if err != nil {
		return stopped, nil, err
	}
	return stopped, session, nil
}

// StopTask stops the timer for taskID. The entry is nil when that task
// was not running.
func (t *taskServiceImpl) StopTask(ctx context.Context, taskID string) (*domain.LogEntry, error) {
	return t.stopwatch.Stop(ctx, taskID)
}

// GetCurrentSession returns the running session, or nil when idle
func (t *taskServiceImpl) GetCurrentSession(ctx context.Context) (*TaskSession, error) {
	if err := errors.FromContext(ctx, "get current session"); err != nil {
		return nil, err
	}
	active, ok := t.stopwatch.Active()
	if !ok {
		return nil, nil
	}
	return t.createTaskSession(active)
}

// DeleteTask deletes a task, abandoning its timer if it is running
func (t *taskServiceImpl) DeleteTask(ctx context.Context, taskID string) error {
	if err := t.store.DeleteTask(ctx, taskID); err != nil {
		return err
	}
	t.stopwatch.Discard(taskID)
	return nil
}

// DeleteProject deletes a project and its tasks, abandoning the timer if
// it belongs to one of them
func (t *taskServiceImpl) DeleteProject(ctx context.Context, projectID string) error {
	tasks := t.store.TasksForProject(projectID)
	if err := t.store.DeleteProject(ctx, projectID); err != nil {
		return err
	}
	for _, task := range tasks {
		if t.stopwatch.Discard(task.ID) {
			break
		}
	}
	return nil
}

// createTaskSession joins the active timer with its task and project
func (t *taskServiceImpl) createTaskSession(active timer.Active) (*TaskSession, error) {
	task, ok := t.store.Task(active.TaskID)
	if !ok {
		return nil, errors.NewNotFoundError("task", active.TaskID)
	}
	project, ok := t.store.Project(task.ProjectID)
	if !ok {
		project = domain.Project{ID: task.ProjectID, Name: UnknownProjectName}
	}

	return &TaskSession{
		Task:      task,
		Project:   project,
		StartTime: active.StartTime,
		Elapsed:   t.stopwatch.Elapsed(),
	}, nil
}
