package services

import (
	"context"
	"time"

	"chronotrakr/internal/domain"
	"chronotrakr/internal/timer"
)

// StoreReader is the read side of the time log store
type StoreReader interface {
	Projects() []domain.Project
	Project(id string) (domain.Project, bool)
	Tasks() []domain.Task
	Task(id string) (domain.Task, bool)
	TasksForProject(projectID string) []domain.Task
}

// TaskStore adds the deletions that must be coordinated with the timer
type TaskStore interface {
	StoreReader
	DeleteTask(ctx context.Context, id string) error
	DeleteProject(ctx context.Context, id string) error
}

// Stopwatch is the timer state machine as seen by services
type Stopwatch interface {
	Start(taskID string) (timer.Active, error)
	Stop(ctx context.Context, taskID string) (*domain.LogEntry, error)
	Switch(ctx context.Context, taskID string) (*domain.LogEntry, timer.Active, error)
	Discard(taskID string) bool
	Active() (timer.Active, bool)
	Elapsed() time.Duration
}

// TaskSession represents the running timer together with its task
type TaskSession struct {
	Task      domain.Task    `json:"task"`
	Project   domain.Project `json:"project"`
	StartTime time.Time      `json:"start_time"`
	Elapsed   time.Duration  `json:"elapsed"`
}

// ProjectSummary is a project with its aggregated time
type ProjectSummary struct {
	Project      domain.Project `json:"project"`
	TaskCount    int            `json:"task_count"`
	TotalSeconds int64          `json:"total_seconds"`
	TotalTime    string         `json:"total_time"` // HH:MM
}

// TaskSummary is a task with its aggregated time
type TaskSummary struct {
	Task         domain.Task `json:"task"`
	EntryCount   int         `json:"entry_count"`
	TotalSeconds int64       `json:"total_seconds"`
	TotalTime    string      `json:"total_time"` // HH:MM
	IsRunning    bool        `json:"is_running"`
}

// SearchCriteria narrows a task listing
type SearchCriteria struct {
	ProjectID  string `json:"project_id,omitempty"`
	TextFilter string `json:"text_filter,omitempty"`
}

// TimeService handles duration parsing and formatting
type TimeService interface {
	FormatHoursMinutes(totalSeconds int64) string
	FormatElapsedClock(d time.Duration) string
	FormatTimestamp(t time.Time) string
	ParseEditedDuration(input string) (int64, error)
}

// TaskService coordinates the timer with the store
type TaskService interface {
	StartTask(ctx context.Context, taskID string) (*TaskSession, error)
	SwitchTask(ctx context.Context, taskID string) (*domain.LogEntry, *TaskSession, error)
	StopTask(ctx context.Context, taskID string) (*domain.LogEntry, error)
	GetCurrentSession(ctx context.Context) (*TaskSession, error)
	DeleteTask(ctx context.Context, taskID string) error
	DeleteProject(ctx context.Context, projectID string) error
}

// SearchService resolves user references and filters tasks
type SearchService interface {
	ResolveProject(ref string) (domain.Project, error)
	ResolveTask(ref string, projectID string) (domain.Task, error)
	SearchTasks(criteria SearchCriteria) []domain.Task
}

// ReportingService handles aggregation and invoice export
type ReportingService interface {
	TotalSeconds(projectID string) int64
	ProjectSummaries() []ProjectSummary
	TaskSummaries(projectID string, running string) []TaskSummary
	GenerateInvoice(projectID string) Invoice
	WriteInvoice(dir string, invoice Invoice) (string, error)
}

// ServiceContainer manages all services and their dependencies
type ServiceContainer struct {
	TimeService      TimeService
	TaskService      TaskService
	SearchService    SearchService
	ReportingService ReportingService
}

// NewServiceContainer wires every service over one store and timer
func NewServiceContainer(store TaskStore, stopwatch Stopwatch, timeFormat string) *ServiceContainer {
	timeService := NewTimeService(timeFormat)
	return &ServiceContainer{
		TimeService:      timeService,
		TaskService:      NewTaskService(store, stopwatch, timeService),
		SearchService:    NewSearchService(store),
		ReportingService: NewReportingService(store, timeService),
	}
}
