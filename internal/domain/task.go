package domain

import "strings"

// Task is a unit of work inside a project. It owns its log entries by value,
// in the order they were appended.
type Task struct {
	ID        string
	Name      string
	ProjectID string
	TimeLogs  []LogEntry
}

// NewTask creates a Task with a fresh ID and no log entries.
func NewTask(name string, projectID string) Task {
	return Task{
		ID:        NewID(),
		Name:      name,
		ProjectID: projectID,
		TimeLogs:  []LogEntry{},
	}
}

// IsValid checks if the task has valid data.
func (t Task) IsValid() bool {
	return t.ID != "" && t.ProjectID != "" && strings.TrimSpace(t.Name) != ""
}

// String returns the task name for display purposes.
func (t Task) String() string {
	return t.Name
}

// TotalSeconds sums the billed duration of every log entry.
func (t Task) TotalSeconds() int64 {
	var total int64
	for _, entry := range t.TimeLogs {
		total += entry.Duration
	}
	return total
}

// Clone returns a copy that shares no log entry storage with t.
func (t Task) Clone() Task {
	logs := make([]LogEntry, len(t.TimeLogs))
	copy(logs, t.TimeLogs)
	t.TimeLogs = logs
	return t
}
