package store

import (
	"encoding/json"
	"time"

	"chronotrakr/internal/domain"
)

// The persisted layout keeps the browser-era field names so existing
// exports stay readable: start and end are milliseconds since the epoch,
// duration is seconds.

type projectRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type taskRecord struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	ProjectID string      `json:"projectId"`
	TimeLogs  []logRecord `json:"timeLogs"`
}

type logRecord struct {
	ID       string `json:"id,omitempty"`
	Start    int64  `json:"start"`
	End      int64  `json:"end"`
	Duration int64  `json:"duration"`
}

func encodeProjects(projects []domain.Project) ([]byte, error) {
	records := make([]projectRecord, 0, len(projects))
	for _, p := range projects {
		records = append(records, projectRecord{ID: p.ID, Name: p.Name})
	}
	return json.Marshal(records)
}

func decodeProjects(data []byte) ([]domain.Project, error) {
	var records []projectRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}

	projects := make([]domain.Project, 0, len(records))
	for _, r := range records {
		projects = append(projects, domain.Project{ID: r.ID, Name: r.Name})
	}
	return projects, nil
}

func encodeTasks(tasks []domain.Task) ([]byte, error) {
	records := make([]taskRecord, 0, len(tasks))
	for _, t := range tasks {
		logs := make([]logRecord, 0, len(t.TimeLogs))
		for _, e := range t.TimeLogs {
			logs = append(logs, logRecord{
				ID:       e.ID,
				Start:    toMillis(e.Start),
				End:      toMillis(e.End),
				Duration: e.Duration,
			})
		}
		records = append(records, taskRecord{
			ID:        t.ID,
			Name:      t.Name,
			ProjectID: t.ProjectID,
			TimeLogs:  logs,
		})
	}
	return json.Marshal(records)
}

// decodeTasks restores tasks and assigns ids to entries stored without one.
func decodeTasks(data []byte) ([]domain.Task, error) {
	var records []taskRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}

	tasks := make([]domain.Task, 0, len(records))
	for _, r := range records {
		logs := make([]domain.LogEntry, 0, len(r.TimeLogs))
		for _, l := range r.TimeLogs {
			id := l.ID
			if id == "" {
				id = domain.NewID()
			}
			logs = append(logs, domain.LogEntry{
				ID:       id,
				Start:    fromMillis(l.Start),
				End:      fromMillis(l.End),
				Duration: l.Duration,
			})
		}
		tasks = append(tasks, domain.Task{
			ID:        r.ID,
			Name:      r.Name,
			ProjectID: r.ProjectID,
			TimeLogs:  logs,
		})
	}
	return tasks, nil
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
