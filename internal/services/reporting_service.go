package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"chronotrakr/internal/domain"
	"chronotrakr/internal/errors"
)

// UnknownProjectName is used when an invoice is requested for an id that
// no longer resolves to a project
const UnknownProjectName = "Unknown Project"

// InvoiceContentType is the MIME type of the exported invoice
const InvoiceContentType = "text/plain"

// Invoice is the per-project export artifact
type Invoice struct {
	ProjectID    string `json:"project_id"`
	ProjectName  string `json:"project_name"`
	TotalSeconds int64  `json:"total_seconds"`
	TotalTime    string `json:"total_time"` // HH:MM
}

// Body returns the two-line text of the invoice without a trailing newline
func (i Invoice) Body() string {
	return fmt.Sprintf("Invoice for %s\nTotal Time: %s", i.ProjectName, i.TotalTime)
}

// Filename returns invoice-<name>.txt with whitespace and path separators
// replaced by '-'
func (i Invoice) Filename() string {
	name := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '/' || r == '\\' {
			return '-'
		}
		return r
	}, i.ProjectName)
	return "invoice-" + name + ".txt"
}

// ContentType returns the MIME type of Body
func (i Invoice) ContentType() string {
	return InvoiceContentType
}

// reportingServiceImpl implements the ReportingService interface
type reportingServiceImpl struct {
	store       StoreReader
	timeService TimeService
}

// NewReportingService creates a new ReportingService instance
func NewReportingService(store StoreReader, timeService TimeService) ReportingService {
	return &reportingServiceImpl{
		store:       store,
		timeService: timeService,
	}
}

// TotalSeconds sums the billed duration of every task in the project.
// Unknown projects total zero.
func (r *reportingServiceImpl) TotalSeconds(projectID string) int64 {
	return sumTasks(r.store.TasksForProject(projectID))
}

// ProjectSummaries returns every project with its task count and total
func (r *reportingServiceImpl) ProjectSummaries() []ProjectSummary {
	projects := r.store.Projects()
	summaries := make([]ProjectSummary, 0, len(projects))
	for _, p := range projects {
		tasks := r.store.TasksForProject(p.ID)
		total := sumTasks(tasks)
		summaries = append(summaries, ProjectSummary{
			Project:      p,
			TaskCount:    len(tasks),
			TotalSeconds: total,
			TotalTime:    r.timeService.FormatHoursMinutes(total),
		})
	}
	return summaries
}

// TaskSummaries returns the project's tasks with their totals. running is
// the id of the task whose timer is active, or empty.
func (r *reportingServiceImpl) TaskSummaries(projectID string, running string) []TaskSummary {
	var tasks []domain.Task
	if projectID == "" {
		tasks = r.store.Tasks()
	} else {
		tasks = r.store.TasksForProject(projectID)
	}

	summaries := make([]TaskSummary, 0, len(tasks))
	for _, t := range tasks {
		total := t.TotalSeconds()
		summaries = append(summaries, TaskSummary{
			Task:         t,
			EntryCount:   len(t.TimeLogs),
			TotalSeconds: total,
			TotalTime:    r.timeService.FormatHoursMinutes(total),
			IsRunning:    running != "" && t.ID == running,
		})
	}
	return summaries
}

// GenerateInvoice builds the invoice for a project
func (r *reportingServiceImpl) GenerateInvoice(projectID string) Invoice {
	name := UnknownProjectName
	if p, ok := r.store.Project(projectID); ok {
		name = p.Name
	}
	total := r.TotalSeconds(projectID)

	return Invoice{
		ProjectID:    projectID,
		ProjectName:  name,
		TotalSeconds: total,
		TotalTime:    r.timeService.FormatHoursMinutes(total),
	}
}

// WriteInvoice writes the invoice body into dir and returns the file path
func (r *reportingServiceImpl) WriteInvoice(dir string, invoice Invoice) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.NewInvalidInputError("output directory", dir, err.Error())
	}

	path := filepath.Join(dir, invoice.Filename())
	if err := os.WriteFile(path, []byte(invoice.Body()), 0o644); err != nil {
		return "", errors.NewInvalidInputError("output file", path, err.Error())
	}
	return path, nil
}

func sumTasks(tasks []domain.Task) int64 {
	var total int64
	for _, t := range tasks {
		total += t.TotalSeconds()
	}
	return total
}
