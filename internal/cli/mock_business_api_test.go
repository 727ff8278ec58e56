package cli

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"chronotrakr/internal/api"
	"chronotrakr/internal/config"
	"chronotrakr/internal/domain"
	"chronotrakr/internal/errors"
	"chronotrakr/internal/services"
)

// mockBusinessAPI implements the BusinessAPI interface for testing.
// References resolve by exact id or case-insensitive name. The timer
// methods are locked because Tick runs on its own goroutine.
type mockBusinessAPI struct {
	mu        sync.Mutex
	ticking   int
	projects  []domain.Project
	tasks     []domain.Task
	nextID    int
	running   string
	started   time.Time
	elapsed   time.Duration
	persisted error
	invoices  map[string]string // dir/filename -> body

	// stopSeconds is the billed duration of the next stopped entry
	stopSeconds int64
}

// newMockBusinessAPI creates a new mock BusinessAPI instance
func newMockBusinessAPI() *mockBusinessAPI {
	return &mockBusinessAPI{
		nextID:      1,
		invoices:    make(map[string]string),
		stopSeconds: 1800,
	}
}

var _ api.BusinessAPI = (*mockBusinessAPI)(nil)

func (m *mockBusinessAPI) newID() string {
	id := fmt.Sprintf("%08d-0000-4000-8000-000000000000", m.nextID)
	m.nextID++
	return id
}

func (m *mockBusinessAPI) findProject(ref string) (int, error) {
	for i, p := range m.projects {
		if p.ID == ref || strings.EqualFold(p.Name, strings.TrimSpace(ref)) {
			return i, nil
		}
	}
	return -1, errors.NewNotFoundError("project", ref)
}

func (m *mockBusinessAPI) findTask(ref string) (int, error) {
	for i, t := range m.tasks {
		if t.ID == ref || strings.EqualFold(t.Name, strings.TrimSpace(ref)) {
			return i, nil
		}
	}
	return -1, errors.NewNotFoundError("task", ref)
}

func (m *mockBusinessAPI) projectTasks(projectID string) []domain.Task {
	var out []domain.Task
	for _, t := range m.tasks {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out
}

// ========== API ==========

func (m *mockBusinessAPI) AddProject(ctx context.Context, name string) (*domain.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewValidationError("project name is required", nil)
	}
	p := domain.Project{ID: m.newID(), Name: name}
	m.projects = append(m.projects, p)
	return &p, nil
}

func (m *mockBusinessAPI) RenameProject(ctx context.Context, projectRef string, name string) (*domain.Project, error) {
	i, err := m.findProject(projectRef)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) != "" {
		m.projects[i].Name = strings.TrimSpace(name)
	}
	p := m.projects[i]
	return &p, nil
}

func (m *mockBusinessAPI) DeleteProject(ctx context.Context, projectRef string) (*domain.Project, error) {
	i, err := m.findProject(projectRef)
	if err != nil {
		return nil, err
	}
	p := m.projects[i]
	m.projects = append(m.projects[:i], m.projects[i+1:]...)

	kept := m.tasks[:0]
	for _, t := range m.tasks {
		if t.ProjectID != p.ID {
			kept = append(kept, t)
		} else if t.ID == m.running {
			m.running = ""
		}
	}
	m.tasks = kept
	return &p, nil
}

func (m *mockBusinessAPI) ListProjects(ctx context.Context) ([]services.ProjectSummary, error) {
	out := make([]services.ProjectSummary, 0, len(m.projects))
	for _, p := range m.projects {
		tasks := m.projectTasks(p.ID)
		var total int64
		for _, t := range tasks {
			total += t.TotalSeconds()
		}
		out = append(out, services.ProjectSummary{
			Project:      p,
			TaskCount:    len(tasks),
			TotalSeconds: total,
			TotalTime:    services.FormatHoursMinutes(total),
		})
	}
	return out, nil
}

func (m *mockBusinessAPI) AddTask(ctx context.Context, name string, projectRef string) (*domain.Task, error) {
	i, err := m.findProject(projectRef)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewValidationError("task name is required", nil)
	}
	t := domain.Task{ID: m.newID(), Name: name, ProjectID: m.projects[i].ID}
	m.tasks = append(m.tasks, t)
	return &t, nil
}

func (m *mockBusinessAPI) RenameTask(ctx context.Context, taskRef string, name string) (*domain.Task, error) {
	i, err := m.findTask(taskRef)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) != "" {
		m.tasks[i].Name = strings.TrimSpace(name)
	}
	t := m.tasks[i].Clone()
	return &t, nil
}

func (m *mockBusinessAPI) DeleteTask(ctx context.Context, taskRef string) (*domain.Task, error) {
	i, err := m.findTask(taskRef)
	if err != nil {
		return nil, err
	}
	t := m.tasks[i]
	m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
	if m.running == t.ID {
		m.running = ""
	}
	return &t, nil
}

func (m *mockBusinessAPI) ListTasks(ctx context.Context, projectRef string, textFilter string) ([]services.TaskSummary, error) {
	candidates := m.tasks
	if projectRef != "" {
		i, err := m.findProject(projectRef)
		if err != nil {
			return nil, err
		}
		candidates = m.projectTasks(m.projects[i].ID)
	}

	filter := strings.ToLower(textFilter)
	out := make([]services.TaskSummary, 0, len(candidates))
	for _, t := range candidates {
		if filter != "" && !strings.Contains(strings.ToLower(t.Name), filter) {
			continue
		}
		out = append(out, services.TaskSummary{
			Task:         t.Clone(),
			EntryCount:   len(t.TimeLogs),
			TotalSeconds: t.TotalSeconds(),
			TotalTime:    services.FormatHoursMinutes(t.TotalSeconds()),
			IsRunning:    t.ID == m.running,
		})
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Task.Name < out[b].Task.Name })
	return out, nil
}

func (m *mockBusinessAPI) entryView(index int, e domain.LogEntry) api.LogEntryView {
	return api.LogEntryView{
		Index:    index,
		Entry:    e,
		Start:    e.Start.Format("2006-01-02 15:04"),
		End:      e.End.Format("2006-01-02 15:04"),
		Duration: services.FormatHoursMinutes(e.Duration),
	}
}

func (m *mockBusinessAPI) ListLogEntries(ctx context.Context, taskRef string) ([]api.LogEntryView, error) {
	i, err := m.findTask(taskRef)
	if err != nil {
		return nil, err
	}
	out := make([]api.LogEntryView, 0, len(m.tasks[i].TimeLogs))
	for j, e := range m.tasks[i].TimeLogs {
		out = append(out, m.entryView(j, e))
	}
	return out, nil
}

func (m *mockBusinessAPI) EditLogEntry(ctx context.Context, taskRef string, index int, duration string) (*api.LogEntryView, error) {
	i, err := m.findTask(taskRef)
	if err != nil {
		return nil, err
	}
	seconds, err := services.NewTimeService("").ParseEditedDuration(duration)
	if err != nil {
		return nil, err
	}
	logs := m.tasks[i].TimeLogs
	if index < 0 || index >= len(logs) {
		return nil, errors.NewOutOfRangeError("log entry", index, len(logs))
	}
	logs[index].Duration = seconds
	v := m.entryView(index, logs[index])
	return &v, nil
}

func (m *mockBusinessAPI) DeleteLogEntry(ctx context.Context, taskRef string, index int) (*api.LogEntryView, error) {
	i, err := m.findTask(taskRef)
	if err != nil {
		return nil, err
	}
	logs := m.tasks[i].TimeLogs
	if index < 0 || index >= len(logs) {
		return nil, errors.NewOutOfRangeError("log entry", index, len(logs))
	}
	removed := logs[index]
	m.tasks[i].TimeLogs = append(logs[:index:index], logs[index+1:]...)
	v := m.entryView(index, removed)
	return &v, nil
}

// ========== BusinessAPI ==========

func (m *mockBusinessAPI) session() (*services.TaskSession, error) {
	i, err := m.findTask(m.running)
	if err != nil {
		return nil, err
	}
	project := domain.Project{ID: m.tasks[i].ProjectID, Name: services.UnknownProjectName}
	if j, err := m.findProject(m.tasks[i].ProjectID); err == nil {
		project = m.projects[j]
	}
	return &services.TaskSession{
		Task:      m.tasks[i].Clone(),
		Project:   project,
		StartTime: m.started,
		Elapsed:   m.elapsed,
	}, nil
}

func (m *mockBusinessAPI) StartTask(ctx context.Context, taskRef string) (*services.TaskSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, err := m.findTask(taskRef)
	if err != nil {
		return nil, err
	}
	if m.running != "" {
		return nil, errors.NewInvalidStateError("start timer", "a timer is already running for task "+m.running)
	}
	m.running = m.tasks[i].ID
	m.started = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return m.session()
}

func (m *mockBusinessAPI) SwitchTask(ctx context.Context, taskRef string) (*domain.LogEntry, *services.TaskSession, error) {
	entry, err := m.StopTask(ctx, "")
	if err != nil {
		return nil, nil, err
	}
	session, err := m.StartTask(ctx, taskRef)
	return entry, session, err
}

func (m *mockBusinessAPI) StopTask(ctx context.Context, taskRef string) (*domain.LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running == "" {
		return nil, nil
	}
	if taskRef != "" {
		i, err := m.findTask(taskRef)
		if err != nil {
			return nil, err
		}
		if m.tasks[i].ID != m.running {
			return nil, nil
		}
	}

	i, err := m.findTask(m.running)
	if err != nil {
		return nil, err
	}
	entry := domain.LogEntry{
		ID:       m.newID(),
		Start:    m.started,
		End:      m.started.Add(m.elapsed),
		Duration: m.stopSeconds,
	}
	m.tasks[i].TimeLogs = append(m.tasks[i].TimeLogs, entry)
	m.running = ""
	return &entry, nil
}

func (m *mockBusinessAPI) GetCurrentSession(ctx context.Context) (*services.TaskSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running == "" {
		return nil, nil
	}
	return m.session()
}

func (m *mockBusinessAPI) Tick(ctx context.Context, interval time.Duration, fn func(time.Duration)) error {
	m.mu.Lock()
	if m.running == "" {
		m.mu.Unlock()
		return errors.NewInvalidStateError("tick", "no timer is running")
	}
	m.ticking++
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.ticking--
		m.mu.Unlock()
	}()
	<-ctx.Done()
	return nil
}

// activeTicks reports how many Tick calls have not returned yet
func (m *mockBusinessAPI) activeTicks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ticking
}

func (m *mockBusinessAPI) GenerateInvoice(ctx context.Context, projectRef string) (*services.Invoice, error) {
	if strings.TrimSpace(projectRef) == "" {
		return nil, errors.NewInvalidInputError("project", projectRef, "a project reference is required")
	}
	invoice := services.Invoice{ProjectID: projectRef, ProjectName: services.UnknownProjectName, TotalTime: "00:00"}
	if i, err := m.findProject(projectRef); err == nil {
		var total int64
		for _, t := range m.projectTasks(m.projects[i].ID) {
			total += t.TotalSeconds()
		}
		invoice = services.Invoice{
			ProjectID:    m.projects[i].ID,
			ProjectName:  m.projects[i].Name,
			TotalSeconds: total,
			TotalTime:    services.FormatHoursMinutes(total),
		}
	}
	return &invoice, nil
}

func (m *mockBusinessAPI) ExportInvoice(ctx context.Context, projectRef string, dir string) (*services.Invoice, string, error) {
	invoice, err := m.GenerateInvoice(ctx, projectRef)
	if err != nil {
		return nil, "", err
	}
	path := dir + "/" + invoice.Filename()
	m.invoices[path] = invoice.Body()
	return invoice, path, nil
}

func (m *mockBusinessAPI) FormatElapsed(d time.Duration) string {
	return services.FormatElapsedClock(d)
}

func (m *mockBusinessAPI) PersistErr() error {
	return m.persisted
}

// seed adds a project with one task per name and returns the task ids
func (m *mockBusinessAPI) seed(t *testing.T, project string, tasks ...string) []string {
	t.Helper()
	ctx := context.Background()
	if _, err := m.findProject(project); err != nil {
		if _, err := m.AddProject(ctx, project); err != nil {
			t.Fatalf("seed project: %v", err)
		}
	}
	ids := make([]string, 0, len(tasks))
	for _, name := range tasks {
		task, err := m.AddTask(ctx, name, project)
		if err != nil {
			t.Fatalf("seed task: %v", err)
		}
		ids = append(ids, task.ID)
	}
	return ids
}

// logTime appends entries with the given billed durations to a task
func (m *mockBusinessAPI) logTime(t *testing.T, taskRef string, durations ...int64) {
	t.Helper()
	i, err := m.findTask(taskRef)
	if err != nil {
		t.Fatalf("log time: %v", err)
	}
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for _, d := range durations {
		m.tasks[i].TimeLogs = append(m.tasks[i].TimeLogs, domain.LogEntry{
			ID: m.newID(), Start: start, End: start.Add(time.Duration(d) * time.Second), Duration: d,
		})
	}
}

// testApp bundles an App over the mock with captured output
type testApp struct {
	app    *App
	mock   *mockBusinessAPI
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

// setupTestAppWithMockBusinessAPI creates an App wired to a fresh mock with
// colour disabled and a non-interactive input
func setupTestAppWithMockBusinessAPI(t *testing.T, input string) *testApp {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Display.Color = config.ColorNever
	cfg.Display.TickInterval = 10 * time.Millisecond

	mock := newMockBusinessAPI()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	app := NewAppWithConfig(mock, cfg,
		WithOutput(out, errOut),
		WithInput(strings.NewReader(input)),
		WithInteractive(func() bool { return false }),
	)
	return &testApp{app: app, mock: mock, out: out, errOut: errOut}
}
