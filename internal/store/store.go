// Package store holds projects, tasks and their log entries in memory and
// mirrors every committed change to a key/value repository.
package store

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"chronotrakr/internal/domain"
	"chronotrakr/internal/errors"
	"chronotrakr/internal/logging"
	"chronotrakr/internal/repository"
	"chronotrakr/internal/rounding"
	"chronotrakr/internal/validation"
)

// Change tells observers which collections a mutation touched.
type Change struct {
	Projects  bool
	Tasks     bool
	Selection bool
}

// Observer is called after a mutation has been committed and persisted.
type Observer func(Change)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for persistence warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithValidator sets the validator used for names and log entries.
func WithValidator(v *validation.Validator) Option {
	return func(s *Store) {
		s.names = validation.NewNameValidator(v)
		s.entries = validation.NewLogEntryValidator(v)
	}
}

// Store is the single owner of projects, tasks and the selected project.
type Store struct {
	mu        sync.Mutex
	repo      repository.Repository
	logger    *slog.Logger
	names     *validation.NameValidator
	entries   *validation.LogEntryValidator
	projects  []domain.Project
	tasks     []domain.Task
	selected  string
	observers map[int]Observer
	nextObs   int
	persist   error
}

// New creates an empty store backed by repo. Call Load to rehydrate.
func New(repo repository.Repository, opts ...Option) *Store {
	s := &Store{
		repo:      repo,
		logger:    logging.Discard(),
		names:     validation.NewNameValidator(nil),
		entries:   validation.NewLogEntryValidator(nil),
		projects:  []domain.Project{},
		tasks:     []domain.Task{},
		observers: make(map[int]Observer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory collections with the persisted ones. Missing
// keys load as empty lists; blobs that cannot be decoded are logged and
// treated as empty.
func (s *Store) Load(ctx context.Context) error {
	projectsBlob, hasProjects, err := s.repo.Get(ctx, repository.KeyProjects)
	if err != nil {
		return err
	}
	tasksBlob, hasTasks, err := s.repo.Get(ctx, repository.KeyTasks)
	if err != nil {
		return err
	}

	projects := []domain.Project{}
	if hasProjects {
		decoded, err := decodeProjects(projectsBlob)
		if err != nil {
			s.logger.Warn("ignoring unreadable stored collection", "key", repository.KeyProjects, "error", err)
		} else {
			projects = decoded
		}
	}

	tasks := []domain.Task{}
	if hasTasks {
		decoded, err := decodeTasks(tasksBlob)
		if err != nil {
			s.logger.Warn("ignoring unreadable stored collection", "key", repository.KeyTasks, "error", err)
		} else {
			tasks = decoded
		}
	}

	s.mu.Lock()
	s.projects = projects
	s.tasks = tasks
	s.selected = ""
	s.mu.Unlock()

	logging.Debugf("store: loaded %d projects and %d tasks\n", len(projects), len(tasks))
	s.notify(Change{Projects: true, Tasks: true, Selection: true})
	return nil
}

// AddProject creates a project with a fresh id. The name is stored trimmed.
func (s *Store) AddProject(ctx context.Context, name string) (domain.Project, error) {
	if err := errors.FromContext(ctx, "add project"); err != nil {
		return domain.Project{}, err
	}
	clean, err := s.cleanName(validation.FieldProjectName, name)
	if err != nil {
		return domain.Project{}, err
	}

	project := domain.NewProject(clean)

	s.mu.Lock()
	s.projects = append(s.projects, project)
	s.persistLocked(ctx, Change{Projects: true})
	s.mu.Unlock()

	s.notify(Change{Projects: true})
	return project, nil
}

// RenameProject renames a project. A blank name leaves it unchanged.
func (s *Store) RenameProject(ctx context.Context, id string, newName string) error {
	if err := errors.FromContext(ctx, "rename project"); err != nil {
		return err
	}

	s.mu.Lock()
	i := s.projectIndex(id)
	s.mu.Unlock()
	if i < 0 {
		return errors.NewNotFoundError("project", id)
	}
	if strings.TrimSpace(newName) == "" {
		return nil
	}
	clean, err := s.cleanName(validation.FieldProjectName, newName)
	if err != nil {
		return err
	}

	s.mu.Lock()
	// Re-resolve: the slice may have shifted while unlocked.
	if i = s.projectIndex(id); i < 0 {
		s.mu.Unlock()
		return errors.NewNotFoundError("project", id)
	}
	s.projects[i].Name = clean
	s.persistLocked(ctx, Change{Projects: true})
	s.mu.Unlock()

	s.notify(Change{Projects: true})
	return nil
}

// DeleteProject removes the project and every task that belongs to it.
// Unknown ids are ignored.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	if err := errors.FromContext(ctx, "delete project"); err != nil {
		return err
	}

	s.mu.Lock()
	i := s.projectIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}

	s.projects = append(s.projects[:i:i], s.projects[i+1:]...)
	kept := make([]domain.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if t.ProjectID != id {
			kept = append(kept, t)
		}
	}
	change := Change{Projects: true, Tasks: len(kept) != len(s.tasks)}
	s.tasks = kept
	if s.selected == id {
		s.selected = ""
		change.Selection = true
	}
	s.persistLocked(ctx, change)
	s.mu.Unlock()

	s.notify(change)
	return nil
}

// SelectProject marks a project as current. An empty id clears the selection.
func (s *Store) SelectProject(id string) error {
	s.mu.Lock()
	if id != "" && s.projectIndex(id) < 0 {
		s.mu.Unlock()
		return errors.NewNotFoundError("project", id)
	}
	s.selected = id
	s.mu.Unlock()

	s.notify(Change{Selection: true})
	return nil
}

// SelectedProject returns the current project, if any.
func (s *Store) SelectedProject() (domain.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == "" {
		return domain.Project{}, false
	}
	if i := s.projectIndex(s.selected); i >= 0 {
		return s.projects[i], true
	}
	return domain.Project{}, false
}

// AddTask creates a task under an existing project.
func (s *Store) AddTask(ctx context.Context, name string, projectID string) (domain.Task, error) {
	if err := errors.FromContext(ctx, "add task"); err != nil {
		return domain.Task{}, err
	}
	clean, err := s.cleanName(validation.FieldTaskName, name)
	if err != nil {
		return domain.Task{}, err
	}
	if strings.TrimSpace(projectID) == "" {
		return domain.Task{}, errors.NewValidationError("a project must be selected before adding a task", nil)
	}

	s.mu.Lock()
	if s.projectIndex(projectID) < 0 {
		s.mu.Unlock()
		return domain.Task{}, errors.NewValidationError("project does not exist: "+projectID, nil).
			WithContext("project_id", projectID)
	}
	task := domain.NewTask(clean, projectID)
	s.tasks = append(s.tasks, task)
	s.persistLocked(ctx, Change{Tasks: true})
	s.mu.Unlock()

	s.notify(Change{Tasks: true})
	return task.Clone(), nil
}

// RenameTask renames a task. A blank name leaves it unchanged.
func (s *Store) RenameTask(ctx context.Context, id string, newName string) error {
	if err := errors.FromContext(ctx, "rename task"); err != nil {
		return err
	}

	s.mu.Lock()
	i := s.taskIndex(id)
	s.mu.Unlock()
	if i < 0 {
		return errors.NewNotFoundError("task", id)
	}
	if strings.TrimSpace(newName) == "" {
		return nil
	}
	clean, err := s.cleanName(validation.FieldTaskName, newName)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if i = s.taskIndex(id); i < 0 {
		s.mu.Unlock()
		return errors.NewNotFoundError("task", id)
	}
	s.tasks[i].Name = clean
	s.persistLocked(ctx, Change{Tasks: true})
	s.mu.Unlock()

	s.notify(Change{Tasks: true})
	return nil
}

// DeleteTask removes a task and its log entries. Unknown ids are ignored.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	if err := errors.FromContext(ctx, "delete task"); err != nil {
		return err
	}

	s.mu.Lock()
	i := s.taskIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	s.persistLocked(ctx, Change{Tasks: true})
	s.mu.Unlock()

	s.notify(Change{Tasks: true})
	return nil
}

// AppendLogEntry adds entry at the end of the task's log. Entries without
// an id get one.
func (s *Store) AppendLogEntry(ctx context.Context, taskID string, entry domain.LogEntry) (domain.LogEntry, error) {
	if err := errors.FromContext(ctx, "append log entry"); err != nil {
		return domain.LogEntry{}, err
	}
	if err := s.entries.ValidateEntry(entry); err != nil {
		return domain.LogEntry{}, wrapValidation(err)
	}
	if entry.ID == "" {
		entry.ID = domain.NewID()
	}

	s.mu.Lock()
	i := s.taskIndex(taskID)
	if i < 0 {
		s.mu.Unlock()
		return domain.LogEntry{}, errors.NewNotFoundError("task", taskID)
	}
	s.tasks[i].TimeLogs = append(s.tasks[i].TimeLogs, entry)
	s.persistLocked(ctx, Change{Tasks: true})
	s.mu.Unlock()

	s.notify(Change{Tasks: true})
	return entry, nil
}

// EditLogEntry replaces the duration of the entry at index. The value is
// rounded up to whole billing units before it is stored.
func (s *Store) EditLogEntry(ctx context.Context, taskID string, index int, durationSeconds int64) (domain.LogEntry, error) {
	if err := errors.FromContext(ctx, "edit log entry"); err != nil {
		return domain.LogEntry{}, err
	}

	s.mu.Lock()
	i, err := s.logIndexLocked(taskID, index)
	if err != nil {
		s.mu.Unlock()
		return domain.LogEntry{}, err
	}
	s.tasks[i].TimeLogs[index].Duration = rounding.RoundElapsed(durationSeconds)
	edited := s.tasks[i].TimeLogs[index]
	s.persistLocked(ctx, Change{Tasks: true})
	s.mu.Unlock()

	s.notify(Change{Tasks: true})
	return edited, nil
}

// DeleteLogEntry removes the entry at index; later entries move down by one.
func (s *Store) DeleteLogEntry(ctx context.Context, taskID string, index int) (domain.LogEntry, error) {
	if err := errors.FromContext(ctx, "delete log entry"); err != nil {
		return domain.LogEntry{}, err
	}

	s.mu.Lock()
	i, err := s.logIndexLocked(taskID, index)
	if err != nil {
		s.mu.Unlock()
		return domain.LogEntry{}, err
	}
	logs := s.tasks[i].TimeLogs
	removed := logs[index]
	s.tasks[i].TimeLogs = append(logs[:index:index], logs[index+1:]...)
	s.persistLocked(ctx, Change{Tasks: true})
	s.mu.Unlock()

	s.notify(Change{Tasks: true})
	return removed, nil
}

// Projects returns all projects in creation order.
func (s *Store) Projects() []domain.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Project(nil), s.projects...)
}

// Project looks up a project by id.
func (s *Store) Project(id string) (domain.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.projectIndex(id); i >= 0 {
		return s.projects[i], true
	}
	return domain.Project{}, false
}

// Tasks returns copies of all tasks in creation order.
func (s *Store) Tasks() []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTasks(s.tasks, func(domain.Task) bool { return true })
}

// Task looks up a task by id.
func (s *Store) Task(id string) (domain.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.taskIndex(id); i >= 0 {
		return s.tasks[i].Clone(), true
	}
	return domain.Task{}, false
}

// TasksForProject returns copies of the tasks belonging to projectID.
func (s *Store) TasksForProject(projectID string) []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTasks(s.tasks, func(t domain.Task) bool { return t.ProjectID == projectID })
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (s *Store) Subscribe(fn Observer) func() {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// PersistErr returns the error from the most recent write to the
// repository, or nil if it succeeded.
func (s *Store) PersistErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist
}

// persistLocked rewrites the blobs named by change. Failures are kept for
// PersistErr and never undo the in-memory mutation.
func (s *Store) persistLocked(ctx context.Context, change Change) {
	var firstErr error
	if change.Projects {
		if err := s.writeLocked(ctx, repository.KeyProjects, func() ([]byte, error) { return encodeProjects(s.projects) }); err != nil {
			firstErr = err
		}
	}
	if change.Tasks {
		if err := s.writeLocked(ctx, repository.KeyTasks, func() ([]byte, error) { return encodeTasks(s.tasks) }); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.persist = firstErr
}

func (s *Store) writeLocked(ctx context.Context, key string, encode func() ([]byte, error)) error {
	blob, err := encode()
	if err == nil {
		err = s.repo.Put(ctx, key, blob)
	}
	if err != nil {
		if !errors.IsAppError(err) {
			err = errors.NewDatabaseError("persist "+key, err)
		}
		s.logger.Warn("failed to persist collection, keeping in-memory state", "key", key, "error", err)
		return err
	}
	return nil
}

func (s *Store) notify(change Change) {
	s.mu.Lock()
	observers := make([]Observer, 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn(change)
	}
}

func (s *Store) cleanName(field string, name string) (string, error) {
	clean, err := s.names.CleanName(field, name)
	if err != nil {
		return "", wrapValidation(err)
	}
	return clean, nil
}

func (s *Store) projectIndex(id string) int {
	for i, p := range s.projects {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) taskIndex(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) logIndexLocked(taskID string, index int) (int, error) {
	i := s.taskIndex(taskID)
	if i < 0 {
		return -1, errors.NewNotFoundError("task", taskID)
	}
	if err := s.entries.ValidateIndex(index, len(s.tasks[i].TimeLogs)); err != nil {
		return -1, errors.NewOutOfRangeError("log entry", index, len(s.tasks[i].TimeLogs))
	}
	return i, nil
}

func cloneTasks(tasks []domain.Task, keep func(domain.Task) bool) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if keep(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}

func wrapValidation(err error) error {
	if ve, ok := err.(*validation.ValidationError); ok {
		return errors.NewValidationError(ve.GetUserFriendlyMessage(), ve)
	}
	return errors.NewValidationError(err.Error(), err)
}
