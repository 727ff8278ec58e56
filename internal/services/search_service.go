package services

import (
	"sort"
	"strings"

	"chronotrakr/internal/domain"
	"chronotrakr/internal/errors"
)

// MinIDPrefixLength is the shortest id prefix accepted as a reference
const MinIDPrefixLength = 4

// searchServiceImpl implements the SearchService interface
type searchServiceImpl struct {
	store StoreReader
}

// NewSearchService creates a new SearchService instance
func NewSearchService(store StoreReader) SearchService {
	return &searchServiceImpl{store: store}
}

// ResolveProject finds a project by exact id, case-insensitive name or
// unique id prefix, in that order
func (s *searchServiceImpl) ResolveProject(ref string) (domain.Project, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return domain.Project{}, errors.NewInvalidInputError("project", ref, "a project reference is required")
	}

	projects := s.store.Projects()
	ids := make([]string, len(projects))
	names := make([]string, len(projects))
	for i, p := range projects {
		ids[i], names[i] = p.ID, p.Name
	}

	i, err := resolve("project", ref, ids, names)
	if err != nil {
		return domain.Project{}, err
	}
	return projects[i], nil
}

// ResolveTask finds a task the same way as ResolveProject. A non-empty
// projectID restricts the candidates to that project.
func (s *searchServiceImpl) ResolveTask(ref string, projectID string) (domain.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return domain.Task{}, errors.NewInvalidInputError("task", ref, "a task reference is required")
	}

	tasks := s.store.Tasks()
	if projectID != "" {
		tasks = s.store.TasksForProject(projectID)
	}
	ids := make([]string, len(tasks))
	names := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i], names[i] = t.ID, t.Name
	}

	i, err := resolve("task", ref, ids, names)
	if err != nil {
		return domain.Task{}, err
	}
	return tasks[i], nil
}

// SearchTasks lists tasks matching the criteria, ordered by name
func (s *searchServiceImpl) SearchTasks(criteria SearchCriteria) []domain.Task {
	var tasks []domain.Task
	if criteria.ProjectID != "" {
		tasks = s.store.TasksForProject(criteria.ProjectID)
	} else {
		tasks = s.store.Tasks()
	}

	filter := strings.ToLower(strings.TrimSpace(criteria.TextFilter))
	matched := make([]domain.Task, 0, len(tasks))
	for _, task := range tasks {
		if filter == "" || strings.Contains(strings.ToLower(task.Name), filter) {
			matched = append(matched, task)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return strings.ToLower(matched[i].Name) < strings.ToLower(matched[j].Name)
	})
	return matched
}

// resolve returns the index of the single candidate matching ref
func resolve(resource string, ref string, ids []string, names []string) (int, error) {
	for i, id := range ids {
		if id == ref {
			return i, nil
		}
	}

	var byName []int
	for i, name := range names {
		if strings.EqualFold(name, ref) {
			byName = append(byName, i)
		}
	}
	switch len(byName) {
	case 1:
		return byName[0], nil
	case 0:
	default:
		return -1, ambiguous(resource, ref, len(byName))
	}

	if len(ref) >= MinIDPrefixLength {
		var byPrefix []int
		for i, id := range ids {
			if strings.HasPrefix(id, ref) {
				byPrefix = append(byPrefix, i)
			}
		}
		switch len(byPrefix) {
		case 1:
			return byPrefix[0], nil
		case 0:
		default:
			return -1, ambiguous(resource, ref, len(byPrefix))
		}
	}

	return -1, errors.NewNotFoundError(resource, ref)
}

func ambiguous(resource string, ref string, matches int) error {
	return errors.NewInvalidInputError(resource, ref, "reference is ambiguous, use the id instead").
		WithContext("matches", matches)
}
