package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Project groups tasks for billing. Tasks reference it by ID.
type Project struct {
	ID   string
	Name string
}

// NewProject creates a Project with a fresh unique ID.
func NewProject(name string) Project {
	return Project{
		ID:   NewID(),
		Name: name,
	}
}

// IsValid checks if the project has an ID and a non-blank name.
func (p Project) IsValid() bool {
	return p.ID != "" && strings.TrimSpace(p.Name) != ""
}

// String returns the project name for display purposes.
func (p Project) String() string {
	return p.Name
}

// NewID returns a new opaque identifier.
func NewID() string {
	return uuid.New().String()
}
