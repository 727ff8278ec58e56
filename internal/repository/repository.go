// Package repository defines the key/value persistence used to mirror the
// time log store. Each key holds one JSON-encoded collection.
package repository

import "context"

// Keys of the persisted collections.
const (
	KeyProjects = "projects"
	KeyTasks    = "tasks"
)

// Repository stores opaque blobs by key.
type Repository interface {
	// Get returns the value stored under key. The boolean is false when the
	// key has never been written.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Put replaces the value stored under key.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}
