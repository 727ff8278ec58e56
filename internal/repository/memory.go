package repository

import (
	"context"
	"sync"

	"chronotrakr/internal/errors"
)

// MemoryRepository is a Repository backed by a map. It is used by tests and
// by the testing environment.
type MemoryRepository struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: make(map[string][]byte)}
}

func (m *MemoryRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := errors.FromContext(ctx, "get "+key); err != nil {
		return nil, false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, false, errors.NewDatabaseError("get "+key, errClosed)
	}

	value, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (m *MemoryRepository) Put(ctx context.Context, key string, value []byte) error {
	if err := errors.FromContext(ctx, "put "+key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errors.NewDatabaseError("put "+key, errClosed)
	}

	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryRepository) Delete(ctx context.Context, key string) error {
	if err := errors.FromContext(ctx, "delete "+key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errors.NewDatabaseError("delete "+key, errClosed)
	}

	delete(m.data, key)
	return nil
}

// Close marks the repository closed; later calls fail with a database error.
func (m *MemoryRepository) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

var errClosed = errors.NewInvalidStateError("use repository", "repository is closed")
