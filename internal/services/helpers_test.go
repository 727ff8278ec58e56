package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chronotrakr/internal/domain"
	"chronotrakr/internal/repository"
	"chronotrakr/internal/store"
	"chronotrakr/internal/timer"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	store *store.Store
	timer *timer.Timer
	clock *testClock
	svc   *ServiceContainer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := store.New(repository.NewMemoryRepository())
	clock := &testClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	tm := timer.New(s, timer.WithClock(clock.Now))
	return &fixture{
		store: s,
		timer: tm,
		clock: clock,
		svc:   NewServiceContainer(s, tm, "2006-01-02 15:04"),
	}
}

func (f *fixture) project(t *testing.T, name string) domain.Project {
	t.Helper()
	p, err := f.store.AddProject(context.Background(), name)
	require.NoError(t, err)
	return p
}

func (f *fixture) task(t *testing.T, name string, projectID string, durations ...int64) domain.Task {
	t.Helper()
	ctx := context.Background()
	task, err := f.store.AddTask(ctx, name, projectID)
	require.NoError(t, err)
	for _, d := range durations {
		start := f.clock.Now()
		_, err := f.store.AppendLogEntry(ctx, task.ID, domain.LogEntry{Start: start, End: start, Duration: d})
		require.NoError(t, err)
	}
	task, _ = f.store.Task(task.ID)
	return task
}
