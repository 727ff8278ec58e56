// Package timer runs the single active stopwatch. Stopping it turns the
// elapsed wall-clock time into a rounded log entry on the task.
package timer

import (
	"context"
	"sync"
	"time"

	"chronotrakr/internal/domain"
	"chronotrakr/internal/errors"
	"chronotrakr/internal/logging"
	"chronotrakr/internal/rounding"
)

// State of the timer.
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Appender commits a finished log entry to a task. *store.Store satisfies it.
// It is called with the timer locked, so it must not call back into the Timer.
type Appender interface {
	AppendLogEntry(ctx context.Context, taskID string, entry domain.LogEntry) (domain.LogEntry, error)
}

// Active describes the running timer.
type Active struct {
	TaskID    string
	StartTime time.Time
}

// Option configures a Timer.
type Option func(*Timer)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Timer) {
		if now != nil {
			t.now = now
		}
	}
}

// Timer is Idle or Running for exactly one task.
type Timer struct {
	mu         sync.Mutex
	appender   Appender
	now        func() time.Time
	active     *Active
	generation uint64
}

// New creates an idle timer that commits entries through appender.
func New(appender Appender, opts ...Option) *Timer {
	t := &Timer{appender: appender, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start begins timing taskID. It fails while another timer is running;
// use Switch to stop the running one first.
func (t *Timer) Start(taskID string) (Active, error) {
	if taskID == "" {
		return Active{}, errors.NewValidationError("a task is required to start the timer", nil)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active != nil {
		return Active{}, errors.NewInvalidStateError("start timer", "a timer is already running for task "+t.active.TaskID).
			WithContext("running_task_id", t.active.TaskID)
	}

	t.generation++
	t.active = &Active{TaskID: taskID, StartTime: t.now()}
	logging.Debugf("timer: started task %s\n", taskID)
	return *t.active, nil
}

// Stop ends the timer for taskID and appends the rounded entry. Calling it
// for a task that is not running does nothing and returns a nil entry. If
// the append fails the timer keeps running.
func (t *Timer) Stop(ctx context.Context, taskID string) (*domain.LogEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopLocked(ctx, taskID)
}

// Switch stops whatever is running, committing its entry, and starts
// taskID. The returned entry is nil when nothing was running.
func (t *Timer) Switch(ctx context.Context, taskID string) (*domain.LogEntry, Active, error) {
	if taskID == "" {
		return nil, Active{}, errors.NewValidationError("a task is required to start the timer", nil)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var stopped *domain.LogEntry
	if t.active != nil {
		if t.active.TaskID == taskID {
			return nil, *t.active, nil
		}
		entry, err := t.stopLocked(ctx, t.active.TaskID)
		if err != nil {
			return nil, Active{}, err
		}
		stopped = entry
	}

	t.generation++
	t.active = &Active{TaskID: taskID, StartTime: t.now()}
	return stopped, *t.active, nil
}

// Discard drops the running timer for taskID without logging anything.
func (t *Timer) Discard(taskID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active == nil || t.active.TaskID != taskID {
		return false
	}
	t.active = nil
	t.generation++
	logging.Debugf("timer: discarded task %s\n", taskID)
	return true
}

// Active returns the running timer, if any.
func (t *Timer) Active() (Active, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active == nil {
		return Active{}, false
	}
	return *t.active, true
}

// State reports Idle or Running.
func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active == nil {
		return Idle
	}
	return Running
}

// Elapsed returns the unrounded time since start, or zero when idle.
func (t *Timer) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsedLocked()
}

// Tick calls fn with the elapsed time every interval for as long as the
// current run lasts. It returns when the timer is stopped, discarded or
// switched, or when ctx is done. Tick never changes stored state.
//
// fn runs with the timer locked, so no call is made after Stop, Switch or
// Discard returns. fn must not call back into the Timer.
func (t *Timer) Tick(ctx context.Context, interval time.Duration, fn func(time.Duration)) error {
	t.mu.Lock()
	if t.active == nil {
		t.mu.Unlock()
		return errors.NewInvalidStateError("tick", "no timer is running")
	}
	generation := t.generation
	t.mu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			t.mu.Lock()
			if t.generation != generation || t.active == nil {
				t.mu.Unlock()
				return nil
			}
			fn(t.elapsedLocked())
			t.mu.Unlock()
		}
	}
}

func (t *Timer) stopLocked(ctx context.Context, taskID string) (*domain.LogEntry, error) {
	if t.active == nil || t.active.TaskID != taskID {
		return nil, nil
	}

	end := t.now()
	elapsed := rounding.ElapsedSeconds(t.active.StartTime, end)
	entry := domain.NewLogEntry(t.active.StartTime, end, rounding.RoundElapsed(elapsed))

	committed, err := t.appender.AppendLogEntry(ctx, taskID, entry)
	if err != nil {
		return nil, err
	}

	t.active = nil
	t.generation++
	logging.Debugf("timer: stopped task %s after %ds, logged %ds\n", taskID, elapsed, committed.Duration)
	return &committed, nil
}

func (t *Timer) elapsedLocked() time.Duration {
	if t.active == nil {
		return 0
	}
	if d := t.now().Sub(t.active.StartTime); d > 0 {
		return d
	}
	return 0
}
