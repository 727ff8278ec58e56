package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"chronotrakr/internal/api"
	"chronotrakr/internal/domain"
	"chronotrakr/internal/errors"
	"chronotrakr/internal/services"
)

const defaultTickInterval = time.Second

// TrackCommand handles the track command: start the timer for a task, wait
// for the user to stop it, then log the rounded entry
type TrackCommand struct {
	app          *App
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
}

// NewTrackCommand creates a new track command handler
func NewTrackCommand(app *App) *TrackCommand {
	return &TrackCommand{
		app:          app,
		businessAPI:  app.businessAPI,
		errorHandler: NewErrorHandler(app.logger),
	}
}

// Execute runs the track command
func (c *TrackCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("command", "track", "usage: ct track <task>")
	}

	session, err := c.businessAPI.StartTask(ctx, args[0])
	if err != nil {
		return c.errorHandler.Handle("start tracking", err)
	}
	c.app.logger.Info("timer started", "task", session.Task.Name, "project", session.Project.Name)

	var entry *domain.LogEntry
	if c.app.isInteractive() {
		entry, err = c.runInteractive(ctx, session)
	} else {
		err = c.waitHeadless(ctx, session)
	}
	if err != nil {
		c.app.logger.Warn("track view ended with an error", "error", err)
	}

	if entry == nil {
		entry, err = c.businessAPI.StopTask(ctx, session.Task.ID)
		if err != nil {
			return c.errorHandler.Handle("stop tracking", err)
		}
	}
	if entry == nil {
		fmt.Fprintln(c.app.out, "Timer was already stopped, nothing logged")
		return nil
	}

	fmt.Fprintf(c.app.out, "Logged %s to %s %s\n",
		services.FormatHoursMinutes(entry.Duration),
		session.Task.Name,
		c.app.styles.Dim.Render("(tracked "+c.businessAPI.FormatElapsed(entry.Elapsed())+")"))
	c.app.warnOnPersistFailure()
	return nil
}

// runInteractive shows the live clock until a stop key is pressed
func (c *TrackCommand) runInteractive(ctx context.Context, session *services.TaskSession) (*domain.LogEntry, error) {
	model := newTrackModel(ctx, c.businessAPI, c.app.styles, session, c.tickInterval())
	program := tea.NewProgram(model, tea.WithInput(c.app.in), tea.WithOutput(c.app.out))

	final, err := program.Run()
	m, ok := final.(trackModel)
	if !ok {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.stopped, err
}

// waitHeadless blocks until a line or EOF arrives on the input, or the
// process is interrupted. Elapsed time is reported at debug level. The
// tick has returned by the time waitHeadless does.
func (c *TrackCommand) waitHeadless(ctx context.Context, session *services.TaskSession) error {
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(c.app.out, "Tracking %s (%s). Press Enter to stop.\n", session.Task.Name, session.Project.Name)

	lines := make(chan struct{}, 1)
	go func() {
		_, _ = bufio.NewReader(c.app.in).ReadString('\n')
		lines <- struct{}{}
	}()

	tickCtx, cancelTick := context.WithCancel(sigCtx)
	defer cancelTick()
	ticks := make(chan error, 1)
	go func() {
		ticks <- c.businessAPI.Tick(tickCtx, c.tickInterval(), func(elapsed time.Duration) {
			c.app.logger.Debug("tracking", "task", session.Task.Name, "elapsed", c.businessAPI.FormatElapsed(elapsed))
		})
	}()

	select {
	case <-lines:
	case <-sigCtx.Done():
	case err := <-ticks:
		// The run ended before the user stopped it.
		return err
	}

	cancelTick()
	<-ticks
	return nil
}

func (c *TrackCommand) tickInterval() time.Duration {
	if c.app.config.Display.TickInterval > 0 {
		return c.app.config.Display.TickInterval
	}
	return defaultTickInterval
}
