package cli

import (
	"context"
	"fmt"
	"strconv"

	"chronotrakr/internal/api"
	"chronotrakr/internal/errors"
	"chronotrakr/internal/services"
)

// LogCommand handles the log entry subcommands. Entries are numbered from 1
// on the command line.
type LogCommand struct {
	app          *App
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
}

// NewLogCommand creates a new log command handler
func NewLogCommand(app *App) *LogCommand {
	return &LogCommand{
		app:          app,
		businessAPI:  app.businessAPI,
		errorHandler: NewErrorHandler(app.logger),
	}
}

// List runs "log list <task>"
func (c *LogCommand) List(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("command", "log list", "usage: ct log list <task>")
	}

	entries, err := c.businessAPI.ListLogEntries(ctx, args[0])
	if err != nil {
		return c.errorHandler.Handle("list log entries", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(c.app.out, "No time logged yet")
		return nil
	}

	var total int64
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		total += e.Entry.Duration
		rows = append(rows, []string{strconv.Itoa(e.Index + 1), e.Start, e.End, e.Duration})
	}
	fmt.Fprint(c.app.out, c.app.styles.RenderTable([]string{"#", "START", "END", "DURATION"}, rows))
	fmt.Fprintf(c.app.out, "%d entries, %s billed\n", len(entries), services.FormatHoursMinutes(total))
	return nil
}

// Edit runs "log edit <task> <n> <HH:MM:SS>"
func (c *LogCommand) Edit(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return errors.NewInvalidInputError("command", "log edit", "usage: ct log edit <task> <n> <HH:MM:SS>")
	}
	index, err := parseIndex(args[1])
	if err != nil {
		return c.errorHandler.Handle("edit log entry", err)
	}

	edited, err := c.businessAPI.EditLogEntry(ctx, args[0], index, args[2])
	if err != nil {
		return c.errorHandler.Handle("edit log entry", c.numbered(err, index))
	}
	fmt.Fprintf(c.app.out, "Entry %d is now %s\n", edited.Index+1, edited.Duration)
	c.app.warnOnPersistFailure()
	return nil
}

// Delete runs "log delete <task> <n>"
func (c *LogCommand) Delete(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.NewInvalidInputError("command", "log delete", "usage: ct log delete <task> <n>")
	}
	index, err := parseIndex(args[1])
	if err != nil {
		return c.errorHandler.Handle("delete log entry", err)
	}

	removed, err := c.businessAPI.DeleteLogEntry(ctx, args[0], index)
	if err != nil {
		return c.errorHandler.Handle("delete log entry", c.numbered(err, index))
	}
	fmt.Fprintf(c.app.out, "Deleted entry %d (%s)\n", removed.Index+1, removed.Duration)
	c.app.warnOnPersistFailure()
	return nil
}

// numbered restates an out-of-range error with the 1-based entry number
func (c *LogCommand) numbered(err error, index int) error {
	appErr, ok := errors.AsAppError(err)
	if !ok || !appErr.IsType(errors.ErrorTypeOutOfRange) {
		return err
	}
	length, _ := appErr.GetContext("length")
	return errors.NewInvalidInputError("index", index+1, fmt.Sprintf("no entry %d, the task has %v entries", index+1, length))
}
