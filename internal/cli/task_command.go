package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"chronotrakr/internal/api"
	"chronotrakr/internal/errors"
	"chronotrakr/internal/services"
)

// TaskCommand handles the task subcommands
type TaskCommand struct {
	app          *App
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
}

// NewTaskCommand creates a new task command handler
func NewTaskCommand(app *App) *TaskCommand {
	return &TaskCommand{
		app:          app,
		businessAPI:  app.businessAPI,
		errorHandler: NewErrorHandler(app.logger),
	}
}

// Add runs "task add <name> --project <project>"
func (c *TaskCommand) Add(ctx context.Context, args []string, projectRef string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("command", "task add", "usage: ct task add <name> --project <project>")
	}
	if strings.TrimSpace(projectRef) == "" {
		return errors.NewInvalidInputError("project", projectRef, "select a project with --project")
	}

	task, err := c.businessAPI.AddTask(ctx, args[0], projectRef)
	if err != nil {
		return c.errorHandler.Handle("add task", err)
	}
	fmt.Fprintf(c.app.out, "Added task %s %s\n", task.Name, c.app.styles.Dim.Render("("+shortID(task.ID)+")"))
	c.app.warnOnPersistFailure()
	return nil
}

// Rename runs "task rename <task> <name>"
func (c *TaskCommand) Rename(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.NewInvalidInputError("command", "task rename", "usage: ct task rename <task> <name>")
	}

	task, err := c.businessAPI.RenameTask(ctx, args[0], args[1])
	if err != nil {
		return c.errorHandler.Handle("rename task", err)
	}
	fmt.Fprintf(c.app.out, "Task is now %s\n", task.Name)
	c.app.warnOnPersistFailure()
	return nil
}

// Delete runs "task delete <task>"
func (c *TaskCommand) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("command", "task delete", "usage: ct task delete <task>")
	}

	task, err := c.businessAPI.DeleteTask(ctx, args[0])
	if err != nil {
		return c.errorHandler.Handle("delete task", err)
	}
	fmt.Fprintf(c.app.out, "Deleted task %s and %d log entries\n", task.Name, len(task.TimeLogs))
	c.app.warnOnPersistFailure()
	return nil
}

// List runs "task list [filter] [--project <project>]"
func (c *TaskCommand) List(ctx context.Context, args []string, projectRef string) error {
	filter := strings.Join(args, " ")
	summaries, err := c.businessAPI.ListTasks(ctx, projectRef, filter)
	if err != nil {
		return c.errorHandler.Handle("list tasks", err)
	}
	if len(summaries) == 0 {
		fmt.Fprintln(c.app.out, "No tasks found")
		return nil
	}

	projects, err := c.businessAPI.ListProjects(ctx)
	if err != nil {
		return c.errorHandler.Handle("list tasks", err)
	}
	names := make(map[string]string, len(projects))
	for _, p := range projects {
		names[p.Project.ID] = p.Project.Name
	}

	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Task.Name,
			projectName(names, s),
			strconv.Itoa(s.EntryCount),
			s.TotalTime,
			c.status(s),
			c.app.styles.Dim.Render(shortID(s.Task.ID)),
		})
	}
	fmt.Fprint(c.app.out, c.app.styles.RenderTable([]string{"TASK", "PROJECT", "ENTRIES", "TOTAL", "STATUS", "ID"}, rows))
	return nil
}

func (c *TaskCommand) status(s services.TaskSummary) string {
	if s.IsRunning {
		return c.app.styles.Running.Render("running")
	}
	return ""
}

func projectName(names map[string]string, s services.TaskSummary) string {
	if name, ok := names[s.Task.ProjectID]; ok {
		return name
	}
	return services.UnknownProjectName
}
