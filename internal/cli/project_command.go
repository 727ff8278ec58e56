package cli

import (
	"context"
	"fmt"
	"strconv"

	"chronotrakr/internal/api"
	"chronotrakr/internal/errors"
)

// ProjectCommand handles the project subcommands
type ProjectCommand struct {
	app          *App
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
}

// NewProjectCommand creates a new project command handler
func NewProjectCommand(app *App) *ProjectCommand {
	return &ProjectCommand{
		app:          app,
		businessAPI:  app.businessAPI,
		errorHandler: NewErrorHandler(app.logger),
	}
}

// Add runs "project add <name>"
func (c *ProjectCommand) Add(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("command", "project add", "usage: ct project add <name>")
	}

	project, err := c.businessAPI.AddProject(ctx, args[0])
	if err != nil {
		return c.errorHandler.Handle("add project", err)
	}
	fmt.Fprintf(c.app.out, "Added project %s %s\n", project.Name, c.app.styles.Dim.Render("("+shortID(project.ID)+")"))
	c.app.warnOnPersistFailure()
	return nil
}

// Rename runs "project rename <project> <name>"
func (c *ProjectCommand) Rename(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.NewInvalidInputError("command", "project rename", "usage: ct project rename <project> <name>")
	}

	project, err := c.businessAPI.RenameProject(ctx, args[0], args[1])
	if err != nil {
		return c.errorHandler.Handle("rename project", err)
	}
	fmt.Fprintf(c.app.out, "Project is now %s\n", project.Name)
	c.app.warnOnPersistFailure()
	return nil
}

// Delete runs "project delete <project>"
func (c *ProjectCommand) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("command", "project delete", "usage: ct project delete <project>")
	}

	project, err := c.businessAPI.DeleteProject(ctx, args[0])
	if err != nil {
		return c.errorHandler.Handle("delete project", err)
	}
	fmt.Fprintf(c.app.out, "Deleted project %s and its tasks\n", project.Name)
	c.app.warnOnPersistFailure()
	return nil
}

// List runs "project list"
func (c *ProjectCommand) List(ctx context.Context, args []string) error {
	summaries, err := c.businessAPI.ListProjects(ctx)
	if err != nil {
		return c.errorHandler.Handle("list projects", err)
	}
	if len(summaries) == 0 {
		fmt.Fprintln(c.app.out, "No projects yet. Add one with: ct project add <name>")
		return nil
	}

	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Project.Name,
			strconv.Itoa(s.TaskCount),
			s.TotalTime,
			c.app.styles.Dim.Render(shortID(s.Project.ID)),
		})
	}
	fmt.Fprint(c.app.out, c.app.styles.RenderTable([]string{"PROJECT", "TASKS", "TOTAL", "ID"}, rows))
	return nil
}
