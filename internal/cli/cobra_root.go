package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"chronotrakr/internal/api"
	"chronotrakr/internal/config"
	"chronotrakr/internal/logging"
)

// Bootstrap opens storage for the loaded configuration and returns the API
// together with a function that releases it
type Bootstrap func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (api.BusinessAPI, func() error, error)

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd        *cobra.Command
	bootstrap  Bootstrap
	appOptions []AppOption
	app        *App
	config     *config.Config
	closer     func() error
	configFile string
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand(bootstrap Bootstrap, opts ...AppOption) *RootCommand {
	root := &RootCommand{
		bootstrap:  bootstrap,
		appOptions: opts,
	}

	root.cmd = &cobra.Command{
		Use:   "ct",
		Short: "A command-line time tracker with billing-unit rounding",
		Long: `ChronoTrakr (ct) tracks time spent on tasks grouped by project.

Every tracked session is rounded up to whole 30 minute billing units before
it is logged, and per-project totals can be exported as plain text invoices.

EXAMPLES:
  ct project add "Acme"                      # Create a project
  ct task add "Design review" --project Acme # Create a task in it
  ct track "Design review"                   # Time the task, press s to stop
  ct log list "Design review"                # Show logged entries
  ct log edit "Design review" 2 00:45:00     # Correct entry 2 (bills 01:00)
  ct project list                            # Totals per project
  ct invoice Acme --out ./invoices           # Write invoice-Acme.txt

REFERENCES:
  Projects and tasks may be given by id, a unique id prefix of at least
  4 characters, or their name (case-insensitive).

CONFIGURATION:
  Configuration follows this priority order:
  command-line flags > environment variables > config file > defaults

  Config file:
    CT_CONFIG                              YAML file (default: <db dir>/config.yaml)

  Database Configuration:
    CT_DB_DIR                              Database directory (default: ~/.chronotrakr)
    CT_DB_FILENAME                         Database filename (default: ct.db)
    CT_DB_QUERY_TIMEOUT                    Query timeout (default: 10s)
    CT_DB_WRITE_TIMEOUT                    Write timeout (default: 5s)

  Display Configuration:
    CT_DISPLAY_TIME_FORMAT                 Time format (default: 2006-01-02 15:04)
    CT_DISPLAY_COLOR                       auto, always or never (default: auto)
    CT_DISPLAY_TICK_INTERVAL               Live clock refresh (default: 1s)

  Validation Configuration:
    CT_VALIDATION_NAME_MIN                 Min name length (default: 1)
    CT_VALIDATION_NAME_MAX                 Max name length (default: 255)

  Application Configuration:
    CT_INVOICE_DIR                         Invoice output directory (default: .)
    CT_APP_TIMEOUT                         Application timeout (default: 60s)
    CT_APP_VERBOSE                         Enable verbose output (default: false)
    CT_LOG_LEVEL                           DEBUG, INFO, WARN or ERROR (default: WARN)
    CT_ENV                                 development, testing or production`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.setup(cmd)
		},
	}

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Command returns the underlying cobra command
func (r *RootCommand) Command() *cobra.Command {
	return r.cmd
}

// Execute runs the root command and releases storage afterwards
func (r *RootCommand) Execute(ctx context.Context) error {
	err := r.cmd.ExecuteContext(ctx)
	if closeErr := r.close(); err == nil {
		err = closeErr
	}
	return err
}

func (r *RootCommand) close() error {
	if r.closer == nil {
		return nil
	}
	closer := r.closer
	r.closer = nil
	return closer()
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.StringVar(&r.configFile, "config", "", "YAML configuration file (overrides CT_CONFIG)")

	// Database configuration
	flags.String("db-dir", "", "Database directory (overrides CT_DB_DIR)")
	flags.String("db-filename", "", "Database filename (overrides CT_DB_FILENAME)")
	flags.Duration("db-query-timeout", 0, "Database query timeout (overrides CT_DB_QUERY_TIMEOUT)")
	flags.Duration("db-write-timeout", 0, "Database write timeout (overrides CT_DB_WRITE_TIMEOUT)")

	// Validation configuration
	flags.Int("name-min-length", 0, "Minimum project and task name length (overrides CT_VALIDATION_NAME_MIN)")
	flags.Int("name-max-length", 0, "Maximum project and task name length (overrides CT_VALIDATION_NAME_MAX)")

	// Display configuration
	flags.String("time-format", "", "Time display format (overrides CT_DISPLAY_TIME_FORMAT)")
	flags.String("color", "", "Colour output: auto, always or never (overrides CT_DISPLAY_COLOR)")
	flags.Duration("tick-interval", 0, "Live clock refresh interval (overrides CT_DISPLAY_TICK_INTERVAL)")

	// Invoice configuration
	flags.String("invoice-dir", "", "Invoice output directory (overrides CT_INVOICE_DIR)")

	// Application configuration
	flags.Duration("app-timeout", 0, "Application timeout (overrides CT_APP_TIMEOUT)")
	flags.Bool("verbose", false, "Enable verbose output (overrides CT_APP_VERBOSE)")
	flags.String("log-level", "", "Log level (overrides CT_LOG_LEVEL)")
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	r.cmd.AddCommand(
		r.projectCommand(),
		r.taskCommand(),
		r.logCommand(),
		r.trackCommand(),
		r.invoiceCommand(),
	)
}

func (r *RootCommand) projectCommand() *cobra.Command {
	projectCmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	projectCmd.AddCommand(
		&cobra.Command{
			Use:   "add <name>",
			Short: "Create a project",
			Args:  cobra.ExactArgs(1),
			RunE: r.withTimeout(func(ctx context.Context, args []string) error {
				return NewProjectCommand(r.app).Add(ctx, args)
			}),
		},
		&cobra.Command{
			Use:   "rename <project> <name>",
			Short: "Rename a project",
			Args:  cobra.ExactArgs(2),
			RunE: r.withTimeout(func(ctx context.Context, args []string) error {
				return NewProjectCommand(r.app).Rename(ctx, args)
			}),
		},
		&cobra.Command{
			Use:   "delete <project>",
			Short: "Delete a project and all of its tasks",
			Long: `Delete a project together with every task and log entry in it.

This operation cannot be undone.`,
			Args: cobra.ExactArgs(1),
			RunE: r.withTimeout(func(ctx context.Context, args []string) error {
				return NewProjectCommand(r.app).Delete(ctx, args)
			}),
		},
		&cobra.Command{
			Use:   "list",
			Short: "List projects with their billed totals",
			Args:  cobra.NoArgs,
			RunE: r.withTimeout(func(ctx context.Context, args []string) error {
				return NewProjectCommand(r.app).List(ctx, args)
			}),
		},
	)
	return projectCmd
}

func (r *RootCommand) taskCommand() *cobra.Command {
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}

	var addProject string
	addCmd := &cobra.Command{
		Use:   "add <name> --project <project>",
		Short: "Create a task in a project",
		Args:  cobra.ExactArgs(1),
		RunE: r.withTimeout(func(ctx context.Context, args []string) error {
			return NewTaskCommand(r.app).Add(ctx, args, addProject)
		}),
	}
	addCmd.Flags().StringVarP(&addProject, "project", "p", "", "Project the task belongs to")
	_ = addCmd.MarkFlagRequired("project")

	var listProject string
	listCmd := &cobra.Command{
		Use:   "list [filter]",
		Short: "List tasks with their billed totals",
		Long: `List tasks ordered by name. An optional filter matches task names
(case-insensitive partial matching).

Examples:
  ct task list                     # All tasks
  ct task list --project Acme      # Tasks in Acme
  ct task list review              # Tasks containing "review"`,
		RunE: r.withTimeout(func(ctx context.Context, args []string) error {
			return NewTaskCommand(r.app).List(ctx, args, listProject)
		}),
	}
	listCmd.Flags().StringVarP(&listProject, "project", "p", "", "Only list tasks in this project")

	taskCmd.AddCommand(
		addCmd,
		&cobra.Command{
			Use:   "rename <task> <name>",
			Short: "Rename a task",
			Args:  cobra.ExactArgs(2),
			RunE: r.withTimeout(func(ctx context.Context, args []string) error {
				return NewTaskCommand(r.app).Rename(ctx, args)
			}),
		},
		&cobra.Command{
			Use:   "delete <task>",
			Short: "Delete a task and its log entries",
			Args:  cobra.ExactArgs(1),
			RunE: r.withTimeout(func(ctx context.Context, args []string) error {
				return NewTaskCommand(r.app).Delete(ctx, args)
			}),
		},
		listCmd,
	)
	return taskCmd
}

func (r *RootCommand) logCommand() *cobra.Command {
	logCmd := &cobra.Command{
		Use:   "log",
		Short: "Inspect and correct logged time",
	}

	logCmd.AddCommand(
		&cobra.Command{
			Use:   "list <task>",
			Short: "List the log entries of a task",
			Args:  cobra.ExactArgs(1),
			RunE: r.withTimeout(func(ctx context.Context, args []string) error {
				return NewLogCommand(r.app).List(ctx, args)
			}),
		},
		&cobra.Command{
			Use:   "edit <task> <n> <HH:MM:SS>",
			Short: "Replace the duration of entry n",
			Long: `Replace the duration of entry n (as numbered by "ct log list").

The new duration is rounded up to whole 30 minute billing units: anything
up to 00:30:00 bills as 00:30, 00:45:00 bills as 01:00.`,
			Args: cobra.ExactArgs(3),
			RunE: r.withTimeout(func(ctx context.Context, args []string) error {
				return NewLogCommand(r.app).Edit(ctx, args)
			}),
		},
		&cobra.Command{
			Use:   "delete <task> <n>",
			Short: "Delete entry n; later entries move up",
			Args:  cobra.ExactArgs(2),
			RunE: r.withTimeout(func(ctx context.Context, args []string) error {
				return NewLogCommand(r.app).Delete(ctx, args)
			}),
		},
	)
	return logCmd
}

func (r *RootCommand) trackCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "track <task>",
		Short: "Time a task with a live clock",
		Long: `Start the timer for a task and show the elapsed time.

Press s, enter or q to stop. The session is rounded up to whole 30 minute
billing units and appended to the task's log. Without a terminal the
command waits for a line on stdin, end of input or an interrupt.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Tracking lasts as long as the user wants, so no app timeout.
			return NewTrackCommand(r.app).Execute(cmd.Context(), args)
		},
	}
}

func (r *RootCommand) invoiceCommand() *cobra.Command {
	var opts InvoiceOptions
	invoiceCmd := &cobra.Command{
		Use:   "invoice <project>",
		Short: "Export the billed total of a project",
		Long: `Write a plain text invoice for a project:

  Invoice for <project>
  Total Time: HH:MM

The file is named invoice-<project>.txt with spaces replaced by dashes.`,
		Args: cobra.ExactArgs(1),
		RunE: r.withTimeout(func(ctx context.Context, args []string) error {
			return NewInvoiceCommand(r.app).Execute(ctx, args, opts)
		}),
	}
	invoiceCmd.Flags().StringVarP(&opts.OutDir, "out", "o", "", "Output directory (overrides CT_INVOICE_DIR)")
	invoiceCmd.Flags().BoolVar(&opts.Stdout, "stdout", false, "Print the invoice instead of writing a file")
	return invoiceCmd
}

// withTimeout bounds a command by the configured application timeout
func (r *RootCommand) withTimeout(fn func(ctx context.Context, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), r.getAppTimeout())
		defer cancel()
		return fn(ctx, args)
	}
}

// getAppTimeout returns the configured application timeout
func (r *RootCommand) getAppTimeout() time.Duration {
	if r.config != nil && r.config.Application.Timeout > 0 {
		return r.config.Application.Timeout
	}
	return 60 * time.Second
}

// setup loads configuration, applies flag overrides and opens storage
func (r *RootCommand) setup(cmd *cobra.Command) error {
	if r.bootstrap == nil {
		return fmt.Errorf("no storage bootstrap configured")
	}

	loader := config.NewLoader()
	if r.configFile != "" {
		loader.WithConfigFile(r.configFile)
	}
	cfg, err := loader.LoadWithOverrides(r.getOverridesFromFlags())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	r.config = cfg

	level := cfg.Application.LogLevel
	if cfg.Application.Verbose && logging.ParseLevel(level) > slog.LevelInfo {
		level = logging.LevelInfo
	}
	logger := logging.New(cmd.ErrOrStderr(), level)

	businessAPI, closer, err := r.bootstrap(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	r.closer = closer

	opts := []AppOption{
		WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()),
		WithInput(cmd.InOrStdin()),
		WithLogger(logger),
	}
	r.app = NewAppWithConfig(businessAPI, cfg, append(opts, r.appOptions...)...)
	return nil
}

// getOverridesFromFlags collects the global flags the user actually set
func (r *RootCommand) getOverridesFromFlags() *config.ConfigOverrides {
	flags := r.cmd.PersistentFlags()
	overrides := &config.ConfigOverrides{}

	if flags.Changed("db-dir") {
		v, _ := flags.GetString("db-dir")
		overrides.DBDir = &v
	}
	if flags.Changed("db-filename") {
		v, _ := flags.GetString("db-filename")
		overrides.DBFilename = &v
	}
	if flags.Changed("db-query-timeout") {
		v, _ := flags.GetDuration("db-query-timeout")
		overrides.DBQueryTimeout = &v
	}
	if flags.Changed("db-write-timeout") {
		v, _ := flags.GetDuration("db-write-timeout")
		overrides.DBWriteTimeout = &v
	}

	if flags.Changed("name-min-length") {
		v, _ := flags.GetInt("name-min-length")
		overrides.NameMinLength = &v
	}
	if flags.Changed("name-max-length") {
		v, _ := flags.GetInt("name-max-length")
		overrides.NameMaxLength = &v
	}

	if flags.Changed("time-format") {
		v, _ := flags.GetString("time-format")
		overrides.TimeFormat = &v
	}
	if flags.Changed("color") {
		v, _ := flags.GetString("color")
		overrides.Color = &v
	}
	if flags.Changed("tick-interval") {
		v, _ := flags.GetDuration("tick-interval")
		overrides.TickInterval = &v
	}

	if flags.Changed("invoice-dir") {
		v, _ := flags.GetString("invoice-dir")
		overrides.InvoiceDir = &v
	}

	if flags.Changed("app-timeout") {
		v, _ := flags.GetDuration("app-timeout")
		overrides.Timeout = &v
	}
	if flags.Changed("verbose") {
		v, _ := flags.GetBool("verbose")
		overrides.Verbose = &v
	}
	if flags.Changed("log-level") {
		v, _ := flags.GetString("log-level")
		overrides.LogLevel = &v
	}

	return overrides
}
