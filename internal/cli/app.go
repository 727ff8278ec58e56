package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"chronotrakr/internal/api"
	"chronotrakr/internal/config"
	"chronotrakr/internal/errors"
	"chronotrakr/internal/logging"
)

// App holds the dependencies shared by every command handler
type App struct {
	businessAPI   api.BusinessAPI
	config        *config.Config
	out           io.Writer
	errOut        io.Writer
	in            io.Reader
	logger        *slog.Logger
	styles        Styles
	isInteractive func() bool
}

// AppOption configures an App
type AppOption func(*App)

// WithOutput sets the writers for normal output and diagnostics
func WithOutput(out, errOut io.Writer) AppOption {
	return func(a *App) {
		if out != nil {
			a.out = out
		}
		if errOut != nil {
			a.errOut = errOut
		}
	}
}

// WithInput sets the reader used by interactive commands
func WithInput(in io.Reader) AppOption {
	return func(a *App) {
		if in != nil {
			a.in = in
		}
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) AppOption {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithInteractive overrides terminal detection on the input
func WithInteractive(fn func() bool) AppOption {
	return func(a *App) {
		if fn != nil {
			a.isInteractive = fn
		}
	}
}

// NewApp creates a new CLI application with default configuration
func NewApp(businessAPI api.BusinessAPI, opts ...AppOption) *App {
	return NewAppWithConfig(businessAPI, config.NewConfig(), opts...)
}

// NewAppWithConfig creates a new CLI application with the given configuration
func NewAppWithConfig(businessAPI api.BusinessAPI, cfg *config.Config, opts ...AppOption) *App {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	app := &App{
		businessAPI: businessAPI,
		config:      cfg,
		out:         os.Stdout,
		errOut:      os.Stderr,
		in:          os.Stdin,
		logger:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(app)
	}
	if app.isInteractive == nil {
		app.isInteractive = func() bool { return isTerminal(app.in) }
	}
	app.styles = NewStyles(cfg.Display.Color, app.out)
	return app
}

// warnOnPersistFailure tells the user that changes could not be saved.
// The in-memory state stays usable for the rest of the command.
func (a *App) warnOnPersistFailure() {
	if err := a.businessAPI.PersistErr(); err != nil {
		a.logger.Warn("changes were not saved", "error", err)
		fmt.Fprintln(a.errOut, a.styles.Warn.Render("warning: "+errors.GetUserMessage(err)))
	}
}

// isTerminal reports whether r is an interactive terminal
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// parseIndex turns a 1-based log entry number from the command line into
// the 0-based index used by the API
func parseIndex(arg string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, errors.NewInvalidInputError("index", arg, "must be a whole number")
	}
	if n < 1 {
		return 0, errors.NewInvalidInputError("index", arg, "must be 1 or greater")
	}
	return n - 1, nil
}

// shortID abbreviates an id for display
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
