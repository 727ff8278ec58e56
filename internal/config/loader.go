package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the file looked up in the storage directory when
// CT_CONFIG is not set.
const ConfigFileName = "config.yaml"

// Loader handles loading configuration from multiple sources
type Loader struct {
	config     *Config
	configPath string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		config: NewConfig(),
	}
}

// WithConfigFile sets an explicit YAML file. An explicit file must exist.
func (l *Loader) WithConfigFile(path string) *Loader {
	l.configPath = path
	return l
}

// Load loads configuration using the cascading strategy:
// 1. Start with defaults
// 2. Override with the YAML config file, if any
// 3. Override with environment variables
// 4. Override with command line flags (LoadWithOverrides)
func (l *Loader) Load() (*Config, error) {
	if err := l.loadFile(); err != nil {
		return nil, err
	}

	if err := l.config.LoadFromEnvironment(); err != nil {
		return nil, err
	}

	if err := l.config.Validate(); err != nil {
		return nil, err
	}

	return l.config, nil
}

// LoadWithOverrides loads configuration and applies command line overrides
func (l *Loader) LoadWithOverrides(overrides *ConfigOverrides) (*Config, error) {
	config, err := l.Load()
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		l.applyOverrides(config, overrides)
	}

	// Re-validate after applying overrides
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// ConfigPath returns the YAML file the loader reads: the explicit file,
// then CT_CONFIG, then config.yaml in the storage directory.
func (l *Loader) ConfigPath() (path string, explicit bool) {
	if l.configPath != "" {
		return l.configPath, true
	}
	if env := os.Getenv("CT_CONFIG"); env != "" {
		return env, true
	}
	dir := os.Getenv("CT_DB_DIR")
	if dir == "" {
		dir = DefaultDir()
	}
	return filepath.Join(dir, ConfigFileName), false
}

func (l *Loader) loadFile() error {
	path, explicit := l.ConfigPath()

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && stderrors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, l.config); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ConfigOverrides holds command line flag overrides
type ConfigOverrides struct {
	// Database overrides
	DBDir          *string
	DBFilename     *string
	DBQueryTimeout *time.Duration
	DBWriteTimeout *time.Duration

	// Validation overrides
	NameMinLength *int
	NameMaxLength *int

	// Display overrides
	TimeFormat   *string
	Color        *string
	TickInterval *time.Duration

	// Invoice overrides
	InvoiceDir *string

	// Application overrides
	Timeout  *time.Duration
	Verbose  *bool
	LogLevel *string
}

// applyOverrides applies command line overrides to the configuration
func (l *Loader) applyOverrides(config *Config, overrides *ConfigOverrides) {
	if overrides.DBDir != nil {
		config.Database.Dir = *overrides.DBDir
	}
	if overrides.DBFilename != nil {
		config.Database.Filename = *overrides.DBFilename
	}
	if overrides.DBQueryTimeout != nil {
		config.Database.QueryTimeout = *overrides.DBQueryTimeout
	}
	if overrides.DBWriteTimeout != nil {
		config.Database.WriteTimeout = *overrides.DBWriteTimeout
	}

	if overrides.NameMinLength != nil {
		config.Validation.NameMinLength = *overrides.NameMinLength
	}
	if overrides.NameMaxLength != nil {
		config.Validation.NameMaxLength = *overrides.NameMaxLength
	}

	if overrides.TimeFormat != nil {
		config.Display.TimeFormat = *overrides.TimeFormat
	}
	if overrides.Color != nil {
		config.Display.Color = *overrides.Color
	}
	if overrides.TickInterval != nil {
		config.Display.TickInterval = *overrides.TickInterval
	}

	if overrides.InvoiceDir != nil {
		config.Invoice.Dir = *overrides.InvoiceDir
	}

	if overrides.Timeout != nil {
		config.Application.Timeout = *overrides.Timeout
	}
	if overrides.Verbose != nil {
		config.Application.Verbose = *overrides.Verbose
	}
	if overrides.LogLevel != nil {
		config.Application.LogLevel = *overrides.LogLevel
	}
}
