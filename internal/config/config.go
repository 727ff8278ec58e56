package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Color modes for terminal output
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config holds all configuration options for the time tracker application
type Config struct {
	Database    DatabaseConfig    `yaml:"database"`
	Validation  ValidationConfig  `yaml:"validation"`
	Display     DisplayConfig     `yaml:"display"`
	Invoice     InvoiceConfig     `yaml:"invoice"`
	Application ApplicationConfig `yaml:"application"`
}

// DatabaseConfig holds storage-related configuration
type DatabaseConfig struct {
	Dir            string        `yaml:"dir" env:"CT_DB_DIR"`
	Filename       string        `yaml:"filename" env:"CT_DB_FILENAME"`
	QueryTimeout   time.Duration `yaml:"query_timeout" env:"CT_DB_QUERY_TIMEOUT"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"CT_DB_WRITE_TIMEOUT"`
	DirPermissions uint32        `yaml:"dir_permissions" env:"CT_DB_DIR_PERMISSIONS"`
}

// ValidationConfig holds limits for project and task names
type ValidationConfig struct {
	NameMinLength int `yaml:"name_min_length" env:"CT_VALIDATION_NAME_MIN"`
	NameMaxLength int `yaml:"name_max_length" env:"CT_VALIDATION_NAME_MAX"`
}

// DisplayConfig holds terminal rendering configuration
type DisplayConfig struct {
	TimeFormat   string        `yaml:"time_format" env:"CT_DISPLAY_TIME_FORMAT"`
	Color        string        `yaml:"color" env:"CT_DISPLAY_COLOR"`
	TickInterval time.Duration `yaml:"tick_interval" env:"CT_DISPLAY_TICK_INTERVAL"`
}

// InvoiceConfig holds invoice export configuration
type InvoiceConfig struct {
	Dir string `yaml:"dir" env:"CT_INVOICE_DIR"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout  time.Duration `yaml:"timeout" env:"CT_APP_TIMEOUT"`
	Verbose  bool          `yaml:"verbose" env:"CT_APP_VERBOSE"`
	LogLevel string        `yaml:"log_level" env:"CT_LOG_LEVEL"`
}

// DefaultDir returns the directory holding the database and config file
func DefaultDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return ".chronotrakr"
	}
	return filepath.Join(homeDir, ".chronotrakr")
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Dir:            DefaultDir(),
			Filename:       "ct.db",
			QueryTimeout:   10 * time.Second,
			WriteTimeout:   5 * time.Second,
			DirPermissions: 0o755,
		},
		Validation: ValidationConfig{
			NameMinLength: 1,
			NameMaxLength: 255,
		},
		Display: DisplayConfig{
			TimeFormat:   "2006-01-02 15:04",
			Color:        ColorAuto,
			TickInterval: time.Second,
		},
		Invoice: InvoiceConfig{
			Dir: ".",
		},
		Application: ApplicationConfig{
			Timeout:  60 * time.Second,
			Verbose:  false,
			LogLevel: "WARN",
		},
	}
}

// GetDatabasePath returns the full path to the database file
func (c *Config) GetDatabasePath() string {
	return filepath.Join(c.Database.Dir, c.Database.Filename)
}

// GetQueryTimeout returns the database query timeout
func (c *Config) GetQueryTimeout() time.Duration {
	return c.Database.QueryTimeout
}

// GetWriteTimeout returns the database write timeout
func (c *Config) GetWriteTimeout() time.Duration {
	return c.Database.WriteTimeout
}

// LoadFromEnvironment loads configuration from environment variables.
// Unparsable values are ignored and the previous value is kept.
func (c *Config) LoadFromEnvironment() error {
	// Database configuration
	if dir := os.Getenv("CT_DB_DIR"); dir != "" {
		c.Database.Dir = dir
	}
	if filename := os.Getenv("CT_DB_FILENAME"); filename != "" {
		c.Database.Filename = filename
	}
	if timeout := os.Getenv("CT_DB_QUERY_TIMEOUT"); timeout != "" {
		c.Database.QueryTimeout = ParseDurationWithFallback(timeout, c.Database.QueryTimeout)
	}
	if timeout := os.Getenv("CT_DB_WRITE_TIMEOUT"); timeout != "" {
		c.Database.WriteTimeout = ParseDurationWithFallback(timeout, c.Database.WriteTimeout)
	}
	if perms := os.Getenv("CT_DB_DIR_PERMISSIONS"); perms != "" {
		c.Database.DirPermissions = ParseUint32WithFallback(perms, 8, c.Database.DirPermissions)
	}

	// Validation configuration
	if minLen := os.Getenv("CT_VALIDATION_NAME_MIN"); minLen != "" {
		c.Validation.NameMinLength = ParseIntWithFallback(minLen, c.Validation.NameMinLength)
	}
	if maxLen := os.Getenv("CT_VALIDATION_NAME_MAX"); maxLen != "" {
		c.Validation.NameMaxLength = ParseIntWithFallback(maxLen, c.Validation.NameMaxLength)
	}

	// Display configuration
	if format := os.Getenv("CT_DISPLAY_TIME_FORMAT"); format != "" {
		c.Display.TimeFormat = format
	}
	if color := os.Getenv("CT_DISPLAY_COLOR"); color != "" {
		c.Display.Color = color
	}
	if interval := os.Getenv("CT_DISPLAY_TICK_INTERVAL"); interval != "" {
		c.Display.TickInterval = ParseDurationWithFallback(interval, c.Display.TickInterval)
	}

	// Invoice configuration
	if dir := os.Getenv("CT_INVOICE_DIR"); dir != "" {
		c.Invoice.Dir = dir
	}

	// Application configuration
	if timeout := os.Getenv("CT_APP_TIMEOUT"); timeout != "" {
		c.Application.Timeout = ParseDurationWithFallback(timeout, c.Application.Timeout)
	}
	if verbose := os.Getenv("CT_APP_VERBOSE"); verbose != "" {
		c.Application.Verbose = ParseBoolWithFallback(verbose, c.Application.Verbose)
	}
	if level := os.Getenv("CT_LOG_LEVEL"); level != "" {
		c.Application.LogLevel = level
	}

	return nil
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	if c.Database.Dir == "" {
		return &ConfigError{Field: "database.dir", Message: "database directory cannot be empty"}
	}
	if c.Database.Filename == "" {
		return &ConfigError{Field: "database.filename", Message: "database filename cannot be empty"}
	}
	if c.Database.QueryTimeout <= 0 {
		return &ConfigError{Field: "database.query_timeout", Message: "query timeout must be positive"}
	}
	if c.Database.WriteTimeout <= 0 {
		return &ConfigError{Field: "database.write_timeout", Message: "write timeout must be positive"}
	}

	if c.Validation.NameMinLength < 1 {
		return &ConfigError{Field: "validation.name_min_length", Message: "name minimum length must be at least 1"}
	}
	if c.Validation.NameMaxLength < c.Validation.NameMinLength {
		return &ConfigError{Field: "validation.name_max_length", Message: "name maximum length must not be less than minimum length"}
	}

	if c.Display.TimeFormat == "" {
		return &ConfigError{Field: "display.time_format", Message: "time format cannot be empty"}
	}
	switch c.Display.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return &ConfigError{Field: "display.color", Message: "color must be one of auto, always, never"}
	}
	if c.Display.TickInterval < 10*time.Millisecond {
		return &ConfigError{Field: "display.tick_interval", Message: "tick interval must be at least 10ms"}
	}

	if c.Invoice.Dir == "" {
		return &ConfigError{Field: "invoice.dir", Message: "invoice directory cannot be empty"}
	}

	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

// ParseDurationWithFallback parses a duration string with a fallback value
func ParseDurationWithFallback(s string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return fallback
}

// ParseIntWithFallback parses an integer string with a fallback value
func ParseIntWithFallback(s string, fallback int) int {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return fallback
}

// ParseBoolWithFallback parses a boolean string with a fallback value
func ParseBoolWithFallback(s string, fallback bool) bool {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return fallback
}

// ParseUint32WithFallback parses a uint32 string with a fallback value
func ParseUint32WithFallback(s string, base int, fallback uint32) uint32 {
	if u, err := strconv.ParseUint(s, base, 32); err == nil {
		return uint32(u)
	}
	return fallback
}
