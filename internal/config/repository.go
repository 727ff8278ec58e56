package config

import (
	"fmt"
	"os"

	"chronotrakr/internal/repository"
	"chronotrakr/internal/repository/sqlite"
)

// RepositoryFactory creates repository instances based on environment
type RepositoryFactory struct {
	env    Environment
	config *Config
}

// NewRepositoryFactory creates a new repository factory for the given environment
func NewRepositoryFactory(env Environment, config *Config) *RepositoryFactory {
	return &RepositoryFactory{env: env, config: config}
}

// CreateRepository creates a repository instance based on the current environment.
// Testing uses memory, development keeps ct.db in the working directory and
// production uses the configured storage directory.
func (rf *RepositoryFactory) CreateRepository() (repository.Repository, error) {
	switch rf.env {
	case Testing:
		return CreateTestRepository(), nil
	case Development:
		dev := *rf.config
		dev.Database.Dir = "."
		return CreateRepository(&dev)
	default:
		return CreateRepository(rf.config)
	}
}

// CreateRepository opens the SQLite repository described by config
func CreateRepository(config *Config) (repository.Repository, error) {
	repo, err := sqlite.NewWithOptions(config.GetDatabasePath(), SQLiteOptions(config))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return repo, nil
}

// CreateTestRepository creates an in-memory repository for testing
func CreateTestRepository() repository.Repository {
	return repository.NewMemoryRepository()
}

// SQLiteOptions maps the database section onto repository options
func SQLiteOptions(config *Config) sqlite.Options {
	return sqlite.Options{
		QueryTimeout:   config.GetQueryTimeout(),
		WriteTimeout:   config.GetWriteTimeout(),
		DirPermissions: os.FileMode(config.Database.DirPermissions),
	}
}
