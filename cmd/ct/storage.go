package main

import (
	"context"
	"fmt"
	"log/slog"

	"chronotrakr/internal/api"
	"chronotrakr/internal/config"
	"chronotrakr/internal/store"
	"chronotrakr/internal/timer"
	"chronotrakr/internal/validation"
)

// openStorage wires the repository for the current environment into a
// loaded store and returns the business API over it. The returned closer
// releases the repository.
func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (api.BusinessAPI, func() error, error) {
	env := config.GetEnvironment()
	repo, err := config.NewRepositoryFactory(env, cfg).CreateRepository()
	if err != nil {
		return nil, nil, err
	}

	st := store.New(repo,
		store.WithLogger(logger),
		store.WithValidator(validation.NewValidatorWithConfig(cfg)),
	)
	if err := st.Load(ctx); err != nil {
		_ = repo.Close()
		return nil, nil, fmt.Errorf("failed to load saved data: %w", err)
	}

	logger.Debug("storage ready", "environment", env, "path", cfg.GetDatabasePath())
	st.Subscribe(func(change store.Change) {
		if st.PersistErr() != nil {
			return
		}
		logger.Debug("changes saved", "projects", change.Projects, "tasks", change.Tasks)
	})

	tm := timer.New(st)
	return api.NewBusinessAPI(st, tm, cfg.Display.TimeFormat), repo.Close, nil
}
