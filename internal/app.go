// Package internal contains core application functionality
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/karloscodes/cartridge"

	"devconnect/internal/config"
	"devconnect/internal/database"
	"devconnect/internal/jobs"
)

var (
	_ cartridge.Config            = (*config.Config)(nil)
	_ cartridge.LogConfigProvider = (*config.Config)(nil)
	_ cartridge.DBManager         = (*database.DBManager)(nil)
)

// Application wraps cartridge.Application with devconnect-specific components
type Application struct {
	*cartridge.Application
	Config    *config.Config
	DBManager *database.DBManager // devconnect DB manager with migration methods
	Jobs      *jobs.Scheduler
}

// NewApp creates a new application instance with default settings
func NewApp() (*Application, error) {
	cfg := config.GetConfig()
	return NewAppWithConfig(cfg)
}

// NewAppWithConfig creates a new application with the provided config
func NewAppWithConfig(cfg *config.Config) (*Application, error) {
	logger := cartridge.NewLogger(cfg, nil)

	dbManager := database.NewDBManager(cfg, logger)
	if err := dbManager.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	scheduler := newScheduler(cfg, logger, dbManager)
	var workers []cartridge.BackgroundWorker
	if cfg.JobsEnabled {
		workers = append(workers, scheduler)
	}

	app, err := cartridge.NewApplication(cartridge.ApplicationOptions{
		Config:       cfg,
		Logger:       logger,
		DBManager:    dbManager,
		ServerConfig: NewServerConfig(),
		RouteMountFunc: func(srv *cartridge.Server) {
			MountAPIRoutesWithConfig(srv, cfg)
		},
		BackgroundWorkers: workers,
	})
	if err != nil {
		dbManager.Close()
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	return &Application{
		Application: app,
		Config:      cfg,
		DBManager:   dbManager,
		Jobs:        scheduler,
	}, nil
}

func newScheduler(cfg *config.Config, logger *slog.Logger, dbManager *database.DBManager) *jobs.Scheduler {
	list := []jobs.Job{jobs.CheckpointJob(dbManager, cfg.JobInterval())}
	if cfg.MetricsEnabled {
		list = append(list, jobs.StatsJob(dbManager, logger, cfg.JobInterval()))
	}
	return jobs.NewScheduler(logger, list...)
}

// Shutdown stops the background jobs and the server, then closes the database.
func (a *Application) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.Application.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown server: %w", err))
	}
	if err := a.DBManager.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	return errors.Join(errs...)
}
