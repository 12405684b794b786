// Package app wires configuration into the storage backends and services
// shared by the server and the command line tool.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rpggio/rerx/internal/badger"
	"github.com/rpggio/rerx/internal/config"
	"github.com/rpggio/rerx/internal/domain/activity"
	"github.com/rpggio/rerx/internal/domain/project"
	"github.com/rpggio/rerx/internal/sqlite"
)

// App holds opened services and the resources behind them.
type App struct {
	Projects *project.Service
	Activity *activity.Service

	closers []func() error
}

// Open opens the configured backend, loads the project list and seeds it when
// empty.
func Open(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger, opts ...project.Option) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	a := &App{}

	if err := ensureDir(cfg.DBPath); err != nil {
		return nil, fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, db.Close)

	activityRepo := sqlite.NewActivityRepository(db)
	a.Activity = activity.NewService(activityRepo, logger)

	var store project.Store
	switch cfg.Backend {
	case config.BackendBadger:
		bcfg := badger.DefaultConfig()
		bcfg.Path = cfg.BadgerPath
		bcfg.Logger = logger
		bs, err := badger.Open(bcfg)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.closers = append(a.closers, bs.Close)
		store = bs
	case config.BackendSQLite, "":
		store = sqlite.NewBlobRepository(db)
	default:
		_ = a.Close()
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}

	a.Projects = project.NewService(store, activityRepo, logger, opts...)
	if err := a.Projects.Open(ctx); err != nil {
		if !errors.Is(err, project.ErrPersistence) {
			_ = a.Close()
			return nil, err
		}
		logger.Warn("project list is not being saved", "error", err)
	}

	logger.Info("store opened", "backend", cfg.Backend, "projects", len(a.Projects.Projects()))
	return a, nil
}

// Close releases resources in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func ensureDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
