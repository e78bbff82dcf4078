// Package app assembles the stores and their backends once per process.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rpggio/flowboard/internal/clock"
	"github.com/rpggio/flowboard/internal/config"
	"github.com/rpggio/flowboard/internal/domain/activity"
	"github.com/rpggio/flowboard/internal/domain/project"
	"github.com/rpggio/flowboard/internal/domain/task"
	"github.com/rpggio/flowboard/internal/memory"
	"github.com/rpggio/flowboard/internal/redisstore"
	"github.com/rpggio/flowboard/internal/repository"
	"github.com/rpggio/flowboard/internal/sqlite"
)

// App holds the process-wide project and task stores.
type App struct {
	Projects *project.Store
	Tasks    *task.Store
	// Activity is nil when the activity log is disabled.
	Activity *activity.Service

	logger  *slog.Logger
	closers []func() error
}

// Deps are the collaborators NewWithStorage wires together.
type Deps struct {
	Slots repository.SlotStorage
	// ActivityRepo may be nil to disable the activity log.
	ActivityRepo repository.ActivityRepository
	Clock        clock.Clock
	Logger       *slog.Logger
}

// NewWithStorage builds an App on top of already-open backends.
func NewWithStorage(deps Deps) *App {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	a := &App{logger: logger}

	var projectLog project.ActivityLogger
	var taskLog task.ActivityLogger
	if deps.ActivityRepo != nil {
		a.Activity = activity.NewService(deps.ActivityRepo, logger)
		projectLog = a.Activity
		taskLog = a.Activity
	}

	a.Projects = project.NewStore(deps.Slots, deps.Clock, projectLog, logger.With("store", "projects"))
	a.Tasks = task.NewStore(deps.Slots, deps.Clock, taskLog, logger.With("store", "tasks"))
	return a
}

// New opens the storage backend named by cfg and builds the App.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		closers []func() error
		slots   repository.SlotStorage
		db      *sqlite.DB
	)
	fail := func(err error) (*App, error) {
		closeAll(closers)
		return nil, err
	}

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		slots = memory.New()
	case config.DriverSQLite:
		var err error
		db, err = openSQLite(cfg.DB.Path)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, db.Close)
		slots = sqlite.NewSlotRepository(db)
	case config.DriverRedis:
		client, err := redisstore.Open(ctx, cfg.Redis.URL)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, client.Close)
		slots = redisstore.NewSlotRepository(client, cfg.Redis.Prefix)
	}

	var activityRepo repository.ActivityRepository
	if cfg.Activity.Enabled {
		// Non-sqlite drivers keep the log in a private in-memory database.
		if db == nil {
			var err error
			db, err = openSQLite(":memory:")
			if err != nil {
				return fail(err)
			}
			closers = append(closers, db.Close)
		}
		activityRepo = sqlite.NewActivityRepository(db)
	}

	a := NewWithStorage(Deps{
		Slots:        slots,
		ActivityRepo: activityRepo,
		Logger:       logger,
	})
	a.closers = closers
	a.logger.Info("storage ready", "driver", cfg.Storage.Driver, "activity", cfg.Activity.Enabled)
	return a, nil
}

// Fetch loads both collections from storage. A failure in one collection
// doesn't prevent loading the other.
func (a *App) Fetch(ctx context.Context) error {
	return errors.Join(a.Projects.Fetch(ctx), a.Tasks.Fetch(ctx))
}

// State is a combined snapshot of both stores.
type State struct {
	Projects project.State `json:"projects"`
	Tasks    task.State    `json:"tasks"`
}

// Snapshot returns the current state of both stores.
func (a *App) Snapshot() State {
	return State{Projects: a.Projects.Snapshot(), Tasks: a.Tasks.Snapshot()}
}

// Close releases the storage backends.
func (a *App) Close() error {
	err := closeAll(a.closers)
	a.closers = nil
	return err
}

func closeAll(closers []func() error) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func openSQLite(path string) (*sqlite.DB, error) {
	if err := ensureDBDir(path); err != nil {
		return nil, fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.New(path)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
