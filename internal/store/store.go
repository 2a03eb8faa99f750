// Package store persists clustering runs and their station assignments.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/overcast-analytics/climate-cli/internal/config"
	"github.com/overcast-analytics/climate-cli/internal/model"
)

// ErrRunNotFound is returned when a requested run id does not exist.
var ErrRunNotFound = eris.New("store: run not found")

// Store defines the persistence interface for run history.
type Store interface {
	// CreateRun persists a run and its assignments atomically and returns
	// the stored run with its generated id and timestamp.
	CreateRun(ctx context.Context, run model.Run, assignments []model.StationAssignment) (*model.Run, error)

	GetRun(ctx context.Context, runID string) (*model.Run, error)

	// LatestRun returns the most recent run, or nil when none exist.
	LatestRun(ctx context.Context) (*model.Run, error)

	ListRuns(ctx context.Context, limit int) ([]model.Run, error)

	ListAssignments(ctx context.Context, runID string) ([]model.StationAssignment, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a Store for the configured driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
