package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/overcast-analytics/climate-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	k          INTEGER NOT NULL,
	iterations INTEGER NOT NULL,
	seed       INTEGER NOT NULL,
	stations   INTEGER NOT NULL,
	clusters   INTEGER NOT NULL,
	distortion REAL NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS assignments (
	run_id     TEXT NOT NULL REFERENCES runs(id),
	station_id TEXT NOT NULL,
	lat        REAL NOT NULL,
	lon        REAL NOT NULL,
	cluster    INTEGER NOT NULL,
	PRIMARY KEY (run_id, station_id)
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_assignments_run_id ON assignments(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, run model.Run, assignments []model.StationAssignment) (*model.Run, error) {
	run.ID = uuid.New().String()
	run.CreatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, k, iterations, seed, stations, clusters, distortion, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.K, run.Iterations, run.Seed, run.Stations, run.Clusters, run.Distortion, run.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO assignments (run_id, station_id, lat, lon, cluster) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: prepare assignment insert")
	}
	defer stmt.Close() //nolint:errcheck

	for _, a := range assignments {
		if _, err := stmt.ExecContext(ctx, run.ID, a.StationID, a.Lat, a.Lon, a.Cluster); err != nil {
			return nil, eris.Wrapf(err, "sqlite: insert assignment for station %s", a.StationID)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit run")
	}
	return &run, nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, k, iterations, seed, stations, clusters, distortion, created_at FROM runs WHERE id = ?`, runID)

	run, err := scanSQLiteRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrRunNotFound, "%s", runID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get run")
	}
	return run, nil
}

func (s *SQLiteStore) LatestRun(ctx context.Context) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, k, iterations, seed, stations, clusters, distortion, created_at FROM runs ORDER BY created_at DESC, id DESC LIMIT 1`)

	run, err := scanSQLiteRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: latest run")
	}
	return run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, k, iterations, seed, stations, clusters, distortion, created_at FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.Run
	for rows.Next() {
		run, err := scanSQLiteRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, *run)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

func (s *SQLiteStore) ListAssignments(ctx context.Context, runID string) ([]model.StationAssignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT station_id, lat, lon, cluster FROM assignments WHERE run_id = ? ORDER BY station_id`, runID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list assignments")
	}
	defer rows.Close() //nolint:errcheck

	var assignments []model.StationAssignment
	for rows.Next() {
		var a model.StationAssignment
		if err := rows.Scan(&a.StationID, &a.Lat, &a.Lon, &a.Cluster); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan assignment")
		}
		assignments = append(assignments, a)
	}
	return assignments, eris.Wrap(rows.Err(), "sqlite: iterate assignments")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRun(row rowScanner) (*model.Run, error) {
	var run model.Run
	err := row.Scan(&run.ID, &run.K, &run.Iterations, &run.Seed, &run.Stations, &run.Clusters, &run.Distortion, &run.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &run, nil
}
