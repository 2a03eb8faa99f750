package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/overcast-analytics/climate-cli/internal/db"
	"github.com/overcast-analytics/climate-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	k          INTEGER NOT NULL,
	iterations INTEGER NOT NULL,
	seed       BIGINT NOT NULL,
	stations   INTEGER NOT NULL,
	clusters   INTEGER NOT NULL,
	distortion DOUBLE PRECISION NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS assignments (
	run_id     TEXT NOT NULL REFERENCES runs(id),
	station_id TEXT NOT NULL,
	lat        DOUBLE PRECISION NOT NULL,
	lon        DOUBLE PRECISION NOT NULL,
	cluster    INTEGER NOT NULL,
	PRIMARY KEY (run_id, station_id)
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_assignments_run_id ON assignments(run_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, run model.Run, assignments []model.StationAssignment) (*model.Run, error) {
	run.ID = uuid.New().String()
	run.CreatedAt = time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, k, iterations, seed, stations, clusters, distortion, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		run.ID, run.K, run.Iterations, run.Seed, run.Stations, run.Clusters, run.Distortion, run.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	rows := make([][]any, len(assignments))
	for i, a := range assignments {
		rows[i] = []any{run.ID, a.StationID, a.Lat, a.Lon, a.Cluster}
	}
	if _, err := db.CopyFrom(ctx, s.pool, "assignments",
		[]string{"run_id", "station_id", "lat", "lon", "cluster"}, rows); err != nil {
		return nil, eris.Wrap(err, "postgres: copy assignments")
	}

	return &run, nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, k, iterations, seed, stations, clusters, distortion, created_at FROM runs WHERE id = $1`, runID)

	run, err := scanPostgresRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrRunNotFound, "%s", runID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get run")
	}
	return run, nil
}

func (s *PostgresStore) LatestRun(ctx context.Context) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, k, iterations, seed, stations, clusters, distortion, created_at FROM runs ORDER BY created_at DESC, id DESC LIMIT 1`)

	run, err := scanPostgresRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: latest run")
	}
	return run, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, k, iterations, seed, stations, clusters, distortion, created_at FROM runs ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		run, err := scanPostgresRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, *run)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: iterate runs")
}

func (s *PostgresStore) ListAssignments(ctx context.Context, runID string) ([]model.StationAssignment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT station_id, lat, lon, cluster FROM assignments WHERE run_id = $1 ORDER BY station_id`, runID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list assignments")
	}
	defer rows.Close()

	var assignments []model.StationAssignment
	for rows.Next() {
		var a model.StationAssignment
		if err := rows.Scan(&a.StationID, &a.Lat, &a.Lon, &a.Cluster); err != nil {
			return nil, eris.Wrap(err, "postgres: scan assignment")
		}
		assignments = append(assignments, a)
	}
	return assignments, eris.Wrap(rows.Err(), "postgres: iterate assignments")
}

func scanPostgresRun(row pgx.Row) (*model.Run, error) {
	var run model.Run
	err := row.Scan(&run.ID, &run.K, &run.Iterations, &run.Seed, &run.Stations, &run.Clusters, &run.Distortion, &run.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &run, nil
}
