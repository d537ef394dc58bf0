package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/statsight/sic-cli/internal/model"
)

// pgPool is the subset of pgxpool.Pool the store uses; pgxmock
// implements it for unit tests.
type pgPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool pgPool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
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
CREATE TABLE IF NOT EXISTS resolution_runs (
	id         TEXT PRIMARY KEY,
	input      JSONB NOT NULL,
	output     JSONB NOT NULL,
	issues     JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_resolution_runs_created_at ON resolution_runs(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveRun(ctx context.Context, run model.ResolutionRun) error {
	input, output, issues, err := marshalRun(run)
	if err != nil {
		return err
	}

	var issuesArg any
	if issues.Valid {
		issuesArg = issues.String
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO resolution_runs (id, input, output, issues, created_at) VALUES ($1, $2, $3, $4, $5)`,
		run.ID, input, output, issuesArg, run.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert run")
}

func (s *PostgresStore) GetRun(ctx context.Context, id string) (*model.ResolutionRun, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, input, output, issues, created_at FROM resolution_runs WHERE id = $1`, id)

	run, err := scanPgRun(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(err, "postgres: get run %s", id)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]model.ResolutionRun, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, input, output, issues, created_at FROM resolution_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.ResolutionRun
	for rows.Next() {
		run, err := scanPgRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: list runs iteration")
	}
	return runs, nil
}

// scanPgRun reads one run from a pgx row. JSONB columns arrive as []byte.
func scanPgRun(scan func(dest ...any) error) (*model.ResolutionRun, error) {
	var run model.ResolutionRun
	var input, output []byte
	var issues []byte

	if err := scan(&run.ID, &input, &output, &issues, &run.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, eris.Wrap(err, "postgres: scan run")
	}

	if err := json.Unmarshal(input, &run.Input); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal input")
	}
	if err := json.Unmarshal(output, &run.Output); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal output")
	}
	if len(issues) > 0 {
		if err := json.Unmarshal(issues, &run.Issues); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal issues")
		}
	}
	return &run, nil
}
