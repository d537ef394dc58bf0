package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/statsight/sic-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode.
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
CREATE TABLE IF NOT EXISTS resolution_runs (
	id         TEXT PRIMARY KEY,
	input      TEXT NOT NULL,
	output     TEXT NOT NULL,
	issues     TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_resolution_runs_created_at ON resolution_runs(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run model.ResolutionRun) error {
	input, output, issues, err := marshalRun(run)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO resolution_runs (id, input, output, issues, created_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, input, output, issues, run.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert run")
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.ResolutionRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, input, output, issues, created_at FROM resolution_runs WHERE id = ?`, id)

	run, err := scanRun(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(err, "sqlite: get run %s", id)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.ResolutionRun, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, input, output, issues, created_at FROM resolution_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.ResolutionRun
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs iteration")
	}
	return runs, nil
}

// marshalRun serializes a run's payload columns to JSON.
func marshalRun(run model.ResolutionRun) (input, output string, issues sql.NullString, err error) {
	in, err := json.Marshal(run.Input)
	if err != nil {
		return "", "", issues, eris.Wrap(err, "store: marshal input")
	}
	out, err := json.Marshal(run.Output)
	if err != nil {
		return "", "", issues, eris.Wrap(err, "store: marshal output")
	}
	if len(run.Issues) > 0 {
		iss, err := json.Marshal(run.Issues)
		if err != nil {
			return "", "", issues, eris.Wrap(err, "store: marshal issues")
		}
		issues = sql.NullString{String: string(iss), Valid: true}
	}
	return string(in), string(out), issues, nil
}

// scanRun reads one run from a row-scanning function.
func scanRun(scan func(dest ...any) error) (*model.ResolutionRun, error) {
	var run model.ResolutionRun
	var input, output string
	var issues sql.NullString

	if err := scan(&run.ID, &input, &output, &issues, &run.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, eris.Wrap(err, "store: scan run")
	}

	if err := json.Unmarshal([]byte(input), &run.Input); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal input")
	}
	if err := json.Unmarshal([]byte(output), &run.Output); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal output")
	}
	if issues.Valid {
		if err := json.Unmarshal([]byte(issues.String), &run.Issues); err != nil {
			return nil, eris.Wrap(err, "store: unmarshal issues")
		}
	}
	return &run, nil
}
