// Package store persists resolution runs so batch and server enrichment
// calls leave an auditable trail.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/statsight/sic-cli/internal/model"
)

// Store defines the persistence interface for resolution runs.
type Store interface {
	SaveRun(ctx context.Context, run model.ResolutionRun) error
	GetRun(ctx context.Context, id string) (*model.ResolutionRun, error)
	ListRuns(ctx context.Context, limit int) ([]model.ResolutionRun, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a Store for the configured driver.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite", "":
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(ctx, dsn)
	}
	return nil, eris.Errorf("store: unknown driver %q", driver)
}
