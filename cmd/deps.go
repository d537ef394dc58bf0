package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/statsight/sic-cli/internal/rephrase"
	"github.com/statsight/sic-cli/internal/sic"
	"github.com/statsight/sic-cli/internal/source"
	"github.com/statsight/sic-cli/internal/store"
)

// tableResolver builds the source resolver from config.
func tableResolver() *source.Resolver {
	fetcher := source.NewHTTPFetcher(source.HTTPOptions{
		UserAgent:  cfg.Source.UserAgent,
		Timeout:    time.Duration(cfg.Source.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Source.MaxRetries,
		RateLimit:  rate.Limit(cfg.Source.RatePerSec),
	})
	return source.NewResolver(fetcher, cfg.Data.TempDir)
}

// loadIndex materializes the lookup table and builds the index.
func loadIndex(ctx context.Context) (*sic.Index, error) {
	path, err := tableResolver().Resolve(ctx, cfg.Data.LookupTable)
	if err != nil {
		return nil, err
	}
	return sic.LoadIndex(path)
}

// loadRephraseResolver materializes the rephrase table and builds the
// resolver with the configured duplicate policy.
func loadRephraseResolver(ctx context.Context) (*rephrase.Resolver, error) {
	path, err := tableResolver().Resolve(ctx, cfg.Data.RephraseTable)
	if err != nil {
		return nil, err
	}

	policy := rephrase.KeepLast
	switch cfg.Data.RephraseKeep {
	case "last", "":
	case "first":
		policy = rephrase.KeepFirst
	default:
		return nil, eris.Errorf("unknown rephrase_keep policy %q (want first or last)", cfg.Data.RephraseKeep)
	}

	return rephrase.Load(path, policy)
}

// openStore opens the configured run store and applies migrations.
func openStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}
