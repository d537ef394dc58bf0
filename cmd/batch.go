package main

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/statsight/sic-cli/internal/model"
	"github.com/statsight/sic-cli/internal/rephrase"
	"github.com/statsight/sic-cli/internal/store"
)

var (
	batchInputPath  string
	batchOutputPath string
	batchNoStore    bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Enrich a JSONL file of classifier payloads",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		resolver, err := loadRephraseResolver(ctx)
		if err != nil {
			return err
		}

		var st store.Store
		if !batchNoStore {
			st, err = openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
		}

		payloads, err := readPayloads(batchInputPath)
		if err != nil {
			return err
		}

		runs, err := processPayloads(ctx, resolver, st, payloads, cfg.Batch.MaxConcurrent)
		if err != nil {
			return err
		}

		if err := writeRuns(batchOutputPath, runs); err != nil {
			return err
		}

		var issueCount int
		for _, run := range runs {
			issueCount += len(run.Issues)
		}
		zap.L().Info("batch complete",
			zap.Int("payloads", len(runs)),
			zap.Int("issues", issueCount),
		)
		return nil
	},
}

// readPayloads reads one JSON payload per line.
func readPayloads(path string) ([]model.ClassificationPayload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "batch: open input")
	}
	defer f.Close()

	var payloads []model.ClassificationPayload
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var p model.ClassificationPayload
		if err := json.Unmarshal(scanner.Bytes(), &p); err != nil {
			return nil, eris.Wrapf(err, "batch: parse line %d", line)
		}
		payloads = append(payloads, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrap(err, "batch: read input")
	}
	return payloads, nil
}

// processPayloads enriches payloads with bounded concurrency, recording
// each run in the store when one is configured. Result order matches
// input order.
func processPayloads(ctx context.Context, resolver *rephrase.Resolver, st store.Store, payloads []model.ClassificationPayload, maxConcurrent int) ([]model.ResolutionRun, error) {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	runs := make([]model.ResolutionRun, len(payloads))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for i, payload := range payloads {
		g.Go(func() error {
			enriched, issues := resolver.Process(payload)
			run := model.ResolutionRun{
				ID:        uuid.New().String(),
				Input:     payload,
				Output:    enriched,
				Issues:    issues,
				CreatedAt: time.Now().UTC(),
			}
			runs[i] = run

			if st != nil {
				// Store writes are serialized: SQLite allows one writer.
				mu.Lock()
				defer mu.Unlock()
				if err := st.SaveRun(ctx, run); err != nil {
					return err
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return runs, nil
}

// writeRuns writes one enriched payload per line to path, or stdout
// when path is empty.
func writeRuns(path string, runs []model.ResolutionRun) error {
	out := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrap(err, "batch: create output")
		}
		defer f.Close()
		out = f
	}

	w := bufio.NewWriter(out)
	enc := json.NewEncoder(w)
	for _, run := range runs {
		if err := enc.Encode(run.Output); err != nil {
			return eris.Wrap(err, "batch: write output")
		}
	}
	return eris.Wrap(w.Flush(), "batch: flush output")
}

func init() {
	batchCmd.Flags().StringVar(&batchInputPath, "input", "", "path to JSONL payloads file (required)")
	batchCmd.Flags().StringVar(&batchOutputPath, "out", "", "path to JSONL output file (default stdout)")
	batchCmd.Flags().BoolVar(&batchNoStore, "no-store", false, "skip recording runs in the store")
	_ = batchCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(batchCmd)
}
