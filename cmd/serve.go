package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/statsight/sic-cli/internal/model"
	"github.com/statsight/sic-cli/internal/rephrase"
	"github.com/statsight/sic-cli/internal/sic"
	"github.com/statsight/sic-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the resolution HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		idx, err := loadIndex(ctx)
		if err != nil {
			return err
		}
		resolver, err := loadRephraseResolver(ctx)
		if err != nil {
			return err
		}
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(idx, resolver, st),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

// newRouter builds the API routes over the loaded indexes.
func newRouter(idx *sic.Index, resolver *rephrase.Resolver, st store.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/v1/lookup", func(w http.ResponseWriter, req *http.Request) {
		description := req.URL.Query().Get("description")
		if description == "" {
			writeJSONError(w, http.StatusBadRequest, "description query parameter is required")
			return
		}

		rec, ok := idx.Lookup(description)
		resp := lookupResult{Description: description, Matched: ok}
		if ok {
			resp.Record = &rec
			resp.Division = rec.Division()
		}
		writeJSON(w, http.StatusOK, resp)
	})

	r.Get("/v1/divisions/{code}", func(w http.ResponseWriter, req *http.Request) {
		records, err := idx.LookupCodeDivision(chi.URLParam(req, "code"))
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, records)
	})

	r.Post("/v1/divisions/unique", func(w http.ResponseWriter, req *http.Request) {
		var candidates []model.SICCandidate
		if err := json.NewDecoder(req.Body).Decode(&candidates); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		groups, issues := idx.UniqueCodeDivisions(candidates)
		writeJSON(w, http.StatusOK, struct {
			Divisions []model.DivisionGroup `json:"divisions"`
			Issues    []model.Issue         `json:"issues,omitempty"`
		}{Divisions: groups, Issues: issues})
	})

	r.Get("/v1/rephrase/{code}", func(w http.ResponseWriter, req *http.Request) {
		code := chi.URLParam(req, "code")
		desc, ok := resolver.Lookup(code)
		writeJSON(w, http.StatusOK, struct {
			SICCode             string `json:"sic_code"`
			Matched             bool   `json:"matched"`
			ReviewedDescription string `json:"reviewed_description,omitempty"`
		}{SICCode: code, Matched: ok, ReviewedDescription: desc})
	})

	r.Post("/v1/rephrase/process", func(w http.ResponseWriter, req *http.Request) {
		var payload model.ClassificationPayload
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		enriched, issues := resolver.Process(payload)

		if st != nil {
			run := model.ResolutionRun{
				ID:        uuid.New().String(),
				Input:     payload,
				Output:    enriched,
				Issues:    issues,
				CreatedAt: time.Now().UTC(),
			}
			if err := st.SaveRun(req.Context(), run); err != nil {
				zap.L().Error("failed to record run", zap.Error(err))
			}
		}

		writeJSON(w, http.StatusOK, struct {
			Payload model.ClassificationPayload `json:"payload"`
			Issues  []model.Issue               `json:"issues,omitempty"`
		}{Payload: enriched, Issues: issues})
	})

	r.Get("/v1/runs", func(w http.ResponseWriter, req *http.Request) {
		if st == nil {
			writeJSONError(w, http.StatusNotFound, "run store not configured")
			return
		}
		runs, err := st.ListRuns(req.Context(), 50)
		if err != nil {
			zap.L().Error("failed to list runs", zap.Error(err))
			writeJSONError(w, http.StatusInternalServerError, "failed to list runs")
			return
		}
		writeJSON(w, http.StatusOK, runs)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
