package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/overcast-analytics/climate-cli/internal/export"
	"github.com/overcast-analytics/climate-cli/internal/model"
	"github.com/overcast-analytics/climate-cli/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve cluster maps over HTTP",
	Long:  "Read-only HTTP server exposing stored runs and their cluster maps as GeoJSON, for map frontends.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return eris.Wrap(err, "serve: open store")
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "serve: migrate store")
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Serve.Port),
			Handler:           newRouter(st),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			zap.L().Info("serving cluster maps", zap.Int("port", cfg.Serve.Port))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return eris.Wrap(err, "serve: shutdown")
			}
			return nil
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return eris.Wrap(err, "serve")
		}
	},
}

// newRouter builds the read-only API.
func newRouter(st store.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/runs", func(w http.ResponseWriter, req *http.Request) {
		runs, err := st.ListRuns(req.Context(), 50)
		if err != nil {
			zap.L().Error("serve: list runs", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list runs failed"})
			return
		}
		if runs == nil {
			runs = []model.Run{}
		}
		writeJSON(w, http.StatusOK, runs)
	})

	r.Get("/runs/{id}/clusters.geojson", func(w http.ResponseWriter, req *http.Request) {
		run, err := resolveRun(req.Context(), st, chi.URLParam(req, "id"))
		if err != nil {
			if errors.Is(err, store.ErrRunNotFound) {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
				return
			}
			zap.L().Error("serve: resolve run", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "lookup failed"})
			return
		}

		assignments, err := st.ListAssignments(req.Context(), run.ID)
		if err != nil {
			zap.L().Error("serve: list assignments", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "assignments lookup failed"})
			return
		}

		data, err := export.GeoJSON(assignments)
		if err != nil {
			zap.L().Error("serve: render geojson", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "render failed"})
			return
		}

		w.Header().Set("Content-Type", "application/geo+json")
		w.WriteHeader(http.StatusOK)
		w.Write(data) //nolint:errcheck
	})

	return r
}

// resolveRun accepts a run id or the literal "latest".
func resolveRun(ctx context.Context, st store.Store, id string) (*model.Run, error) {
	if id == "latest" {
		run, err := st.LatestRun(ctx)
		if err != nil {
			return nil, err
		}
		if run == nil {
			return nil, store.ErrRunNotFound
		}
		return run, nil
	}
	return st.GetRun(ctx, id)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
