package ui

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"trialdash/internal"
	"trialdash/internal/metrics"
	"trialdash/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// OpsRouter serves health, Prometheus metrics and pprof
func OpsRouter(store *session.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","sessions":%d}`, store.Len())
	})
	r.Handle("/metrics", metrics.Handler())
	r.Mount("/debug", middleware.Profiler())
	return r
}

// RunOps serves the ops router on port until ctx is cancelled
func RunOps(ctx context.Context, port string, store *session.Store, logger *internal.Logger) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           OpsRouter(store),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return serve(ctx, srv, logger.With("Ops"))
}
