// Package ui serves the dashboard's JSON API over gin and its operational
// endpoints over chi.
package ui

import (
	"context"
	"errors"
	"net/http"
	"time"

	"trialdash/internal"
	"trialdash/internal/config"
	"trialdash/internal/container"
	"trialdash/internal/session"
	"trialdash/ui/middleware"

	"github.com/gin-gonic/gin"
)

// Server is the dashboard API server
type Server struct {
	router *gin.Engine
	store  *session.Store
	config *config.Config
	logger *internal.Logger
}

// NewServer wires the API routes onto a fresh gin engine
func NewServer(c *container.Container) *Server {
	s := &Server{
		router: gin.New(),
		store:  c.Sessions,
		config: c.Config,
		logger: c.Logger.With("API"),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Logger(), gin.Recovery())
	s.router.Use(middleware.RequestMetrics())
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	api.Use(middleware.ResolveSession(s.store, s.logger))
	{
		api.POST("/dataset/validate", s.handleValidate)
		api.POST("/dataset", s.handleLoad)
		api.GET("/dataset", s.handleOverview)
		api.DELETE("/dataset", s.handleClear)
		api.GET("/dataset/summary", s.handleSummary)

		api.GET("/analysis/kinds", s.handleAnalysisKinds)
		api.POST("/analysis", s.handleAnalysis)

		api.GET("/charts/kinds", s.handleChartKinds)
		api.POST("/charts", s.handleChart)
		api.POST("/charts/png", s.handleChartPNG)

		api.GET("/report", s.handleReport)
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on the configured port until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.config.Server.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return serve(ctx, srv, s.logger)
}

// serve runs srv until ctx ends
func serve(ctx context.Context, srv *http.Server, logger *internal.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down %s", srv.Addr)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
