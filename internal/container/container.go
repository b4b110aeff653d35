package container

import (
	"fmt"

	"trialdash/internal"
	"trialdash/internal/config"
	"trialdash/internal/metrics"
	"trialdash/internal/session"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Per-session dataset state
	Sessions *session.Store
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	logger := internal.NewLogger(cfg.Log.Level)
	metrics.Register()

	c := &Container{
		Config:   cfg,
		Logger:   logger,
		Sessions: session.NewStore(cfg.Session.TTL, logger),
	}

	logger.With("Container").Info("initialized: session ttl=%s sweep=%s max upload=%d bytes",
		cfg.Session.TTL, cfg.Session.SweepInterval, cfg.Upload.MaxBytes)
	return c, nil
}
