package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"trialdash/internal/config"
	"trialdash/internal/container"
	"trialdash/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	logger := appContainer.Logger.With("Main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := ui.NewServer(appContainer)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Run(ctx)
	})
	if appConfig.Ops.Enabled {
		g.Go(func() error {
			return ui.RunOps(ctx, appConfig.Ops.Port, appContainer.Sessions, appContainer.Logger)
		})
		logger.Info("ops endpoints on :%s (/healthz, /metrics, /debug/pprof)", appConfig.Ops.Port)
	}
	g.Go(func() error {
		return appContainer.Sessions.RunSweeper(ctx, appConfig.Session.SweepInterval)
	})

	logger.Info("starting trial dashboard on port %s", appConfig.Server.Port)
	if err := g.Wait(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
	logger.Info("shutdown complete")
}
