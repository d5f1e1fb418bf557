package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/orgball2608/wedding-gallery/internal/app"
	"github.com/orgball2608/wedding-gallery/pkg/config"
	"github.com/orgball2608/wedding-gallery/pkg/logger"
	"go.uber.org/fx"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, _ := config.New()
	log := logger.New(logger.Opts{Env: cfg.App.Env})

	application := fx.New(
		fx.Logger(log),
		app.Module,
	)

	if err := application.Start(context.Background()); err != nil {
		log.Error("Failed to start application", "error", err)
		logger.Flush()
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := application.Stop(ctx); err != nil {
		log.Error("Failed to stop application", "error", err)
		os.Exit(1)
	}
}
