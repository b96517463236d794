package main

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"newsletter-back/internal/app"
	"newsletter-back/internal/config"
	"newsletter-back/pkg/logger"
)

// @title Newsletter API
// @version 1.0.0
// @description Topics, subscribers and scheduled content. Due content is mailed
// @description to the active subscribers of its topic by the dispatch scheduler,
// @description or immediately through POST /content/{id}/dispatch.
// @BasePath /api/
func main() {
	ctx := context.Background()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoadConfig()
	config.MustPrintConfig(cfg)

	loggerCfg := &logger.Config{
		Level:      cfg.Logger.Level,
		FormatJSON: cfg.FormatJSON,
		Rotation: logger.Rotation{
			File:       cfg.Rotation.File,
			MaxSize:    cfg.Rotation.MaxSize,
			MaxBackups: cfg.Rotation.MaxBackups,
			MaxAge:     cfg.Rotation.MaxAge,
		},
	}

	log := logger.MustSetupLogger(loggerCfg).With(
		zap.String("service", cfg.ServiceName),
		zap.String("version", cfg.Version),
	)

	errors := make(chan error, 1)

	application := app.MustNew(cfg, log)

	defer func() {
		if err := application.Shutdown(); err != nil {
			log.Error("Failed to shutdown application", zap.Error(err))
		}

		if err := log.Sync(); err != nil {
			log.Warn("Failed to sync logger", zap.Error(err))
		}

		log.Info("Application has shutdown")
	}()

	go func() { errors <- application.Run(ctx) }()

	select {
	case err := <-errors:
		if err != nil {
			log.Error("Server error, shutting down...", zap.Error(err))
		}
	case <-ctx.Done():
		log.Info("Received stop signal, shutting down...")
	}
}
