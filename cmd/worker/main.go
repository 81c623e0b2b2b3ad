package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/claimsight/claimsight/internal/claims"
	"github.com/claimsight/claimsight/internal/config"
	"github.com/claimsight/claimsight/internal/detection"
	"github.com/claimsight/claimsight/internal/infrastructure"
	"github.com/claimsight/claimsight/internal/queue"
	"github.com/claimsight/claimsight/internal/reports"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed:", err)
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		log.Fatal("infrastructure init failed:", err)
	}

	logger := infra.Logger.With("module", "worker")
	logger.Info("claimsight worker starting",
		"version", cfg.Version,
		"queue", cfg.Queue.Name,
		"env", cfg.Env(),
	)

	if err := infra.Start(); err != nil {
		log.Fatal("infrastructure start failed:", err)
	}
	infra.Lifecycle.WaitForStartup()

	claimsSystem := claims.New(
		infra.Database.Connection(),
		infra.Storage,
		infra.Publisher,
		logger,
		cfg.API.Pagination,
	)

	detector := detection.NewScriptDetector(
		cfg.Detector.Python,
		cfg.Detector.ImageScript,
		cfg.Detector.VideoScript,
		cfg.Detector.TimeoutDuration(),
		logger,
	)

	reportsSystem := reports.New(
		infra.Database.Connection(),
		infra.Storage,
		claimsSystem,
		detector,
		cfg.Pipeline,
		logger,
		cfg.API.Pagination,
	)

	consumer := queue.NewConsumer(cfg.Queue, reportsSystem, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("consumer stopped", "error", err)
	}

	if err := infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
		logger.Error("shutdown incomplete", "error", err)
	}

	logger.Info("claimsight worker stopped")
}
