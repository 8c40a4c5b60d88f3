package main

import (
	"FileVault/config"
	"FileVault/internal/app"
	"FileVault/internal/worker"
	"FileVault/utils"
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

func main() {
	config.InitConfig()
	cfg := config.AppConfig

	logger := utils.NewLogger(cfg).Named("verify-worker")
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}
	defer a.Close()

	logger.Info("verify worker started")
	if err := worker.RunVerifyWorker(ctx, cfg, a.Files, logger); err != nil {
		logger.Fatal("verify worker stopped", zap.Error(err))
	}
}
