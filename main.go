package main

import (
	"FileVault/config"
	"FileVault/internal/app"
	"FileVault/internal/handler"
	"FileVault/router"
	"FileVault/utils"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// main initializes services and starts the HTTP server.
func main() {
	config.InitConfig()
	cfg := config.AppConfig

	logger := utils.NewLogger(cfg)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}
	defer a.Close()

	if cfg.LogFormat == "json" {
		gin.SetMode(gin.ReleaseMode)
	}
	files := handler.NewFileHandler(a.Files, cfg.PublicBaseURL, logger.Named("http"))
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.InitRouter(cfg, files, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
