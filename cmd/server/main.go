package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hatake-api/internal/app"
	"hatake-api/internal/config"
	"hatake-api/internal/logger"

	"github.com/common-nighthawk/go-figure"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", map[string]any{
			"error": err.Error(),
		})
	}

	figure.NewFigure(cfg.AppName, "", true).Print()

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize app", map[string]any{
			"error": err.Error(),
		})
	}

	go func() {
		if err := application.Run(); err != nil {
			logger.Fatal("http server failed", map[string]any{
				"error": err.Error(),
			})
		}
	}()

	logger.Info("server started", map[string]any{
		"app":             cfg.AppName,
		"port":            cfg.AppPort,
		"session_backend": cfg.SessionBackend,
		"oauth_enabled":   cfg.OAuthEnabled(),
	})

	<-ctx.Done() // wait for Ctrl+C

	logger.Info("shutdown signal received", nil)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("graceful shutdown failed", map[string]any{
			"error": err.Error(),
		})
	}

	logger.Info("server stopped cleanly", nil)
}
