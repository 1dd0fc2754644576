package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/VanillaLatte1/project-ant/internal/app"
	"github.com/VanillaLatte1/project-ant/internal/config"
	"github.com/VanillaLatte1/project-ant/internal/logger"
)

func main() {
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", map[string]any{
			"error": err.Error(),
		})
	}

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
		if err := application.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", map[string]any{
				"error": err.Error(),
			})
		}
	}()

	logger.Info("auth backend started", map[string]any{
		"port": cfg.AppPort,
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

	logger.Info("auth backend stopped cleanly", nil)
}
