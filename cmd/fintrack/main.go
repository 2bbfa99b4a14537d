package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	"fintrack/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// the pool outlives the signal context so queued jobs drain on shutdown
	notifications, err := cli.StartNotifications(context.Background(), logger, cfg)
	if err != nil {
		logger.Error("Failed to start notification pipeline", "error", err)
		os.Exit(1)
	}

	svc := services.New(repo, notifications.Dispatcher, notifications.Pool)

	srv := apphttp.NewServer(":"+cfg.Port, svc, repo, apphttp.Options{
		JWTSecret: []byte(cfg.JWTSecret),
		RateLimit:    60,
		UserCacheTTL: 5 * time.Second,
		Logger:       logger,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := notifications.Close(ctx); err != nil {
			logger.Error("Notification pipeline shutdown error", "error", err)
		}
	})

	logger.Info("Starting fintrack server", "port", cfg.Port, "db", cfg.SQLiteDBPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
