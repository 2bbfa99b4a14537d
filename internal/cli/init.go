// Package cli provides common CLI initialization utilities shared by
// cmd/fintrack, cmd/recurring-worker, cmd/notification-worker and cmd/token-init.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fintrack/internal/amqp"
	"fintrack/internal/config"
	applog "fintrack/internal/log"
	"fintrack/internal/notify"
	"fintrack/internal/storage"
	"fintrack/internal/worker"
)

// SetupLogger builds the process logger from a LOG_LEVEL value and installs
// it as the slog default. Unknown levels fall back to info.
func SetupLogger(level string) *applog.Logger {
	lvl, err := config.ParseLevel(level)
	logger := applog.New(applog.Config{
		Level:     lvl,
		Component: applog.ComponentApp,
		Output:    os.Stdout,
	})
	applog.SetDefault(logger)
	if err != nil {
		logger.Warn("Unknown log level, using info", "level", level)
	}
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite initializes a SQLite repository with the given path.
// Returns the repository or exits the process on failure.
func InitSQLite(logger *applog.Logger, dbPath string) *storage.SQLiteRepository {
	sqliteRepo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return sqliteRepo
}

// Notifications is the asynchronous delivery pipeline: a worker pool that
// runs budget checks and sends, and the dispatcher feeding it.
type Notifications struct {
	Pool       *worker.Pool
	Dispatcher *notify.Dispatcher
	amqp       *amqp.Client
}

// StartNotifications starts the worker pool and picks the sender. With
// AMQP_URL set notifications are published to the broker for the
// notification-worker; otherwise they are written to the log.
func StartNotifications(ctx context.Context, logger *applog.Logger, cfg *config.Config) (*Notifications, error) {
	pool := worker.NewPool(worker.Config{
		Workers:   cfg.NotifyWorkers,
		QueueSize: cfg.NotifyQueueSize,
		RetryBase: cfg.NotifyRetryBase,
	})
	if err := pool.Start(ctx); err != nil {
		return nil, fmt.Errorf("start worker pool: %w", err)
	}

	n := &Notifications{Pool: pool}
	var sender notify.Sender = notify.LogSender{Logger: logger.Logger.With(applog.FieldComponent, applog.ComponentNotify)}
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, notifications go to the log", "error", err)
		} else {
			n.amqp = client
			sender = client
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled, notifications go to the log")
	}

	n.Dispatcher = notify.NewDispatcher(sender, pool, cfg.NotifyMaxAttempts)
	return n, nil
}

// Close drains queued jobs, then closes the broker connection.
func (n *Notifications) Close(ctx context.Context) error {
	err := n.Pool.Stop(ctx)
	if n.amqp != nil {
		if cerr := n.amqp.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		cancel()

		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
