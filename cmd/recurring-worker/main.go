package main

import (
	"context"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"fintrack/internal/cli"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting recurring-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	notifications, err := cli.StartNotifications(context.Background(), logger, cfg)
	if err != nil {
		logger.Error("Failed to start notification pipeline", "error", err)
		os.Exit(1)
	}

	svc := services.New(repo, notifications.Dispatcher, notifications.Pool)
	processor := svc.Processor

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rlog := logger.WithComponent(applog.ComponentRecurring)
	run := func(trigger string) {
		result, err := processor.ProcessDue(ctx, time.Now().UTC())
		if err != nil {
			rlog.ErrorContext(ctx, "Recurring processing failed", "trigger", trigger, "error", err)
			return
		}
		rlog.InfoContext(ctx, "Recurring processing complete",
			"trigger", trigger,
			"due", result.Due,
			"created", result.Created,
			"retired", result.Retired,
			"failed", result.Failed)
	}

	// SkipIfStillRunning keeps ticks from overlapping on a slow run.
	scheduler := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	if _, err := scheduler.AddFunc(cfg.RecurringSchedule, func() { run("schedule") }); err != nil {
		logger.Error("Invalid recurring schedule", "schedule", cfg.RecurringSchedule, "error", err)
		os.Exit(1)
	}

	logger.Info("Recurring processor configured",
		"schedule", cfg.RecurringSchedule,
		"sqlite_db", cfg.SQLiteDBPath)

	run("startup")
	scheduler.Start()

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		stopped := scheduler.Stop()
		select {
		case <-stopped.Done():
		case <-ctx.Done():
		}
		cancel()
		if err := notifications.Close(ctx); err != nil {
			logger.Error("Notification pipeline shutdown error", "error", err)
		}
	})

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Recurring-worker stopped")
}
