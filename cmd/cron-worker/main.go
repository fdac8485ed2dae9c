package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/directory-backend/internal/cron"
	"github.com/angelmondragon/directory-backend/internal/notifications"
	"github.com/angelmondragon/directory-backend/internal/projects"
	"github.com/angelmondragon/directory-backend/pkg/config"
	"github.com/angelmondragon/directory-backend/pkg/db"
	"github.com/angelmondragon/directory-backend/pkg/logger"
	"github.com/angelmondragon/directory-backend/pkg/metrics"
	"github.com/angelmondragon/directory-backend/pkg/migrate"
	"github.com/angelmondragon/directory-backend/pkg/redis"
)

const (
	cycleLockName   = "cron-worker"
	reminderLockKey = "stale-needs-reminder"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	cycleLock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(cycleLockName+":"+cfg.App.Env), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}
	sweepLock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(reminderLockKey), cfg.Reminders.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create reminder lock", err)
		os.Exit(1)
	}

	mailer, err := notifications.NewMailer(notifications.NewSender(cfg.Email, logg), cfg.App.URL)
	if err != nil {
		logg.Error(context.Background(), "failed to create mailer", err)
		os.Exit(1)
	}

	reminderJob, err := cron.NewStaleNeedsReminderJob(cron.StaleNeedsReminderJobParams{
		Logger:     logg,
		Repository: projects.NewReminderRepository(dbClient.DB()),
		Notifier:   mailer,
		Metrics:    metrics.NewReminderMetrics(prometheus.DefaultRegisterer),
		Lock:       sweepLock,
		StaleAfter: cfg.Reminders.StaleAfter,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reminder job", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry(reminderJob)
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     cycleLock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Reminders.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"jobs": len(registry.Jobs()),
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}
