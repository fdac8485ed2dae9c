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
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/directory-backend/api/routes"
	"github.com/angelmondragon/directory-backend/internal/bookmarks"
	"github.com/angelmondragon/directory-backend/internal/cron"
	"github.com/angelmondragon/directory-backend/internal/jobs"
	"github.com/angelmondragon/directory-backend/internal/needs"
	"github.com/angelmondragon/directory-backend/internal/notifications"
	"github.com/angelmondragon/directory-backend/internal/profiles"
	"github.com/angelmondragon/directory-backend/internal/projects"
	"github.com/angelmondragon/directory-backend/internal/taxonomy"
	"github.com/angelmondragon/directory-backend/internal/users"
	stripewebhook "github.com/angelmondragon/directory-backend/internal/webhooks/stripe"
	"github.com/angelmondragon/directory-backend/pkg/config"
	"github.com/angelmondragon/directory-backend/pkg/db"
	"github.com/angelmondragon/directory-backend/pkg/logger"
	"github.com/angelmondragon/directory-backend/pkg/metrics"
	"github.com/angelmondragon/directory-backend/pkg/migrate"
	"github.com/angelmondragon/directory-backend/pkg/redis"
	"github.com/angelmondragon/directory-backend/pkg/stripe"
)

const (
	shutdownTimeout = 15 * time.Second
	reminderLockKey = "stale-needs-reminder"
	stripeScope     = "stripe-webhook"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	deps, err := buildDependencies(cfg, logg, dbClient, redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
		logg.Info(ctx, "api server shut down gracefully")
	}
}

func buildDependencies(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (routes.Dependencies, error) {
	gormDB := dbClient.DB()

	userRepo := users.NewRepository(gormDB)
	userService, err := users.NewService(userRepo)
	if err != nil {
		return routes.Dependencies{}, err
	}

	mailer, err := notifications.NewMailer(notifications.NewSender(cfg.Email, logg), cfg.App.URL)
	if err != nil {
		return routes.Dependencies{}, err
	}

	profileRepo := profiles.NewRepository(gormDB)
	profileService, err := profiles.NewService(profiles.ServiceParams{
		Repo:              profileRepo,
		UserRepo:          userRepo,
		TransactionRunner: dbClient,
		Notifier:          mailer,
		Logger:            logg,
	})
	if err != nil {
		return routes.Dependencies{}, err
	}

	taxonomyService, err := taxonomy.NewService(taxonomy.ServiceParams{
		Repo:              taxonomy.NewRepository(gormDB),
		TransactionRunner: dbClient,
		Cache:             redisClient,
		CacheTTL:          cfg.Taxonomy.CacheTTL,
		Logger:            logg,
	})
	if err != nil {
		return routes.Dependencies{}, err
	}

	projectService, err := projects.NewService(projects.ServiceParams{
		Repo:              projects.NewRepository(gormDB),
		Profiles:          profileRepo,
		TransactionRunner: dbClient,
		Logger:            logg,
	})
	if err != nil {
		return routes.Dependencies{}, err
	}

	needsService, err := needs.NewService(needs.ServiceParams{
		Repo:              needs.NewRepository(gormDB),
		Taxonomy:          taxonomyService,
		TransactionRunner: dbClient,
		Logger:            logg,
	})
	if err != nil {
		return routes.Dependencies{}, err
	}

	jobService, err := jobs.NewService(jobs.ServiceParams{
		Repo:     jobs.NewRepository(gormDB),
		Profiles: profileRepo,
		Users:    userRepo,
		Logger:   logg,
	})
	if err != nil {
		return routes.Dependencies{}, err
	}

	bookmarkService, err := bookmarks.NewService(bookmarks.NewRepository(gormDB))
	if err != nil {
		return routes.Dependencies{}, err
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(reminderLockKey), cfg.Reminders.LockTTL)
	if err != nil {
		return routes.Dependencies{}, err
	}
	reminderJob, err := cron.NewStaleNeedsReminderJob(cron.StaleNeedsReminderJobParams{
		Logger:     logg,
		Repository: projects.NewReminderRepository(gormDB),
		Notifier:   mailer,
		Metrics:    metrics.NewReminderMetrics(prometheus.DefaultRegisterer),
		Lock:       lock,
		StaleAfter: cfg.Reminders.StaleAfter,
	})
	if err != nil {
		return routes.Dependencies{}, err
	}

	deps := routes.Dependencies{
		DB:        dbClient,
		Redis:     redisClient,
		Gatherer:  prometheus.DefaultGatherer,
		Users:     userService,
		Profiles:  profileService,
		Projects:  projectService,
		Needs:     needsService,
		Jobs:      jobService,
		Bookmarks: bookmarkService,
		Taxonomy:  taxonomyService,
		Reminders: reminderJob,
	}

	// Stripe is optional: without a webhook secret the route answers 500
	// and the employer flag is managed by hand.
	if cfg.Stripe.Secret == "" {
		logg.Warn(context.Background(), "stripe webhook secret not set, employer webhook disabled")
		return deps, nil
	}
	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		return routes.Dependencies{}, err
	}
	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{Users: userService, Logger: logg})
	if err != nil {
		return routes.Dependencies{}, err
	}
	guard, err := stripewebhook.NewIdempotencyGuard(redisClient, cfg.Webhooks.IdempotencyTTL, stripeScope)
	if err != nil {
		return routes.Dependencies{}, err
	}
	deps.StripeClient = stripeClient
	deps.StripeWebhookService = webhookService
	deps.StripeWebhookGuard = guard
	return deps, nil
}
