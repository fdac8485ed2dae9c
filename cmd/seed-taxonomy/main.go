package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/directory-backend/internal/taxonomy"
	"github.com/angelmondragon/directory-backend/pkg/config"
	"github.com/angelmondragon/directory-backend/pkg/db"
	"github.com/angelmondragon/directory-backend/pkg/logger"
	"github.com/angelmondragon/directory-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "seed-taxonomy"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "seed-taxonomy",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithField(context.Background(), "env", cfg.App.Env)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	params := taxonomy.ServiceParams{
		Repo:              taxonomy.NewRepository(dbClient.DB()),
		TransactionRunner: dbClient,
		CacheTTL:          cfg.Taxonomy.CacheTTL,
		Logger:            logg,
	}
	// A stale cached taxonomy would hide new options until the TTL lapses,
	// so the cache is cleared when redis is reachable.
	if redisClient, err := redis.New(ctx, cfg.Redis, logg); err != nil {
		logg.Warn(ctx, "redis unavailable, taxonomy cache will expire on its own")
	} else {
		defer redisClient.Close()
		params.Cache = redisClient
	}

	svc, err := taxonomy.NewService(params)
	requireResource(ctx, logg, "taxonomy service", err)

	report, err := svc.Seed(ctx, taxonomy.DefaultTaxonomy)
	if err != nil {
		logg.Error(ctx, "taxonomy seed failed", err)
		os.Exit(1)
	}
	if err := svc.Invalidate(ctx); err != nil {
		logg.Warn(ctx, "failed to invalidate taxonomy cache")
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"categories_created": report.CategoriesCreated,
		"categories_updated": report.CategoriesUpdated,
		"options_created":    report.OptionsCreated,
		"options_updated":    report.OptionsUpdated,
	}), "taxonomy seeded")
	fmt.Printf("seeded taxonomy: %d categories created, %d updated; %d options created, %d updated\n",
		report.CategoriesCreated, report.CategoriesUpdated, report.OptionsCreated, report.OptionsUpdated)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
