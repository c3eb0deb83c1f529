package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/pricing-profiles-backend/internal/catalog"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/config"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/db"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/logger"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/migrate"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	seed := flag.Uint64("seed", 0, "random seed for reproducible catalogs (0 picks one)")
	flag.Parse()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"seed": *seed,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	requireResource(ctx, logg, "migrations", migrate.MaybeRunDev(ctx, cfg, logg, dbClient))

	repo := catalog.NewRepository(dbClient.DB())
	seeder, err := catalog.NewSeeder(dbClient, repo)
	requireResource(ctx, logg, "seeder", err)

	existing, err := repo.Count(ctx)
	requireResource(ctx, logg, "catalog", err)
	if existing > 0 {
		logg.Info(logg.WithField(ctx, "existing_products", existing), "replacing catalog")
	}

	opts := catalog.SeedOptions{}
	if *seed != 0 {
		opts.Rand = rand.New(rand.NewPCG(*seed, *seed))
	}

	start := time.Now()
	count, err := seeder.Seed(ctx, opts)
	if err != nil {
		logg.Error(ctx, "catalog seed failed", err)
		os.Exit(1)
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"products":    count,
		"duration_ms": time.Since(start).Milliseconds(),
	}), "catalog seeded")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
