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
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/pricing-profiles-backend/api/routes"
	"github.com/angelmondragon/pricing-profiles-backend/internal/catalog"
	"github.com/angelmondragon/pricing-profiles-backend/internal/profiles"
	"github.com/angelmondragon/pricing-profiles-backend/internal/worksheet"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/config"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/db"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/env"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/logger"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/metrics"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/migrate"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

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
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	var redisClient *redis.Client
	var locker profiles.SaveLocker
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, redisClient.Close()) }()
		locker = profiles.NewRedisSaveLocker(redisClient, cfg.Profiles.SaveLockTTL)
	} else if cfg.App.IsProd() {
		return errors.New("redis is required in prod: save locks and idempotency must be shared across instances")
	} else {
		logg.Warn(ctx, "redis disabled, using in-process save locks and no idempotency replay")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	opMetrics := metrics.NewOperationMetrics(registry)

	catalogRepo := catalog.NewRepository(dbClient.DB())
	profileService, err := profiles.NewService(profiles.NewRepository(dbClient.DB()), dbClient, locker, opMetrics, logg)
	if err != nil {
		return err
	}
	worksheetService, err := worksheet.NewService(catalogRepo, profileService, opMetrics, logg)
	if err != nil {
		return err
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:     cfg,
			Logger:     logg,
			DB:         dbClient,
			Redis:      redisClient,
			Registry:   registry,
			Catalog:    catalogRepo,
			Profiles:   profileService,
			Worksheets: worksheetService,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":    cfg.App.Env,
		"addr":   addr,
		"driver": dbClient.Driver(),
	})
	logg.Info(logCtx, "starting api server")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logg.Info(logCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
