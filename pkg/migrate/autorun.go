package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/pricing-profiles-backend/pkg/config"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/db"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/logger"
)

// Migrator is the schema surface used by the dev auto-run.
type Migrator interface {
	AutoMigrate(ctx context.Context) error
	Driver() string
}

// MaybeRunDev brings the schema up to date when the feature flag is enabled.
// SQLite databases are migrated from the gorm models; Postgres runs the goose files.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	if client.Driver() == config.DBDriverSQLite {
		return autoMigrateModels(ctx, logg, client)
	}
	if !cfg.App.IsDev() {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	meta := map[string]any{"env": cfg.App.Env, "dir": DefaultDir}
	ctx = logg.WithFields(ctx, meta)
	logg.Info(ctx, "running Goose migrations (dev auto-run)")

	runner, err := NewRunner(sqlDB, DefaultDir, logg)
	if err != nil {
		return err
	}
	if err := runner.Up(ctx); err != nil {
		return err
	}

	logg.Info(ctx, "Goose migrations completed")
	return nil
}

func autoMigrateModels(ctx context.Context, logg *logger.Logger, m Migrator) error {
	ctx = logg.WithField(ctx, "driver", m.Driver())
	logg.Info(ctx, "running gorm auto-migrate")
	if err := m.AutoMigrate(ctx); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}
	return nil
}
