package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/pricing-profiles-backend/pkg/config"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/db"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/logger"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/migrate"
)

type dbCommand func(ctx context.Context, r *migrate.Runner) error

func main() {
	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "one of: up, down, status, version, create, validate")
	dir := flag.String("dir", migrate.DefaultDir, "goose migrations directory")
	name := flag.String("name", "", "migration name for -cmd=create")
	version := flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	// Offline commands work without config or a database.
	switch *cmd {
	case "create":
		if strings.TrimSpace(*name) == "" {
			exitf("missing -name for create")
		}
		path, err := migrate.CreateSQLMigration(*dir, *name)
		if err != nil {
			exitf("create migration: %v", err)
		}
		fmt.Println("created migration:", path)
		return
	case "validate":
		if err := migrate.ValidateDir(*dir); err != nil {
			exitf("migration validation failed: %v", err)
		}
		fmt.Println("migration validation passed")
		return
	}

	commands := dbCommands(*version)
	run, ok := commands[*cmd]
	if !ok {
		exitf("unknown -cmd value: %s", *cmd)
	}

	cfg, err := config.Load()
	if err != nil {
		exitf("load config: %v", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": *cmd,
		"dir": *dir,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		fatal(ctx, logg, "database unavailable", err)
	}
	defer dbClient.Close()

	if dbClient.Driver() == config.DBDriverSQLite {
		exitf("goose migrations target postgres; sqlite schemas are created with PRICING_AUTO_MIGRATE=true")
	}
	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		fatal(ctx, logg, "sql database unavailable", err)
	}
	runner, err := migrate.NewRunner(sqlDB, *dir, logg)
	if err != nil {
		fatal(ctx, logg, "migration runner", err)
	}

	if err := run(ctx, runner); err != nil {
		fatal(ctx, logg, "migration failed", err)
	}
	logg.Info(ctx, "migration command finished")
}

// dbCommands maps each -cmd value that needs a database to its runner call.
func dbCommands(version string) map[string]dbCommand {
	return map[string]dbCommand{
		"up":     func(ctx context.Context, r *migrate.Runner) error { return r.Up(ctx) },
		"down":   func(ctx context.Context, r *migrate.Runner) error { return r.Down(ctx) },
		"status": func(ctx context.Context, r *migrate.Runner) error { return r.Status(ctx) },
		"version": func(ctx context.Context, r *migrate.Runner) error {
			if version == "" {
				return fmt.Errorf("missing -version for version command")
			}
			return r.MigrateTo(ctx, version)
		},
	}
}

func fatal(ctx context.Context, logg *logger.Logger, msg string, err error) {
	logg.Error(ctx, msg, err)
	os.Exit(1)
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
