package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/velora-market/velora-backend/pkg/config"
	"github.com/velora-market/velora-backend/pkg/db"
	"github.com/velora-market/velora-backend/pkg/logger"
	"github.com/velora-market/velora-backend/pkg/migrate"
)

type migrateFlags struct {
	cmd     string
	dir     string
	name    string
	version string
}

func parseFlags() migrateFlags {
	var f migrateFlags
	flag.StringVar(&f.cmd, "cmd", "up", "migration command: up|down|status|version|create|validate")
	flag.StringVar(&f.dir, "dir", migrate.DefaultDir, "goose migrations directory")
	flag.StringVar(&f.name, "name", "", "migration name (for create)")
	flag.StringVar(&f.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()
	return f
}

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	_ = godotenv.Load()
	flags := parseFlags()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(ctx, map[string]any{
		"env": cfg.App.Env,
		"cmd": flags.cmd,
		"dir": flags.dir,
	})

	if runOffline(flags) {
		return
	}

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	requireResource(ctx, logg, "sql database", err)

	logg.Info(ctx, "migrate ready")

	switch flags.cmd {
	case "up", "down", "status":
		if err := migrate.Run(ctx, sqlDB, flags.dir, flags.cmd); err != nil {
			fail("goose %s failed: %v", flags.cmd, err)
		}
	case "version":
		if flags.version == "" {
			fail("missing -version for version command")
		}
		if err := migrate.MigrateToVersion(ctx, sqlDB, flags.dir, flags.version); err != nil {
			fail("goose version migrate failed: %v", err)
		}
	default:
		fail("unknown -cmd value: %s", flags.cmd)
	}
}

// runOffline handles the commands that never touch a database and reports
// whether the command was one of them.
func runOffline(flags migrateFlags) bool {
	switch flags.cmd {
	case "create":
		if flags.name == "" {
			fail("missing -name for create")
		}
		path, err := migrate.CreateSQLMigration(flags.dir, flags.name)
		if err != nil {
			fail("failed to create migration: %v", err)
		}
		fmt.Println("created migration:", path)
		return true
	case "validate":
		if err := migrate.ValidateDir(flags.dir); err != nil {
			fail("migration validation failed: %v", err)
		}
		fmt.Println("migration validation passed")
		return true
	}
	return false
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
