package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/screwyprof/airdrop/migrator"
	"github.com/screwyprof/airdrop/migrator/config"
	"github.com/screwyprof/airdrop/pkg/clock"
	"github.com/screwyprof/airdrop/pkg/logger"
	"github.com/screwyprof/airdrop/pkg/pgxdb"
	"github.com/screwyprof/airdrop/snapshot/store/pgxstore"
)

// These values are overridden at build time using -ldflags
var (
	version = "dev"
	date    = "unknown"
)

func main() {
	// Optional .env file; real environment variables take precedence
	_ = godotenv.Load()

	cfg := config.New()

	log := logger.NewFromConfig(logger.Config{
		LogLevel:         cfg.LogLevel,
		LogHumanFriendly: cfg.LogHumanFriendly,
	})
	slog.SetDefault(log)

	log.Info("Migrating snapshot database",
		slog.String("migrationsDir", cfg.MigrationsDir),
		slog.Int("seedDemoRecords", cfg.SeedDemoRecords),
		slog.String("version", version),
		slog.String("date", date),
	)

	if err := migrate(cfg, log); err != nil {
		log.Error("Migration failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("Snapshot database is up to date")
}

// migrate applies the schema and optionally seeds demo snapshots, all bounded by OperationTimeout
func migrate(cfg config.Config, log *slog.Logger) error {
	signalCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(signalCtx, cfg.OperationTimeout)
	defer cancel()

	db, err := pgxdb.NewConnection(ctx, cfg.DatabaseURL, pgxdb.WithMaxConns(2))
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	store, closeStore := pgxstore.New(db)
	defer closeStore()

	if err := migrator.ApplyMigrations(db, cfg.MigrationsDir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	log.Info("Migrations applied")

	if cfg.SeedDemoRecords <= 0 {
		return nil
	}

	records, err := migrator.DemoRecords(cfg.SeedDemoRecords)
	if err != nil {
		return fmt.Errorf("build demo snapshots: %w", err)
	}
	if err := store.Save(ctx, records, clock.SystemClock{}.Now()); err != nil {
		return fmt.Errorf("seed demo snapshots: %w", err)
	}
	log.Info("Demo snapshots seeded", slog.Int("records", len(records)))

	return nil
}
