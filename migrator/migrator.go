package migrator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/peterldowns/pgtestdb"
	"github.com/peterldowns/pgtestdb/migrators/sqlmigrator"
	migrate "github.com/rubenv/sql-migrate"

	"github.com/screwyprof/airdrop/pkg/pgxdb"
	"github.com/screwyprof/airdrop/snapshot"
	"github.com/screwyprof/airdrop/snapshot/store/pgxstore"
)

// Migration constants
const (
	migrationsTableName = "schema_migrations"
	schemaHashPrefix    = "schema_only_"
	seededHashPrefix    = "seeded_demo_"
	demoPrefix          = "mars"
)

// Migration-related errors
var (
	ErrMigrationExecution = errors.New("migration execution failed")
	ErrSeedFailed         = errors.New("demo data seeding failed")
)

// SchemaMigrator is a pgtestdb.Migrator that applies the snapshot schema and nothing else
type SchemaMigrator struct {
	migrationsDir string
}

// NewSchemaMigrator creates a migrator that applies schema migrations only
func NewSchemaMigrator(migrationsDir string) *SchemaMigrator {
	return &SchemaMigrator{
		migrationsDir: migrationsDir,
	}
}

func (m *SchemaMigrator) Hash() (string, error) {
	baseHash, err := migrationsHash(m.migrationsDir)
	if err != nil {
		return "", err
	}
	return schemaHashPrefix + baseHash, nil
}

func (m *SchemaMigrator) Migrate(ctx context.Context, db *sql.DB, conf pgtestdb.Config) error {
	return applyMigrations(db, m.migrationsDir)
}

// SeededMigrator is a pgtestdb.Migrator that applies the schema and stores DemoRecords,
// giving the read API something to page through
type SeededMigrator struct {
	migrationsDir string
	records       int
	takenAt       time.Time
	seedTimeout   time.Duration
}

// NewSeededMigrator creates a migrator that applies schema + seeds demo data
func NewSeededMigrator(migrationsDir string, records int, takenAt time.Time, seedTimeout time.Duration) *SeededMigrator {
	return &SeededMigrator{
		migrationsDir: migrationsDir,
		records:       records,
		takenAt:       takenAt,
		seedTimeout:   seedTimeout,
	}
}

func (m *SeededMigrator) Hash() (string, error) {
	baseHash, err := migrationsHash(m.migrationsDir)
	if err != nil {
		return "", err
	}
	return seededHashPrefix + baseHash + "_" + strconv.Itoa(m.records) + "_" + strconv.FormatInt(m.takenAt.Unix(), 10), nil
}

func (m *SeededMigrator) Migrate(ctx context.Context, db *sql.DB, conf pgtestdb.Config) error {
	if err := applyMigrations(db, m.migrationsDir); err != nil {
		return err
	}
	return m.seedDemoData(ctx, conf.URL())
}

// seedDemoData stores the demo snapshots in the template database
func (m *SeededMigrator) seedDemoData(ctx context.Context, dbURL string) error {
	slog.InfoContext(ctx, "Seeding demo database with snapshot records",
		"records", m.records,
		"takenAt", m.takenAt,
		"timeout", m.seedTimeout)

	seedCtx, cancel := context.WithTimeout(ctx, m.seedTimeout)
	defer cancel()

	pool, err := pgxdb.NewConnection(seedCtx, dbURL)
	if err != nil {
		return err
	}

	store, storeCloser := pgxstore.New(pool)
	defer storeCloser()

	records, err := DemoRecords(m.records)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSeedFailed, err)
	}
	if err := store.Save(seedCtx, records, m.takenAt); err != nil {
		return fmt.Errorf("%w: %w", ErrSeedFailed, err)
	}
	return nil
}

// DemoRecords builds n deterministic snapshot records with valid mars addresses.
// Record i has sequence i, an allocation of (i+1)*1000 and a stake of i*250.
func DemoRecords(n int) ([]snapshot.Record, error) {
	records := make([]snapshot.Record, 0, n)
	for i := range n {
		address, err := DemoAddress(i)
		if err != nil {
			return nil, err
		}
		records = append(records, snapshot.Record{
			Address:       address,
			Sequence:      uint64(i),
			AirdropAmount: snapshot.AmountFrom64(uint64(i+1) * 1000),
			StakedAmount:  snapshot.AmountFrom64(uint64(i) * 250),
		})
	}
	return records, nil
}

// DemoAddress returns the i-th demo address
func DemoAddress(i int) (string, error) {
	payload := make([]byte, 20)
	for j := range payload {
		payload[j] = byte(i + j*31)
	}
	data, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(demoPrefix, data)
}

// ApplyMigrations applies database migrations using sql-migrate with the provided pgx pool
func ApplyMigrations(pool *pgxpool.Pool, migrationsDir string) error {
	// Create sql.DB from the pgx pool for sql-migrate
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	return applyMigrations(db, migrationsDir)
}

// migrationSet reads the migration files of dir and tracks them in schema_migrations
func migrationSet(dir string) (*migrate.FileMigrationSource, *migrate.MigrationSet) {
	return &migrate.FileMigrationSource{Dir: dir}, &migrate.MigrationSet{TableName: migrationsTableName}
}

func migrationsHash(migrationsDir string) (string, error) {
	hash, err := sqlmigrator.New(migrationSet(migrationsDir)).Hash()
	if err != nil {
		return "", fmt.Errorf("failed to calculate migration hash for %s: %w", migrationsDir, err)
	}
	return hash, nil
}

// applyMigrations applies database migrations using sql-migrate
func applyMigrations(db *sql.DB, migrationsDir string) error {
	source, set := migrationSet(migrationsDir)

	applied, err := set.Exec(db, "postgres", source, migrate.Up)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMigrationExecution, err)
	}
	slog.Debug("Applied migrations", slog.Int("count", applied), slog.String("dir", migrationsDir))
	return nil
}
