package migratortest

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for pgtestdb
	"github.com/peterldowns/pgtestdb"
	"github.com/stretchr/testify/require"

	"github.com/screwyprof/airdrop/migrator"
)

// serverConfig points pgtestdb at the local development server from docker-compose
var serverConfig = pgtestdb.Config{
	DriverName: "pgx",
	User:       "airdrop",
	Password:   "airdrop",
	Host:       "localhost",
	Port:       "5432",
	Options:    "sslmode=disable",
}

// CreateSchemaTestDatabase returns a pool on a fresh database with only the schema applied
func CreateSchemaTestDatabase(t *testing.T, migrationsDir string) *pgxpool.Pool {
	t.Helper()

	return open(t, migrator.NewSchemaMigrator(migrationsDir))
}

// CreateSeededTestDatabase returns a pool on a fresh database holding records demo snapshots taken at takenAt.
// Databases with equal arguments are cloned from one template.
func CreateSeededTestDatabase(t *testing.T, migrationsDir string, records int, takenAt time.Time, seedTimeout time.Duration) *pgxpool.Pool {
	t.Helper()

	return open(t, migrator.NewSeededMigrator(migrationsDir, records, takenAt, seedTimeout))
}

func open(t *testing.T, m pgtestdb.Migrator) *pgxpool.Pool {
	t.Helper()

	url := pgtestdb.Custom(t, serverConfig, m).URL()
	t.Logf("testdbconf: %s", url)

	pool, err := pgxpool.New(t.Context(), url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool
}
