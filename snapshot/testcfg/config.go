package testcfg

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds test-specific configuration for snapshot acceptance tests
type Config struct {
	MigrationsDir string        `env:"SNAPSHOT_TEST_MIGRATIONS_DIR" envDefault:"../../../migrator/migrations"`
	QueryTimeout  time.Duration `env:"SNAPSHOT_TEST_QUERY_TIMEOUT" envDefault:"5s"`
}

// New loads test configuration from environment variables
func New() Config {
	return env.Must(env.ParseAs[Config]())
}
