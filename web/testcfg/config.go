package testcfg

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds test-specific configuration for web API acceptance tests
type Config struct {
	LogLevel         string        `env:"WEB_TEST_LOG_LEVEL" envDefault:"info"`
	LogHumanFriendly bool          `env:"WEB_TEST_LOG_HUMAN_FRIENDLY" envDefault:"true"`
	MigrationsDir    string        `env:"WEB_TEST_MIGRATIONS_DIR" envDefault:"../migrator/migrations"`
	SeedRecords      int           `env:"WEB_TEST_SEED_RECORDS" envDefault:"120"`
	SeedTimeout      time.Duration `env:"WEB_TEST_SEED_TIMEOUT" envDefault:"30s"`
}

// New loads test configuration from environment variables
func New() Config {
	return env.Must(env.ParseAs[Config]())
}
