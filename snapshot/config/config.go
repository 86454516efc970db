package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all configuration loaded from environment variables.
// Command-line flags take these values as defaults.
type Config struct {
	InputPath        string        `env:"SNAPSHOT_INPUT" envDefault:"airdrop.json"`
	OutputPath       string        `env:"SNAPSHOT_OUTPUT" envDefault:"output.json"`
	GRPCURL          string        `env:"SNAPSHOT_GRPC_URL" envDefault:"localhost:9090"`
	TLS              bool          `env:"SNAPSHOT_GRPC_TLS" envDefault:"false"`
	Prefix           string        `env:"SNAPSHOT_PREFIX" envDefault:"mars"`
	MaxBatchSize     int           `env:"SNAPSHOT_MAX_BATCH_SIZE" envDefault:"5"`
	JoinPolicy       string        `env:"SNAPSHOT_JOIN_POLICY" envDefault:"collect-all"`
	CallTimeout      time.Duration `env:"SNAPSHOT_CALL_TIMEOUT" envDefault:"30s"`
	DatabaseURL      string        `env:"SNAPSHOT_DATABASE_URL"`
	MetricsFile      string        `env:"SNAPSHOT_METRICS_FILE"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	LogHumanFriendly bool          `env:"LOG_HUMAN_FRIENDLY" envDefault:"true"`
}

// parseConfig wraps env.Parse to return (Config, error) for use with env.Must
func parseConfig() (Config, error) {
	var cfg Config
	err := env.Parse(&cfg)
	return cfg, err
}

// New loads all configuration from environment variables
func New() Config {
	return env.Must(parseConfig())
}
