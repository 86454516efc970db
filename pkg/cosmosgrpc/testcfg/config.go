package testcfg

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds test-specific configuration for cosmosgrpc client acceptance tests
type Config struct {
	GRPCURL     string        `env:"COSMOS_TEST_GRPC_URL" envDefault:"https://grpc.marsprotocol.io:443"`
	Address     string        `env:"COSMOS_TEST_ADDRESS" envDefault:"mars17xpfvakm2amg962yls6f84z3kell8c5l4v3n8t"`
	CallTimeout time.Duration `env:"COSMOS_TEST_CALL_TIMEOUT" envDefault:"30s"`
}

// New loads test configuration from environment variables
func New() Config {
	return env.Must(env.ParseAs[Config]())
}
