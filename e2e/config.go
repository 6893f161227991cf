package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// MARKET_E2E_ADDR points to a running market server, the suites are skipped without it
	Addr      string `envconfig:"MARKET_E2E_ADDR"`
	JWTSecret string `envconfig:"MARKET_E2E_JWT_SECRET"`
	// E2E_DEBUG_CBOR allows dumping full gRPC request/response bodies in CBOR diagnostic notation
	DebugCBOR bool `envconfig:"E2E_DEBUG_CBOR" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
