package main

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is read from MARKET_* variables.
type Config struct {
	Addr  string `envconfig:"ADDR" default:"localhost:8080"`
	Token string `envconfig:"TOKEN"`
	// JWT_SECRET is only needed by the token command
	JWTSecret     string        `envconfig:"JWT_SECRET"`
	TokenDuration time.Duration `envconfig:"TOKEN_DURATION" default:"24h"`
	Timeout       time.Duration `envconfig:"TIMEOUT" default:"10s"`
	Colours       bool          `envconfig:"COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("MARKET", &cfg)
	return cfg, err
}
