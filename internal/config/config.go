package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds daemon settings, read from GATEHOUSE_* environment variables.
type Config struct {
	Port        string        `env:"GATEHOUSE_PORT" envDefault:"8080"`
	DBPath      string        `env:"GATEHOUSE_DB_PATH" envDefault:"gatehouse.db"`
	VerifierURL string        `env:"GATEHOUSE_VERIFIER_URL" envDefault:"https://verifier.login.persona.org/verify"`
	CookieKey   string        `env:"GATEHOUSE_COOKIE_KEY"`
	CookieTTL   time.Duration `env:"GATEHOUSE_COOKIE_TTL" envDefault:"720h"`
	HTTPS       bool          `env:"GATEHOUSE_HTTPS" envDefault:"false"`
	LogLevel    string        `env:"GATEHOUSE_LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment into a Config. The cookie signing key has no
// usable default and must be set.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.CookieKey == "" {
		return Config{}, fmt.Errorf("GATEHOUSE_COOKIE_KEY is required")
	}
	return cfg, nil
}
