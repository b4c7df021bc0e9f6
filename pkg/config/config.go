package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is read from the environment, optionally seeded from a .env file.
type Config struct {
	// StoreURL selects the key-value store, see repositories.NewStoreFromURL
	StoreURL    string `env:"SCOREKEEPER_STORE_URL" envDefault:"sqlite://scorekeeper.db"`
	RedisPrefix string `env:"SCOREKEEPER_REDIS_PREFIX" envDefault:"scorekeeper:"`
	// Addr is where the local API listens. Loopback by default, the API is not meant to be shared.
	Addr        string `env:"SCOREKEEPER_ADDR" envDefault:"127.0.0.1:9090"`
	LogLevel    string `env:"SCOREKEEPER_LOG_LEVEL" envDefault:"info"`
	TLSCertFile string `env:"SCOREKEEPER_TLS_CERT_FILE"`
	TLSKeyFile  string `env:"SCOREKEEPER_TLS_KEY_FILE"`

	// AllowedOrigins are browser origins permitted to call the API cross-origin
	AllowedOrigins []string `env:"SCOREKEEPER_ALLOWED_ORIGINS" envSeparator:","`
}

// Load reads the configuration. Missing .env files are ignored;
// variables already set in the environment take precedence over the files.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %v", err)
	}
	return cfg, nil
}
