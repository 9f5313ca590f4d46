package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=5000"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// CORSAllowOrigins is a comma separated list of allowed origins.
	CORSAllowOrigins []string `env:"CORS_ALLOW_ORIGINS, default=*"`

	BcryptCost int `env:"BCRYPT_COST, default=10"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI        string `env:"MONGO_URI,        default=mongodb://localhost:27017"`
	Database   string `env:"MONGO_DB,         default=demodb"`
	Collection string `env:"MONGO_COLLECTION, default=users"`
}

// RedisConfig is optional. Leaving REDIS_ADDR empty disables registration claims.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"`
	DB       int           `env:"REDIS_DB,               default=0"`
	ClaimTTL time.Duration `env:"REGISTRATION_CLAIM_TTL, default=10s"`
}

// IsDevelopment reports whether the service runs with ENV=development.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
