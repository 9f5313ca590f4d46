package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// Config describes the optional Redis used for registration claims.
type Config struct {
	Addr    string
	DB      int
	Timeout time.Duration
}

// Enabled reports whether a Redis address was configured.
func (c Config) Enabled() bool {
	return c.Addr != ""
}

// Connect creates a client and pings it. It returns (nil, nil) when Redis is
// not configured.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = pingTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	return client, nil
}
