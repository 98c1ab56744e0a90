package cache

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Redis wraps a go-redis client
type Redis struct {
	client *redis.Client
}

// Config defines connection parameters for Redis
type Config struct {
	Addr     string
	Password string
	DB       int
	UseTLS   bool
}

// New returns a Redis client based on the provided configuration
func New(cfg Config) *Redis {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return &Redis{client: redis.NewClient(opts)}
}

// Client exposes the underlying go-redis client
func (r *Redis) Client() *redis.Client {
	return r.client
}

// Ping verifies Redis connectivity
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close releases Redis resources
func (r *Redis) Close() error {
	if err := r.client.Close(); err != nil {
		log.Warn().Err(err).Msg("⚠️ Failed closing redis")
		return err
	}
	return nil
}
