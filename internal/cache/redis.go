// Package cache provides a short-TTL read-through cache for backend
// responses. It is strictly an optimization: a cache failure is treated as a
// miss and never fails an invocation, and nothing durable is ever stored.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the minimal surface the backend decorator needs.
type Store interface {
	// Get returns the cached value for key, or ok=false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a value under key for the store's TTL.
	Set(ctx context.Context, key string, value []byte)
}

// Config holds Redis connection settings for the response cache.
type Config struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`

	// KeyPrefix namespaces all cache keys, so one Redis can be shared.
	KeyPrefix string `yaml:"key_prefix"`
}

// Redis is a Store backed by a Redis instance.
type Redis struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
	logger    *slog.Logger
}

// New connects to Redis and verifies the connection with a ping.
func New(cfg Config, logger *slog.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewWithClient(client, cfg, logger), nil
}

// NewWithClient wraps an existing client. Used by tests with miniredis.
func NewWithClient(client *redis.Client, cfg Config, logger *slog.Logger) *Redis {
	if logger == nil {
		logger = slog.Default()
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Redis{
		client:    client,
		ttl:       ttl,
		keyPrefix: cfg.KeyPrefix,
		logger:    logger.With("component", "cache"),
	}
}

func (r *Redis) key(key string) string {
	return r.keyPrefix + key
}

// Get returns the cached value for key. Redis errors other than a plain miss
// are logged and reported as misses.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	return val, true
}

// Set stores a value under key for the configured TTL. Failures are logged
// and otherwise ignored.
func (r *Redis) Set(ctx context.Context, key string, value []byte) {
	if err := r.client.Set(ctx, r.key(key), value, r.ttl).Err(); err != nil {
		r.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

// Close releases the underlying Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}
