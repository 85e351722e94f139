package store

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures a Redis store.
type RedisConfig struct {
	Addr     string // host:port, default localhost:6379
	Password string
	DB       int

	// TTL expires keys after the given duration; zero keeps them forever.
	TTL time.Duration
}

// redisClient is the subset of *redis.Client the store uses.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// Redis stores values as plain Redis strings.
type Redis struct {
	client redisClient
	ttl    time.Duration
}

// NewRedis connects to Redis and verifies the connection with PING.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}
	return &Redis{client: client, ttl: cfg.TTL}, nil
}

// Get retrieves a value. redis.Nil is reported as a miss.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := RetryWithBackoff(ctx, func() error {
		b, err := r.client.Get(ctx, key).Bytes()
		if err != nil {
			return classifyRedis(err)
		}
		data = b
		return nil
	})
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, true, nil
}

// Set stores a value.
func (r *Redis) Set(ctx context.Context, key string, data []byte) error {
	err := RetryWithBackoff(ctx, func() error {
		return classifyRedis(r.client.Set(ctx, key, data, r.ttl).Err())
	})
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes a value.
func (r *Redis) Delete(ctx context.Context, key string) error {
	err := RetryWithBackoff(ctx, func() error {
		return classifyRedis(r.client.Del(ctx, key).Err())
	})
	if err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Close closes the client connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}

// classifyRedis marks network failures as retryable.
func classifyRedis(err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, redis.ErrPoolTimeout) {
		return Retryable(err)
	}
	return err
}

var _ Store = (*Redis)(nil)
