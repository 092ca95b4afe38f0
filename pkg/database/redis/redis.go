package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"quixellMarket/pkg/config"
	"quixellMarket/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// Options maps the redis section of the config onto client options.
func Options(cfg config.RedisConfig) *redis.Options {
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 10
	}

	return &redis.Options{
		Addr:         net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     poolSize,
		MinIdleConns: max(1, poolSize/5),
	}
}

// NewRedisClient opens the forecast cache connection and pings it once.
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	opts := Options(cfg)
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}

	logger.Debug("redis pool ready", "addr", opts.Addr, "db", opts.DB, "pool_size", opts.PoolSize)

	return client, nil
}

// CloseRedisClient closes the connection. A nil client is a no-op so callers
// can close unconditionally when the cache is disabled.
func CloseRedisClient(client *redis.Client) error {
	if client == nil {
		return nil
	}
	return client.Close()
}
