package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/lullaby-ai/server/internal/shared/config"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to redis and verifies the connection. Redis only
// backs the job status cache, so callers treat a nil client as cache-off
// rather than a hard failure.
func NewRedisClient(cfg *config.RedisConfig) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

// Close closes the Redis client.
func Close(client redis.UniversalClient) error {
	return client.Close()
}
