package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const statusKeyPrefix = "lullaby:job_status:"

// StatusCache caches job status snapshots for the polling path, so that
// frequent status polls do not hit the database.
type StatusCache interface {
	Get(ctx context.Context, requestID uuid.UUID) (*Job, bool)
	Set(ctx context.Context, job *Job)
	Delete(ctx context.Context, requestID uuid.UUID)
}

// RedisStatusCache implements StatusCache backed by Redis.
type RedisStatusCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisStatusCache creates a new Redis-backed status cache.
func NewRedisStatusCache(client redis.UniversalClient, ttl time.Duration) *RedisStatusCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisStatusCache{client: client, ttl: ttl}
}

// Get retrieves a cached job snapshot.
func (c *RedisStatusCache) Get(ctx context.Context, requestID uuid.UUID) (*Job, bool) {
	data, err := c.client.Get(ctx, statusKey(requestID)).Bytes()
	if err != nil {
		// Cache miss or Redis unavailable; callers fall back to the database.
		if !errors.Is(err, redis.Nil) {
			return nil, false
		}
		return nil, false
	}

	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, false
	}
	return &job, true
}

// Set stores a job snapshot. Errors are ignored; the cache is best-effort.
func (c *RedisStatusCache) Set(ctx context.Context, job *Job) {
	data, err := json.Marshal(job)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, statusKey(job.RequestID), data, c.ttl).Err()
}

// Delete removes a cached job snapshot.
func (c *RedisStatusCache) Delete(ctx context.Context, requestID uuid.UUID) {
	_ = c.client.Del(ctx, statusKey(requestID)).Err()
}

func statusKey(requestID uuid.UUID) string {
	return fmt.Sprintf("%s%s", statusKeyPrefix, requestID)
}
