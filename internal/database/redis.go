package database

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amitsuman46/video-progress-tracker/pkg/logger"
)

// NewRedis connects to Redis. A nil *Cache is a valid no-op cache, so callers
// never have to branch on whether Redis is configured.
func NewRedis(addr, password string) *Cache {
	if addr == "" {
		logger.Warn().Msg("REDIS_ADDR not set, response caching disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		logger.Warn().Err(err).Msg("Failed to connect to Redis, response caching disabled")
		return nil
	}

	logger.Info().Str("addr", addr).Msg("Connected to Redis")
	return &Cache{client: client}
}

// Cache is a thin JSON cache over Redis, used for course-tree responses
type Cache struct {
	client *redis.Client
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, expiration).Err()
}

// Get unmarshals the cached value into dest; found=false on miss
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if c == nil {
		return false, nil
	}
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal([]byte(val), dest)
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if c == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Ping reports Redis health for the /health endpoint
func (c *Cache) Ping(ctx context.Context) error {
	if c == nil {
		return redis.Nil
	}
	return c.client.Ping(ctx).Err()
}

// Configured reports whether a Redis connection exists
func (c *Cache) Configured() bool {
	return c != nil
}

// Close releases the underlying connection
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
