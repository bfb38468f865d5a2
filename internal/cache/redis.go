package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key prefix for cached answers
const cacheKeyPrefix = "answer:"

type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache client
func NewRedisCache(addr, password string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return NewRedisCacheFromClient(client), nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// GetAnswer retrieves a cached answer by key
func (c *RedisCache) GetAnswer(ctx context.Context, key string) (*Answer, error) {
	data, err := c.client.Get(ctx, cacheKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, err
	}

	var answer Answer
	if err := json.Unmarshal(data, &answer); err != nil {
		return nil, err
	}
	return &answer, nil
}

// SetAnswer stores an answer with TTL
func (c *RedisCache) SetAnswer(ctx context.Context, key string, answer *Answer, ttl time.Duration) error {
	data, err := json.Marshal(answer)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKeyPrefix+key, data, ttl).Err()
}

// InvalidateDocument removes all cached answers for a document
func (c *RedisCache) InvalidateDocument(ctx context.Context, fileURL string) error {
	iter := c.client.Scan(ctx, 0, cacheKeyPrefix+documentPrefix(fileURL)+"*", 0).Iterator()

	pipe := c.client.Pipeline()
	count := 0

	for iter.Next(ctx) {
		pipe.Del(ctx, iter.Val())
		count++
	}

	if err := iter.Err(); err != nil {
		return err
	}

	if count > 0 {
		_, err := pipe.Exec(ctx)
		return err
	}

	return nil
}

// Close closes the cache connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
