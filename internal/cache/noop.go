package cache

import (
	"context"
	"time"
)

// NoOpCache is a cache implementation that does nothing.
// Used when no cache is configured or Redis is unavailable - all operations succeed
// but no actual caching occurs (always cache miss).
type NoOpCache struct{}

// NewNoOpCache creates a new no-op cache instance
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// GetAnswer always returns nil (cache miss)
func (c *NoOpCache) GetAnswer(ctx context.Context, key string) (*Answer, error) {
	return nil, nil
}

// SetAnswer does nothing and always succeeds
func (c *NoOpCache) SetAnswer(ctx context.Context, key string, answer *Answer, ttl time.Duration) error {
	return nil
}

// InvalidateDocument does nothing and always succeeds
func (c *NoOpCache) InvalidateDocument(ctx context.Context, fileURL string) error {
	return nil
}

// Close does nothing and always succeeds
func (c *NoOpCache) Close() error {
	return nil
}
