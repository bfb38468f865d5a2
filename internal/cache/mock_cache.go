package cache

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockCache is a mock implementation of the Cache interface for testing
type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetAnswer(ctx context.Context, key string) (*Answer, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Answer), args.Error(1)
}

func (m *MockCache) SetAnswer(ctx context.Context, key string, answer *Answer, ttl time.Duration) error {
	args := m.Called(ctx, key, answer, ttl)
	return args.Error(0)
}

func (m *MockCache) InvalidateDocument(ctx context.Context, fileURL string) error {
	args := m.Called(ctx, fileURL)
	return args.Error(0)
}

func (m *MockCache) Close() error {
	args := m.Called()
	return args.Error(0)
}
