package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of Store using testify/mock.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) ListUsers(ctx context.Context) ([]User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]User), args.Error(1)
}

func (m *MockStore) CreateSummaryJob(ctx context.Context, fileURL, fileName string) (SummaryJob, error) {
	args := m.Called(ctx, fileURL, fileName)
	return args.Get(0).(SummaryJob), args.Error(1)
}

func (m *MockStore) GetSummaryJob(ctx context.Context, id uuid.UUID) (SummaryJob, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(SummaryJob), args.Error(1)
}

func (m *MockStore) UpdateSummaryJob(ctx context.Context, id uuid.UUID, status JobStatus, summary, failure string) error {
	args := m.Called(ctx, id, status, summary, failure)
	return args.Error(0)
}
