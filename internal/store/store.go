package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	StatusProcessing JobStatus = "processing"
	StatusReady      JobStatus = "ready"
	StatusFailed     JobStatus = "failed"
)

var ErrJobNotFound = errors.New("summary job not found")

// User is a directory entry considered for project staffing.
type User struct {
	ID         uuid.UUID
	Email      string
	Name       string
	Skills     []string
	Experience int
	Bio        string
}

// SummaryJob tracks an asynchronous document summary.
type SummaryJob struct {
	ID        uuid.UUID
	FileURL   string
	FileName  string
	Status    JobStatus
	Summary   string
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store defines persistence contract; an external DB implementation can replace this.
type Store interface {
	ListUsers(ctx context.Context) ([]User, error)
	CreateSummaryJob(ctx context.Context, fileURL, fileName string) (SummaryJob, error)
	GetSummaryJob(ctx context.Context, id uuid.UUID) (SummaryJob, error)
	UpdateSummaryJob(ctx context.Context, id uuid.UUID, status JobStatus, summary, failure string) error
}
