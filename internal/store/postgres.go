package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	s := &PostgresStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	// Summarizer and worker both start against the same database.
	const lockID = 424242001

	var acquired bool
	err := s.db.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, lockID).Scan(&acquired)
	if err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}

	if !acquired {
		// Another service is running migrations; wait briefly and skip
		time.Sleep(2 * time.Second)
		return nil
	}

	defer func() {
		_, _ = s.db.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockID)
	}()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL DEFAULT '',
			skills TEXT[] NOT NULL DEFAULT ARRAY[]::TEXT[],
			experience INT NOT NULL DEFAULT 0,
			bio TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS summary_jobs (
			id UUID PRIMARY KEY,
			file_url TEXT NOT NULL,
			file_name TEXT NOT NULL,
			status TEXT NOT NULL,
			summary TEXT NOT NULL DEFAULT '',
			error TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, email, name, skills, experience, bio FROM users ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, pq.Array(&u.Skills), &u.Experience, &u.Bio); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateSummaryJob(ctx context.Context, fileURL, fileName string) (SummaryJob, error) {
	now := time.Now().UTC()
	job := SummaryJob{
		ID:        uuid.New(),
		FileURL:   fileURL,
		FileName:  fileName,
		Status:    StatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO summary_jobs(id, file_url, file_name, status, created_at, updated_at) VALUES($1,$2,$3,$4,$5,$5)`,
		job.ID, job.FileURL, job.FileName, job.Status, now)
	if err != nil {
		return SummaryJob{}, err
	}
	return job, nil
}

func (s *PostgresStore) GetSummaryJob(ctx context.Context, id uuid.UUID) (SummaryJob, error) {
	job := SummaryJob{ID: id}
	row := s.db.QueryRowContext(ctx,
		`SELECT file_url, file_name, status, summary, error, created_at, updated_at FROM summary_jobs WHERE id=$1`, id)
	if err := row.Scan(&job.FileURL, &job.FileName, &job.Status, &job.Summary, &job.Error, &job.CreatedAt, &job.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SummaryJob{}, ErrJobNotFound
		}
		return SummaryJob{}, fmt.Errorf("failed to get summary job %s: %w", id, err)
	}
	return job, nil
}

func (s *PostgresStore) UpdateSummaryJob(ctx context.Context, id uuid.UUID, status JobStatus, summary, failure string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE summary_jobs SET status=$1, summary=$2, error=$3, updated_at=now() WHERE id=$4`,
		status, summary, failure, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
