package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache stores generated document answers.
type Cache interface {
	// GetAnswer retrieves a cached answer by key
	// Returns nil if not found
	GetAnswer(ctx context.Context, key string) (*Answer, error)

	// SetAnswer stores an answer with TTL
	SetAnswer(ctx context.Context, key string, answer *Answer, ttl time.Duration) error

	// InvalidateDocument removes every cached answer generated from fileURL
	InvalidateDocument(ctx context.Context, fileURL string) error

	// Close closes the cache connection
	Close() error
}

// Answer is a cached summary or document chat reply.
type Answer struct {
	Text      string    `json:"text"`
	FileName  string    `json:"file_name"`
	CreatedAt time.Time `json:"created_at"`
}

// GenerateCacheKey builds "<doc hash>:<request hash>" so every answer for one document
// shares a prefix.
func GenerateCacheKey(kind, fileURL, fileName, question string) string {
	return documentPrefix(fileURL) + hashParts(kind, fileName, strings.TrimSpace(question))
}

func documentPrefix(fileURL string) string {
	return hashParts(fileURL)[:16] + ":"
}

func hashParts(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
