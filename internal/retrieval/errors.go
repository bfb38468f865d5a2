package retrieval

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceMissing means a configured source does not resolve to content.
	ErrSourceMissing = errors.New("source not found")
	// ErrSourceEmpty means a source resolved to blank text.
	ErrSourceEmpty = errors.New("source is empty")
	// ErrInvalidTopK is returned when fewer than one result is requested.
	ErrInvalidTopK = errors.New("top_k must be at least 1")
)

// QuerySource is the Source recorded on an EmbeddingError raised while embedding a query.
const QuerySource = "query"

// EmbeddingError reports a failed call to the embedding function.
type EmbeddingError struct {
	Source string
	Err    error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embed %s: %v", e.Source, e.Err)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}
