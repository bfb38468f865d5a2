// Package retrieval holds the in-memory vector index used to ground prompts with
// reference documents.
//
// An Index is built once at startup and never mutated afterwards, so it can be shared
// by concurrent requests without locking.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"buddy-backends/internal/embeddings"
)

// Index is an ordered, read-only collection of documents and their embeddings.
// documents[i] corresponds to vectors[i].
type Index struct {
	documents []string
	vectors   []embeddings.Vector
	embedder  embeddings.Embedder
}

// New builds an index from precomputed parallel slices. The slices are copied.
// Queries are embedded with embedder, which must be the function that produced vectors.
func New(documents []string, vectors []embeddings.Vector, embedder embeddings.Embedder) (*Index, error) {
	if len(documents) != len(vectors) {
		return nil, fmt.Errorf("documents and vectors length mismatch: %d != %d", len(documents), len(vectors))
	}
	ix := &Index{
		documents: make([]string, len(documents)),
		vectors:   make([]embeddings.Vector, len(vectors)),
		embedder:  embedder,
	}
	copy(ix.documents, documents)
	for i, v := range vectors {
		if i > 0 && len(v) != len(vectors[0]) {
			return nil, fmt.Errorf("vector %d has dimension %d, expected %d", i, len(v), len(vectors[0]))
		}
		ix.vectors[i] = append(embeddings.Vector(nil), v...)
	}
	return ix, nil
}

// Build loads every source in order and embeds the non-empty ones.
// Sources that are missing, blank, unreadable or fail to embed are logged and skipped;
// Build itself never fails.
func Build(ctx context.Context, log *slog.Logger, loader Loader, embedder embeddings.Embedder, sources []string) *Index {
	ix := &Index{embedder: embedder}
	for _, source := range sources {
		text, vec, err := loadAndEmbed(ctx, loader, embedder, source)
		if err == nil && len(ix.vectors) > 0 && len(vec) != len(ix.vectors[0]) {
			err = fmt.Errorf("dimension %d does not match index dimension %d", len(vec), len(ix.vectors[0]))
		}
		if err != nil {
			logSkip(log, source, err)
			continue
		}
		ix.documents = append(ix.documents, text)
		ix.vectors = append(ix.vectors, vec)
		log.Info("loaded and embedded document", "source", source, "dimension", len(vec))
	}
	log.Info("document index ready", "documents", len(ix.documents), "sources", len(sources))
	return ix
}

func loadAndEmbed(ctx context.Context, loader Loader, embedder embeddings.Embedder, source string) (string, embeddings.Vector, error) {
	raw, err := loader.Load(ctx, source)
	if err != nil {
		return "", nil, err
	}
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", nil, ErrSourceEmpty
	}
	vec, err := embedder.Embed(ctx, text)
	if err != nil {
		return "", nil, &EmbeddingError{Source: source, Err: err}
	}
	if len(vec) == 0 {
		return "", nil, &EmbeddingError{Source: source, Err: errors.New("empty vector")}
	}
	return text, vec, nil
}

func logSkip(log *slog.Logger, source string, err error) {
	var embErr *EmbeddingError
	switch {
	case errors.Is(err, ErrSourceMissing):
		log.Warn("document source not found, skipping", "source", source)
	case errors.Is(err, ErrSourceEmpty):
		log.Warn("document source is empty, skipping", "source", source)
	case errors.As(err, &embErr):
		log.Error("failed to embed document, skipping", "source", source, "err", embErr.Err)
	default:
		log.Error("failed to load document, skipping", "source", source, "err", err)
	}
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.documents)
}

// Documents returns a copy of the indexed texts in slot order.
func (ix *Index) Documents() []string {
	if ix == nil {
		return nil
	}
	return append([]string(nil), ix.documents...)
}
