package retrieval

import (
	"context"
	"errors"
	"sort"
	"strings"

	"buddy-backends/internal/embeddings"
)

// ContextSeparator joins retrieved documents in a context block.
const ContextSeparator = "\n\n"

// Match is one ranked document.
type Match struct {
	Slot  int
	Text  string
	Score float32
}

// Search embeds query and returns up to topK documents ordered by descending cosine
// similarity. Ties keep slot order. An empty index returns no matches without calling
// the embedder.
func (ix *Index) Search(ctx context.Context, query string, topK int) ([]Match, error) {
	if topK < 1 {
		return nil, ErrInvalidTopK
	}
	if ix.Len() == 0 {
		return nil, nil
	}
	if ix.embedder == nil {
		return nil, &EmbeddingError{Source: QuerySource, Err: errors.New("no embedder configured")}
	}
	q, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		return nil, &EmbeddingError{Source: QuerySource, Err: err}
	}

	scores := Score(ix.vectors, q)
	slots := RankTopK(scores, topK)
	matches := make([]Match, len(slots))
	for i, slot := range slots {
		matches[i] = Match{Slot: slot, Text: ix.documents[slot], Score: scores[slot]}
	}
	return matches, nil
}

// Retrieve returns the texts of the topK best matches joined by a blank line.
func (ix *Index) Retrieve(ctx context.Context, query string, topK int) (string, error) {
	matches, err := ix.Search(ctx, query, topK)
	if err != nil {
		return "", err
	}
	texts := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = m.Text
	}
	return strings.Join(texts, ContextSeparator), nil
}

// Score computes the cosine similarity of every vector against query.
// Zero-norm and mismatched vectors score 0.
func Score(vectors []embeddings.Vector, query embeddings.Vector) []float32 {
	scores := make([]float32, len(vectors))
	for i, v := range vectors {
		scores[i] = embeddings.CosineSimilarity(v, query)
	}
	return scores
}

// RankTopK returns the indices of the k highest scores, best first.
// Equal scores keep their original order. k larger than len(scores) selects everything.
func RankTopK(scores []float32, k int) []int {
	if k <= 0 {
		return nil
	}
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})
	if k < len(idx) {
		idx = idx[:k]
	}
	return idx
}
