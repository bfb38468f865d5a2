package embeddings

import (
	"context"
	"math"
)

// Vector is a simple float32 slice wrapper.
type Vector []float32

// Embedder defines the embedding interface.
type Embedder interface {
	Embed(ctx context.Context, text string) (Vector, error)
}

// CosineSimilarity returns dot(a, b) / (|a| * |b|).
// Vectors of different length, empty vectors and zero-norm vectors score 0.
func CosineSimilarity(a, b Vector) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
