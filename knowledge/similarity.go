package knowledge

import (
	"math"

	"github.com/lumon-ai/agentloop/errors"
)

var (
	// ErrDimensionMismatch reports vectors of unequal length. Comparing
	// embeddings from different models is a caller bug, not a data condition.
	ErrDimensionMismatch = errors.New("knowledge: embedding dimension mismatch")

	// ErrZeroVector reports an all-zero operand. Cosine similarity divides by
	// the vector norms, so the value is undefined rather than silently zero.
	ErrZeroVector = errors.New("knowledge: cosine similarity undefined for zero vector")
)

// CosineSimilarity returns dot(a,b) / (|a|*|b|) in [-1, 1].
// Accumulation happens in float64 so long vectors don't lose precision.
func CosineSimilarity(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, errors.Wrapf(ErrDimensionMismatch, "got %d and %d", len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, errors.WithStack(ErrZeroVector)
	}

	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB))), nil
}
