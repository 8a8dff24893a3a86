package vectorstore

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch is returned when two vectors have different lengths.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Similarity returns the cosine similarity of a and b remapped from [-1,1]
// to [0,1] via (cos+1)/2, so callers only compare against a lower bound.
// Empty vectors and zero-magnitude vectors score 0 without error.
func Similarity(a, b []float64) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, nil
	}
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	cosine := dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(cosine) || math.IsInf(cosine, 0) {
		return 0, fmt.Errorf("similarity is not finite")
	}

	score := (cosine + 1) / 2
	return math.Max(0, math.Min(1, score)), nil
}

// CosineSimilarity is Similarity with failures reported as a score of 0.
func CosineSimilarity(a, b []float64) float64 {
	score, err := Similarity(a, b)
	if err != nil {
		return 0
	}
	return score
}
