package service

import (
	"hash/fnv"
	"math"
	"strings"

	pgvector "github.com/pgvector/pgvector-go"
)

// EmbeddingDim matches the vector column on meal_suggestions.
const EmbeddingDim = 1536

// EmbeddingService produces deterministic local embeddings so similarity
// search works without an external model call. Character trigrams are hashed
// into a fixed number of buckets and the result is L2 normalized, which keeps
// cosine distance meaningful for short meal descriptions.
type EmbeddingService struct{}

var _ IEmbeddingService = (*EmbeddingService)(nil)

// NewEmbeddingService creates a new EmbeddingService instance
func NewEmbeddingService() *EmbeddingService {
	return &EmbeddingService{}
}

// GenerateEmbedding returns the embedding for the given text. Identical
// inputs always produce identical vectors.
func (s *EmbeddingService) GenerateEmbedding(text string) (pgvector.Vector, error) {
	buckets := make([]float32, EmbeddingDim)

	runes := []rune(strings.ToLower(strings.TrimSpace(text)))
	for len(runes) > 0 && len(runes) < 3 {
		runes = append(runes, ' ')
	}
	for i := 0; i+3 <= len(runes); i++ {
		h := fnv.New32a()
		_, _ = h.Write([]byte(string(runes[i : i+3])))
		buckets[h.Sum32()%EmbeddingDim]++
	}

	var norm float64
	for _, v := range buckets {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range buckets {
			buckets[i] *= scale
		}
	}

	return pgvector.NewVector(buckets), nil
}
