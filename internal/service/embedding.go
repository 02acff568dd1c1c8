package service

import (
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	pgvector "github.com/pgvector/pgvector-go"

	"github.com/pageza/recipeshare/backend/internal/models"
)

// GenerateEmbedding returns a deterministic hashed bag-of-words embedding
// for text. Tokens are lower-cased runs of letters and digits; the result is
// L2-normalized unless text has no tokens.
func GenerateEmbedding(text string) pgvector.Vector {
	vec := make([]float32, models.EmbeddingDimensions)
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, tok := range tokens {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum32()
		idx := int(sum % models.EmbeddingDimensions)
		// The high bit picks the sign so collisions partly cancel.
		if sum&(1<<31) != 0 {
			vec[idx]--
		} else {
			vec[idx]++
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		n := float32(math.Sqrt(norm))
		for i := range vec {
			vec[i] /= n
		}
	}
	return pgvector.NewVector(vec)
}

// EmbedRecipe embeds the searchable text of a recipe
func EmbedRecipe(r *models.Recipe) pgvector.Vector {
	parts := make([]string, 0, 2+len(r.Ingredients))
	parts = append(parts, r.Title, r.Category)
	parts = append(parts, r.Ingredients...)
	return GenerateEmbedding(strings.Join(parts, " "))
}

// embeddingDistance is the Euclidean distance between a and b, matching
// pgvector's <-> operator. Mismatched lengths compare as infinitely far.
func embeddingDistance(a, b []float32) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
