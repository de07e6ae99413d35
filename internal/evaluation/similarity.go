package evaluation

import (
	"math"

	"github.com/piwi3910/RoomFit/internal/model"
)

// Score maps the cosine similarity of a and b from [-1, 1] onto
// [0, MaxScore]. Empty vectors, vectors of different length and
// zero-magnitude vectors score 0.
func Score(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	score := (cos + 1) / 2 * model.MaxScore
	return math.Max(0, math.Min(model.MaxScore, score))
}
