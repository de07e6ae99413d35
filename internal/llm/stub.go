package llm

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// DefaultStubDims is the embedding size of the stub.
const DefaultStubDims = 128

// Stub is a deterministic offline Service. Embeddings are hashed
// bag-of-words vectors, so texts sharing words score higher than texts
// that do not. Chat returns a canned reply built from the prompt.
type Stub struct {
	Dims int
}

// NewStub returns a stub producing dims-sized vectors.
func NewStub(dims int) *Stub {
	if dims <= 0 {
		dims = DefaultStubDims
	}
	return &Stub{Dims: dims}
}

// Ready always reports true.
func (s *Stub) Ready(context.Context) bool { return true }

// Embed hashes each lowercase word of text into one bucket and normalises
// the result. Text without words yields an empty vector.
func (s *Stub) Embed(ctx context.Context, text string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return nil, nil
	}

	dims := s.Dims
	if dims <= 0 {
		dims = DefaultStubDims
	}
	v := make([]float64, dims)
	for _, w := range words {
		h := fnv.New32a()
		h.Write([]byte(w))
		v[h.Sum32()%uint32(dims)]++
	}

	var norm float64
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] /= norm
	}
	return v, nil
}

// Chat echoes a short canned reply.
func (s *Stub) Chat(ctx context.Context, system, user string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.Contains(system, briefMarker) {
		return PlaceholderRequest, nil
	}
	return fmt.Sprintf("Thanks for the design. %s", firstLine(user)), nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
