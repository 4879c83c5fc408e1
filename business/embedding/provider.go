package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"recoEngine/domain"
)

const DefaultDimension = 64

// Provider turns text into fixed-dimension normalized vectors.
// A learned model can replace HashingProvider behind this contract.
type Provider interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingVector, error)
	Similarity(a, b domain.EmbeddingVector) float64
	Dimension() int
}

// HashingProvider is a bag-of-hashed-tokens embedding: every token lands in
// bucket fnv32a(token) mod dim and the count vector is L2-normalized.
type HashingProvider struct {
	dim int
}

var _ Provider = (*HashingProvider)(nil)

func NewHashingProvider(dim int) (*HashingProvider, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: embedding dimension must be positive, got %d", domain.ErrInvalidArgument, dim)
	}
	return &HashingProvider{dim: dim}, nil
}

func (p *HashingProvider) Dimension() int {
	return p.dim
}

func (p *HashingProvider) Embed(ctx context.Context, text string) (domain.EmbeddingVector, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	vec := make(domain.EmbeddingVector, p.dim)
	for _, tok := range Tokenize(text) {
		vec[bucket(tok, p.dim)]++
	}
	normalize(vec)

	return vec, nil
}

// Similarity is the dot product, which equals cosine similarity for
// normalized inputs. Only the common prefix of a and b is compared.
func (p *HashingProvider) Similarity(a, b domain.EmbeddingVector) float64 {
	return Dot(a, b)
}

// Tokenize lower-cases text and splits it on runs of anything outside
// [a-z0-9]. Non-ASCII letters are separators, so "café" yields "caf".
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9')
	})
}

func Dot(a, b domain.EmbeddingVector) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// Norm is the Euclidean length of v.
func Norm(v domain.EmbeddingVector) float64 {
	return math.Sqrt(Dot(v, v))
}

func bucket(token string, dim int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(token))
	return int(h.Sum32() % uint32(dim))
}

// normalize scales v in place to unit length; the zero vector is left as is.
func normalize(v domain.EmbeddingVector) {
	norm := Norm(v)
	if norm == 0 {
		norm = 1
	}
	for i := range v {
		v[i] /= norm
	}
}
