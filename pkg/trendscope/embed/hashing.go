package embed

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"github.com/cognicore/trendscope/pkg/trendscope/internalerr"
)

// DefaultHashingDim is the default vector size for the hashing encoder.
const DefaultHashingDim = 64

// Hashing is a deterministic feature-hashing encoder. Each token is hashed
// to a coordinate with a signed contribution and the result is L2
// normalized. It carries no model state, needs no network, and always
// produces the same vector for the same text, which makes it the reference
// encoder for reproducible runs and tests.
type Hashing struct {
	dim int
}

// NewHashing creates a hashing encoder with the given dimension.
func NewHashing(dim int) (*Hashing, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: hashing dimension must be positive, got %d", internalerr.ErrInvalidConfig, dim)
	}
	return &Hashing{dim: dim}, nil
}

func (h *Hashing) Dim() int {
	return h.dim
}

// Encode vectorizes the batch. It never fails except on context
// cancellation.
func (h *Hashing) Encode(ctx context.Context, docs []string) ([][]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([][]float64, len(docs))
	for i, doc := range docs {
		out[i] = h.encodeOne(doc)
	}
	return out, nil
}

func (h *Hashing) encodeOne(doc string) []float64 {
	vec := make([]float64, h.dim)
	for _, tok := range strings.Fields(doc) {
		hasher := fnv.New64a()
		hasher.Write([]byte(tok))
		sum := hasher.Sum64()

		idx := int(sum % uint64(h.dim))
		sign := 1.0
		if (sum>>32)&1 == 1 {
			sign = -1.0
		}
		vec[idx] += sign
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}
