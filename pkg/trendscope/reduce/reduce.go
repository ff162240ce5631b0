// Package reduce projects high-dimensional embeddings into a small target
// space while preserving local neighborhood structure.
package reduce

import (
	"fmt"

	"github.com/cognicore/trendscope/pkg/trendscope/internalerr"
)

// Reducer projects N vectors of dimension D into N vectors of a smaller
// target dimension. Implementations are deterministic given a fixed seed.
type Reducer interface {
	Reduce(vectors [][]float64) ([][]float64, error)
}

// Fallback selects the degenerate-case behavior when a batch is too small
// for a neighbor-based projection.
type Fallback string

const (
	// FallbackPCA silently projects small batches with plain PCA.
	FallbackPCA Fallback = "pca"
	// FallbackError refuses small batches with ErrInsufficientData.
	FallbackError Fallback = "error"
)

// Validate reports whether the fallback mode is known.
func (f Fallback) Validate() error {
	switch f {
	case FallbackPCA, FallbackError:
		return nil
	}
	return fmt.Errorf("%w: unknown reduction fallback %q", internalerr.ErrInvalidConfig, string(f))
}

func checkVectors(vectors [][]float64) (dim int, err error) {
	if len(vectors) == 0 {
		return 0, fmt.Errorf("%w: no vectors to reduce", internalerr.ErrInsufficientData)
	}
	dim = len(vectors[0])
	if dim == 0 {
		return 0, fmt.Errorf("%w: zero-dimensional input vectors", internalerr.ErrInvalidConfig)
	}
	for i, v := range vectors {
		if len(v) != dim {
			return 0, fmt.Errorf("%w: vector %d has dimension %d, want %d", internalerr.ErrInvalidConfig, i, len(v), dim)
		}
	}
	return dim, nil
}
