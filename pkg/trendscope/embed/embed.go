// Package embed maps normalized documents to fixed-length dense vectors.
//
// Every Embedder honors the same contract: given N non-empty documents it
// returns N vectors of dimension Dim(), in input order, or fails the whole
// batch. There are no partial results; an unusable encoder is a
// configuration error, not a per-document error.
package embed

import (
	"context"
	"sync"
)

// Embedder is the pluggable semantic encoder capability.
type Embedder interface {
	// Encode returns one vector per input document, same order, same count.
	Encode(ctx context.Context, docs []string) ([][]float64, error)
	// Dim returns the fixed dimensionality of produced vectors.
	Dim() int
}

// Guarded serializes access to an Embedder that is not safe for
// concurrent use. Concurrent analysis runs sharing one provider instance
// take turns at the encoding stage instead of contending on it.
type Guarded struct {
	mu   sync.Mutex
	next Embedder
}

// Guard wraps an embedder with a mutual-exclusion boundary.
func Guard(next Embedder) *Guarded {
	return &Guarded{next: next}
}

func (g *Guarded) Encode(ctx context.Context, docs []string) ([][]float64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.next.Encode(ctx, docs)
}

func (g *Guarded) Dim() int {
	return g.next.Dim()
}
