package embed

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// WithCache wraps an embedder with an expiring LRU cache keyed by document
// text. Repeated analyses over overlapping corpora skip re-encoding texts
// they have seen before. Returns next unchanged when the cache would be
// useless (zero size or TTL).
func WithCache(next Embedder, size int, ttl time.Duration) Embedder {
	if next == nil || size <= 0 || ttl <= 0 {
		return next
	}
	return &cached{
		next:  next,
		cache: expirable.NewLRU[string, []float64](size, nil, ttl),
	}
}

type cached struct {
	next  Embedder
	cache *expirable.LRU[string, []float64]
}

func (c *cached) Dim() int {
	return c.next.Dim()
}

func (c *cached) Encode(ctx context.Context, docs []string) ([][]float64, error) {
	out := make([][]float64, len(docs))

	var missDocs []string
	var missIdx []int
	for i, doc := range docs {
		if vec, ok := c.cache.Get(doc); ok {
			out[i] = cloneVector(vec)
			continue
		}
		missDocs = append(missDocs, doc)
		missIdx = append(missIdx, i)
	}

	if len(missDocs) > 0 {
		vecs, err := c.next.Encode(ctx, missDocs)
		if err != nil {
			return nil, err
		}
		for j, vec := range vecs {
			c.cache.Add(missDocs[j], cloneVector(vec))
			out[missIdx[j]] = vec
		}
	}

	return out, nil
}

func cloneVector(vec []float64) []float64 {
	if len(vec) == 0 {
		return nil
	}
	out := make([]float64, len(vec))
	copy(out, vec)
	return out
}
