package embed

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/cognicore/trendscope/pkg/trendscope/internalerr"
)

func TestHashingDeterministic(t *testing.T) {
	h, err := NewHashing(64)
	if err != nil {
		t.Fatalf("NewHashing: %v", err)
	}

	docs := []string{"neural networks", "kernel scheduling", "neural networks"}
	first, err := h.Encode(context.Background(), docs)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	second, err := h.Encode(context.Background(), docs)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	for i := range docs {
		for j := range first[i] {
			if first[i][j] != second[i][j] {
				t.Fatalf("doc %d coordinate %d differs between runs", i, j)
			}
		}
	}

	// identical texts get identical vectors
	for j := range first[0] {
		if first[0][j] != first[2][j] {
			t.Fatal("identical texts should produce identical vectors")
		}
	}
}

func TestHashingDimAndCount(t *testing.T) {
	h, err := NewHashing(32)
	if err != nil {
		t.Fatalf("NewHashing: %v", err)
	}
	if h.Dim() != 32 {
		t.Errorf("Dim = %d, want 32", h.Dim())
	}

	docs := []string{"one", "two words", "three word doc"}
	vecs, err := h.Encode(context.Background(), docs)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(vecs) != len(docs) {
		t.Fatalf("got %d vectors, want %d", len(vecs), len(docs))
	}
	for i, vec := range vecs {
		if len(vec) != 32 {
			t.Errorf("vector %d has dim %d, want 32", i, len(vec))
		}
	}
}

func TestHashingUnitNorm(t *testing.T) {
	h, _ := NewHashing(64)
	vecs, err := h.Encode(context.Background(), []string{"topic modeling with embeddings"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var norm float64
	for _, v := range vecs[0] {
		norm += v * v
	}
	if math.Abs(math.Sqrt(norm)-1.0) > 1e-9 {
		t.Errorf("vector norm = %g, want 1", math.Sqrt(norm))
	}
}

func TestHashingInvalidDim(t *testing.T) {
	if _, err := NewHashing(0); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("NewHashing(0) error = %v, want ErrInvalidConfig", err)
	}
	if _, err := NewHashing(-3); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("NewHashing(-3) error = %v, want ErrInvalidConfig", err)
	}
}

func TestHashingCancelledContext(t *testing.T) {
	h, _ := NewHashing(16)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := h.Encode(ctx, []string{"doc"}); err == nil {
		t.Error("Encode with cancelled context should fail")
	}
}
