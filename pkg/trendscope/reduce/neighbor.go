package reduce

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/cognicore/trendscope/pkg/trendscope/internalerr"
)

// Neighbor embedding defaults.
const (
	DefaultNeighbors = 15
	DefaultMinPoints = 10
	DefaultEpochs    = 60

	attractWeight = 0.15
	repelWeight   = 0.05
	negSamples    = 4
	initialStep   = 0.12
)

// NeighborEmbedding is a neighbor-graph-based projection: a PCA
// initialization refined by attracting each point toward its nearest
// neighbors and repelling it from sampled non-neighbors. Nearby points in
// the original space stay nearby in the target space.
//
// The refinement is stochastic; given the same Seed and input order the
// result is identical, without a fixed seed it varies across runs.
type NeighborEmbedding struct {
	// Components is the target dimension. Zero means 2.
	Components int
	// Neighbors is the kNN graph degree. Zero means DefaultNeighbors;
	// always clamped below the batch size.
	Neighbors int
	// MinPoints is the minimum viable batch size for the neighbor graph.
	// Zero means DefaultMinPoints. Smaller batches hit OnSmallBatch.
	MinPoints int
	// OnSmallBatch selects PCA fallback or a typed refusal for batches
	// under MinPoints. Empty means FallbackPCA.
	OnSmallBatch Fallback
	// Seed drives the repulsion sampling.
	Seed int64
}

func (ne *NeighborEmbedding) components() int {
	if ne.Components <= 0 {
		return 2
	}
	return ne.Components
}

func (ne *NeighborEmbedding) minPoints() int {
	if ne.MinPoints <= 0 {
		return DefaultMinPoints
	}
	return ne.MinPoints
}

// Reduce projects the batch into the target dimension.
func (ne *NeighborEmbedding) Reduce(vectors [][]float64) ([][]float64, error) {
	if _, err := checkVectors(vectors); err != nil {
		return nil, err
	}

	n := len(vectors)
	if n < ne.minPoints() {
		fb := ne.OnSmallBatch
		if fb == "" {
			fb = FallbackPCA
		}
		if fb == FallbackError {
			return nil, fmt.Errorf("%w: %d vectors, neighbor embedding needs at least %d", internalerr.ErrInsufficientData, n, ne.minPoints())
		}
		pca := &PCA{Components: ne.components()}
		return pca.Reduce(vectors)
	}

	k := ne.Neighbors
	if k <= 0 {
		k = DefaultNeighbors
	}
	if k >= n {
		k = n - 1
	}

	knn := nearestNeighbors(vectors, k)

	pca := &PCA{Components: ne.components()}
	coords, err := pca.Reduce(vectors)
	if err != nil {
		return nil, err
	}

	refine(coords, knn, ne.Seed)
	return coords, nil
}

// nearestNeighbors builds a brute-force kNN graph by euclidean distance.
// Ties break on index order, keeping the graph deterministic.
func nearestNeighbors(vectors [][]float64, k int) [][]int {
	n := len(vectors)
	knn := make([][]int, n)
	type cand struct {
		idx  int
		dist float64
	}
	for i := 0; i < n; i++ {
		cands := make([]cand, 0, n-1)
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			cands = append(cands, cand{idx: j, dist: sqDist(vectors[i], vectors[j])})
		}
		sort.Slice(cands, func(a, b int) bool {
			if cands[a].dist == cands[b].dist {
				return cands[a].idx < cands[b].idx
			}
			return cands[a].dist < cands[b].dist
		})
		neighbors := make([]int, k)
		for j := 0; j < k; j++ {
			neighbors[j] = cands[j].idx
		}
		knn[i] = neighbors
	}
	return knn
}

// refine runs the attract/repel epochs in place over the PCA coordinates.
func refine(coords [][]float64, knn [][]int, seed int64) {
	n := len(coords)
	if n == 0 {
		return
	}
	dim := len(coords[0])
	rng := rand.New(rand.NewSource(seed))

	neighborSet := make([]map[int]struct{}, n)
	for i, neighbors := range knn {
		set := make(map[int]struct{}, len(neighbors))
		for _, j := range neighbors {
			set[j] = struct{}{}
		}
		neighborSet[i] = set
	}

	for epoch := 0; epoch < DefaultEpochs; epoch++ {
		step := initialStep * (1.0 - float64(epoch)/float64(DefaultEpochs))
		for i := 0; i < n; i++ {
			for _, j := range knn[i] {
				for d := 0; d < dim; d++ {
					coords[i][d] += step * attractWeight * (coords[j][d] - coords[i][d])
				}
			}
			for s := 0; s < negSamples; s++ {
				j := rng.Intn(n)
				if j == i {
					continue
				}
				if _, ok := neighborSet[i][j]; ok {
					continue
				}
				d2 := sqDist(coords[i], coords[j])
				scale := step * repelWeight / (d2 + 0.1)
				for d := 0; d < dim; d++ {
					coords[i][d] += scale * (coords[i][d] - coords[j][d])
				}
			}
		}
	}
}

func sqDist(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}

// Euclidean is the shared distance metric for reduced coordinates.
func Euclidean(a, b []float64) float64 {
	return math.Sqrt(sqDist(a, b))
}
