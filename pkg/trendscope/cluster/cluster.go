// Package cluster groups reduced vectors into topic clusters by density.
//
// Points in sufficiently dense regions form clusters; points in sparse
// regions are assigned the reserved Noise id -1. Noise is a designed
// catch-all category, never an error. Cluster ids are renumbered per run
// in order of first appearance and carry no meaning across runs.
package cluster

import (
	"fmt"
	"math"
	"sort"

	"github.com/cognicore/trendscope/pkg/trendscope/internalerr"
)

// Noise is the reserved id for points too sparse to join any cluster.
const Noise = -1

// Defaults for the density configuration.
const (
	DefaultMinClusterSize = 5
	DefaultMinSamples     = 1

	// epsilonFloor keeps auto-epsilon usable on corpora with exact
	// duplicate points, where every k-distance is zero.
	epsilonFloor = 1e-9

	// epsilonScale stretches the k-distance percentile into a usable
	// neighborhood radius.
	epsilonScale = 1.5
)

// Config controls density clustering.
type Config struct {
	// MinClusterSize is the minimum number of points needed to form a
	// cluster; smaller groups are demoted to noise. Zero means
	// DefaultMinClusterSize. Larger values yield fewer, coarser topics.
	MinClusterSize int
	// MinSamples is the number of neighbors (excluding the point itself)
	// within Epsilon required for a core point. Zero means
	// DefaultMinSamples.
	MinSamples int
	// Epsilon is the neighborhood radius. Zero selects it automatically
	// from the k-distance distribution of the batch.
	Epsilon float64
}

func (c Config) minClusterSize() int {
	if c.MinClusterSize <= 0 {
		return DefaultMinClusterSize
	}
	return c.MinClusterSize
}

func (c Config) minSamples() int {
	if c.MinSamples <= 0 {
		return DefaultMinSamples
	}
	return c.MinSamples
}

// Assignment is the per-point clustering outcome. Confidence is a soft
// membership score in [0,1]; noise points always have confidence 0.
type Assignment struct {
	ClusterID  int
	Confidence float64
}

// Result holds the outcome of one clustering pass.
type Result struct {
	Assignments []Assignment
	NumClusters int
	Epsilon     float64
}

// Assign clusters the points. The result depends on point order and the
// density parameters; membership is stable for identical input.
func Assign(points [][]float64, cfg Config) (Result, error) {
	n := len(points)
	if n == 0 {
		return Result{}, fmt.Errorf("%w: no points to cluster", internalerr.ErrInsufficientData)
	}

	eps := cfg.Epsilon
	if eps <= 0 {
		eps = autoEpsilon(points, cfg.minSamples())
	}

	labels := densityScan(points, eps, cfg.minSamples())
	numClusters := enforceMinSize(labels, cfg.minClusterSize())
	assignments := withConfidence(points, labels)

	return Result{
		Assignments: assignments,
		NumClusters: numClusters,
		Epsilon:     eps,
	}, nil
}

// autoEpsilon picks a radius from the 75th percentile of k-distances,
// scaled up, with a tiny floor so duplicate-heavy batches still cluster.
func autoEpsilon(points [][]float64, k int) float64 {
	n := len(points)
	if n == 1 {
		return epsilonFloor
	}
	if k >= n {
		k = n - 1
	}

	kdists := make([]float64, n)
	for i := 0; i < n; i++ {
		dists := make([]float64, 0, n-1)
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			dists = append(dists, dist(points[i], points[j]))
		}
		sort.Float64s(dists)
		kdists[i] = dists[k-1]
	}
	sort.Float64s(kdists)

	eps := epsilonScale * kdists[(3*(n-1))/4]
	if eps < epsilonFloor {
		eps = epsilonFloor
	}
	return eps
}

// densityScan is a classic region-growing density scan: core points (at
// least minSamples neighbors within eps) seed clusters, which expand
// breadth-first through other core points; border points join the first
// cluster that reaches them.
func densityScan(points [][]float64, eps float64, minSamples int) []int {
	n := len(points)

	neighbors := make([][]int, n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if dist(points[i], points[j]) <= eps {
				neighbors[i] = append(neighbors[i], j)
				neighbors[j] = append(neighbors[j], i)
			}
		}
	}

	labels := make([]int, n)
	for i := range labels {
		labels[i] = Noise
	}

	visited := make([]bool, n)
	next := 0
	for i := 0; i < n; i++ {
		if visited[i] || len(neighbors[i]) < minSamples {
			continue
		}

		cluster := next
		next++

		queue := []int{i}
		visited[i] = true
		labels[i] = cluster
		for len(queue) > 0 {
			p := queue[0]
			queue = queue[1:]
			if len(neighbors[p]) < minSamples {
				continue // border point, do not expand through it
			}
			for _, q := range neighbors[p] {
				if labels[q] == Noise {
					labels[q] = cluster
				}
				if !visited[q] {
					visited[q] = true
					queue = append(queue, q)
				}
			}
		}
	}

	return labels
}

// enforceMinSize demotes undersized clusters to noise and renumbers the
// survivors by first appearance in point order. Returns the cluster count.
func enforceMinSize(labels []int, minSize int) int {
	sizes := make(map[int]int)
	for _, l := range labels {
		if l != Noise {
			sizes[l]++
		}
	}

	renumber := make(map[int]int)
	next := 0
	for i, l := range labels {
		if l == Noise {
			continue
		}
		if sizes[l] < minSize {
			labels[i] = Noise
			continue
		}
		id, ok := renumber[l]
		if !ok {
			id = next
			next++
			renumber[l] = id
		}
		labels[i] = id
	}
	return next
}

// withConfidence derives soft membership from distance to the cluster
// centroid: exp(-d/mean cluster distance), so central members approach 1
// and fringe members decay smoothly. Degenerate single-point or
// zero-spread clusters get confidence 1. Noise points get 0.
func withConfidence(points [][]float64, labels []int) []Assignment {
	type centroidAcc struct {
		sum   []float64
		count int
	}
	acc := make(map[int]*centroidAcc)
	for i, l := range labels {
		if l == Noise {
			continue
		}
		a, ok := acc[l]
		if !ok {
			a = &centroidAcc{sum: make([]float64, len(points[i]))}
			acc[l] = a
		}
		for d, v := range points[i] {
			a.sum[d] += v
		}
		a.count++
	}

	centroids := make(map[int][]float64, len(acc))
	for l, a := range acc {
		c := make([]float64, len(a.sum))
		for d, v := range a.sum {
			c[d] = v / float64(a.count)
		}
		centroids[l] = c
	}

	meanDist := make(map[int]float64, len(acc))
	for i, l := range labels {
		if l == Noise {
			continue
		}
		meanDist[l] += dist(points[i], centroids[l])
	}
	for l, total := range meanDist {
		meanDist[l] = total / float64(acc[l].count)
	}

	out := make([]Assignment, len(points))
	for i, l := range labels {
		if l == Noise {
			out[i] = Assignment{ClusterID: Noise, Confidence: 0}
			continue
		}
		conf := 1.0
		if md := meanDist[l]; md > 0 {
			conf = math.Exp(-dist(points[i], centroids[l]) / md)
		}
		out[i] = Assignment{ClusterID: l, Confidence: conf}
	}
	return out
}

func dist(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}
