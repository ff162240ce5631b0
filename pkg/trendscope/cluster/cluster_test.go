package cluster

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/cognicore/trendscope/pkg/trendscope/internalerr"
)

// blobs scatters perGroup points tightly around groups well-separated
// centers in 2D.
func blobs(groups, perGroup int, seed int64) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(seed))
	var points [][]float64
	var truth []int
	for g := 0; g < groups; g++ {
		cx := float64(g%5) * 50
		cy := float64(g/5) * 50
		for i := 0; i < perGroup; i++ {
			points = append(points, []float64{
				cx + rng.NormFloat64()*0.3,
				cy + rng.NormFloat64()*0.3,
			})
			truth = append(truth, g)
		}
	}
	return points, truth
}

func TestAssignFindsAllGroups(t *testing.T) {
	points, truth := blobs(15, 8, 1)

	res, err := Assign(points, Config{MinClusterSize: 5, MinSamples: 1, Epsilon: 3})
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if res.NumClusters != 15 {
		t.Fatalf("NumClusters = %d, want 15", res.NumClusters)
	}

	// points from the same blob must land in the same cluster
	clusterOf := make(map[int]int)
	for i, a := range res.Assignments {
		if a.ClusterID == Noise {
			t.Fatalf("point %d marked noise in clean blobs", i)
		}
		if prev, ok := clusterOf[truth[i]]; ok && prev != a.ClusterID {
			t.Fatalf("blob %d split across clusters %d and %d", truth[i], prev, a.ClusterID)
		}
		clusterOf[truth[i]] = a.ClusterID
	}
}

func TestAssignAutoEpsilon(t *testing.T) {
	// four chains of evenly spaced points; every nearest-neighbor
	// distance is exactly 0.1, so the derived radius links each chain
	// while the 50-unit gaps stay unbridged
	var points [][]float64
	for g := 0; g < 4; g++ {
		for i := 0; i < 10; i++ {
			points = append(points, []float64{float64(g)*50 + float64(i)*0.1, 0})
		}
	}

	res, err := Assign(points, Config{MinClusterSize: 5, MinSamples: 1})
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if res.Epsilon <= 0 {
		t.Errorf("auto epsilon = %g, want positive", res.Epsilon)
	}
	if res.NumClusters != 4 {
		t.Errorf("NumClusters = %d, want 4", res.NumClusters)
	}
}

func TestAssignDuplicatePoints(t *testing.T) {
	// exact duplicates have zero k-distances; the epsilon floor must
	// still let each duplicate group form a cluster
	var points [][]float64
	for g := 0; g < 3; g++ {
		p := []float64{float64(g) * 10, float64(g) * -10}
		for i := 0; i < 6; i++ {
			points = append(points, []float64{p[0], p[1]})
		}
	}

	res, err := Assign(points, Config{MinClusterSize: 5, MinSamples: 1})
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if res.NumClusters != 3 {
		t.Errorf("NumClusters = %d, want 3", res.NumClusters)
	}
}

func TestAssignOutlierIsNoise(t *testing.T) {
	points, _ := blobs(2, 8, 3)
	points = append(points, []float64{500, 500})

	res, err := Assign(points, Config{MinClusterSize: 5, MinSamples: 1, Epsilon: 3})
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}

	last := res.Assignments[len(points)-1]
	if last.ClusterID != Noise {
		t.Errorf("outlier cluster = %d, want Noise", last.ClusterID)
	}
	if last.Confidence != 0 {
		t.Errorf("noise confidence = %g, want 0", last.Confidence)
	}
}

func TestAssignSmallGroupsDemoted(t *testing.T) {
	points, _ := blobs(1, 8, 4)
	// a second group below the size floor
	points = append(points,
		[]float64{200, 200},
		[]float64{200.1, 200.1},
		[]float64{200.2, 199.9},
	)

	res, err := Assign(points, Config{MinClusterSize: 5, MinSamples: 1, Epsilon: 3})
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if res.NumClusters != 1 {
		t.Errorf("NumClusters = %d, want 1", res.NumClusters)
	}
	for _, a := range res.Assignments[8:] {
		if a.ClusterID != Noise {
			t.Errorf("undersized group member cluster = %d, want Noise", a.ClusterID)
		}
	}
}

func TestAssignRenumbersByFirstAppearance(t *testing.T) {
	points, _ := blobs(3, 6, 5)

	res, err := Assign(points, Config{MinClusterSize: 5, MinSamples: 1, Epsilon: 3})
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}

	seen := -1
	for _, a := range res.Assignments {
		if a.ClusterID == Noise {
			continue
		}
		if a.ClusterID > seen+1 {
			t.Fatalf("cluster id %d appeared before id %d", a.ClusterID, seen+1)
		}
		if a.ClusterID == seen+1 {
			seen = a.ClusterID
		}
	}
	if seen != res.NumClusters-1 {
		t.Errorf("highest id = %d, want %d", seen, res.NumClusters-1)
	}
}

func TestAssignConfidenceRange(t *testing.T) {
	points, _ := blobs(3, 10, 6)
	points = append(points, []float64{999, 999})

	res, err := Assign(points, Config{MinClusterSize: 5, MinSamples: 1, Epsilon: 3})
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	for i, a := range res.Assignments {
		if a.Confidence < 0 || a.Confidence > 1 {
			t.Errorf("point %d confidence %g outside [0,1]", i, a.Confidence)
		}
		if a.ClusterID == Noise && a.Confidence != 0 {
			t.Errorf("point %d is noise with confidence %g", i, a.Confidence)
		}
	}
}

func TestAssignStableMembership(t *testing.T) {
	points, _ := blobs(5, 9, 7)
	cfg := Config{MinClusterSize: 5, MinSamples: 1, Epsilon: 3}

	first, err := Assign(points, cfg)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	second, err := Assign(points, cfg)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	for i := range first.Assignments {
		if first.Assignments[i].ClusterID != second.Assignments[i].ClusterID {
			t.Fatal("membership should be identical for identical input")
		}
	}
}

func TestAssignEmptyInput(t *testing.T) {
	if _, err := Assign(nil, Config{}); !errors.Is(err, internalerr.ErrInsufficientData) {
		t.Errorf("empty input error = %v, want ErrInsufficientData", err)
	}
}

func TestAssignSinglePoint(t *testing.T) {
	res, err := Assign([][]float64{{1, 2}}, Config{MinClusterSize: 5, MinSamples: 1})
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if res.NumClusters != 0 {
		t.Errorf("NumClusters = %d, want 0", res.NumClusters)
	}
	if res.Assignments[0].ClusterID != Noise {
		t.Errorf("single point cluster = %d, want Noise", res.Assignments[0].ClusterID)
	}
}
