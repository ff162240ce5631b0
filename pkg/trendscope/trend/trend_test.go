package trend

import (
	"errors"
	"testing"
	"time"

	"github.com/cognicore/trendscope/pkg/trendscope/internalerr"
)

func ts(value string) *time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestBucketDay(t *testing.T) {
	got := Day.Bucket(*ts("2026-03-15T18:42:11Z"))
	want := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Bucket = %v, want %v", got, want)
	}
}

func TestBucketWeekStartsMonday(t *testing.T) {
	// 2026-03-15 is a Sunday; its week starts Monday 2026-03-09
	got := Week.Bucket(*ts("2026-03-15T10:00:00Z"))
	want := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Bucket = %v, want %v", got, want)
	}

	// a Monday buckets to itself
	got = Week.Bucket(*ts("2026-03-09T23:59:59Z"))
	if !got.Equal(want) {
		t.Errorf("Monday Bucket = %v, want %v", got, want)
	}
}

func TestBucketMonth(t *testing.T) {
	got := Month.Bucket(*ts("2026-03-15T10:00:00Z"))
	want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Bucket = %v, want %v", got, want)
	}
}

func TestGranularityValidate(t *testing.T) {
	for _, g := range []Granularity{Day, Week, Month} {
		if err := g.Validate(); err != nil {
			t.Errorf("%s should validate, got %v", g, err)
		}
	}
	if err := Granularity("hour").Validate(); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("unknown granularity error = %v, want ErrInvalidConfig", err)
	}
}

func TestAggregateCounts(t *testing.T) {
	docs := []Doc{
		{ClusterID: 0, Timestamp: ts("2026-01-05T08:00:00Z"), Normalized: "alpha"},
		{ClusterID: 0, Timestamp: ts("2026-01-05T20:00:00Z"), Normalized: "alpha"},
		{ClusterID: 0, Timestamp: ts("2026-01-06T08:00:00Z"), Normalized: "alpha"},
		{ClusterID: 1, Timestamp: ts("2026-01-05T08:00:00Z"), Normalized: "beta"},
	}

	points, err := Aggregate(docs, Options{Granularity: Day})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	want := []Point{
		{ClusterID: 0, Bucket: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), Count: 2},
		{ClusterID: 0, Bucket: time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC), Count: 1},
		{ClusterID: 1, Bucket: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), Count: 1},
	}
	if len(points) != len(want) {
		t.Fatalf("got %d points, want %d", len(points), len(want))
	}
	for i := range want {
		if points[i].ClusterID != want[i].ClusterID || !points[i].Bucket.Equal(want[i].Bucket) || points[i].Count != want[i].Count {
			t.Errorf("point %d = %+v, want %+v", i, points[i], want[i])
		}
	}
}

func TestAggregateSkipsUndated(t *testing.T) {
	docs := []Doc{
		{ClusterID: 0, Timestamp: ts("2026-01-05T08:00:00Z"), Normalized: "dated"},
		{ClusterID: 0, Timestamp: nil, Normalized: "undated"},
	}

	points, err := Aggregate(docs, Options{})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(points) != 1 || points[0].Count != 1 {
		t.Errorf("points = %+v, want single count of 1", points)
	}
}

func TestAggregateFilter(t *testing.T) {
	docs := []Doc{
		{ClusterID: 0, Timestamp: ts("2026-01-05T08:00:00Z"), Normalized: "cloud security audit"},
		{ClusterID: 1, Timestamp: ts("2026-01-05T08:00:00Z"), Normalized: "garden landscaping"},
	}

	points, err := Aggregate(docs, Options{Filter: "Security"})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(points) != 1 || points[0].ClusterID != 0 {
		t.Errorf("points = %+v, want cluster 0 only", points)
	}
}

func TestAggregateFilterNoMatch(t *testing.T) {
	docs := []Doc{
		{ClusterID: 0, Timestamp: ts("2026-01-05T08:00:00Z"), Normalized: "alpha beta"},
	}

	_, err := Aggregate(docs, Options{Filter: "nonexistent"})
	if !errors.Is(err, internalerr.ErrNoMatchingDocuments) {
		t.Errorf("error = %v, want ErrNoMatchingDocuments", err)
	}
}

func TestAggregateFilterMatchesOnlyUndated(t *testing.T) {
	// filtering succeeds even when every match lacks a timestamp; the
	// series is just empty
	docs := []Doc{
		{ClusterID: 0, Timestamp: nil, Normalized: "quantum computing"},
		{ClusterID: 1, Timestamp: ts("2026-01-05T08:00:00Z"), Normalized: "other"},
	}

	points, err := Aggregate(docs, Options{Filter: "quantum"})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("points = %+v, want empty", points)
	}
}

func TestAggregateInvalidGranularity(t *testing.T) {
	_, err := Aggregate(nil, Options{Granularity: "hour"})
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("error = %v, want ErrInvalidConfig", err)
	}
}

func TestAggregateWeekGranularity(t *testing.T) {
	docs := []Doc{
		{ClusterID: 0, Timestamp: ts("2026-03-09T08:00:00Z"), Normalized: "a"}, // Monday
		{ClusterID: 0, Timestamp: ts("2026-03-13T08:00:00Z"), Normalized: "a"}, // same week
		{ClusterID: 0, Timestamp: ts("2026-03-16T08:00:00Z"), Normalized: "a"}, // next week
	}

	points, err := Aggregate(docs, Options{Granularity: Week})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}
	if points[0].Count != 2 || points[1].Count != 1 {
		t.Errorf("counts = %d, %d, want 2, 1", points[0].Count, points[1].Count)
	}
}
