// Package trend buckets cluster-assigned documents by timestamp and
// computes per-topic, per-bucket counts.
package trend

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cognicore/trendscope/pkg/trendscope/internalerr"
)

// Granularity is the fixed bucket width for trend computation.
type Granularity string

const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
)

// DefaultGranularity is used when no granularity is configured.
const DefaultGranularity = Day

// Validate reports whether the granularity is one of the known widths.
func (g Granularity) Validate() error {
	switch g {
	case Day, Week, Month:
		return nil
	}
	return fmt.Errorf("%w: unknown bucket granularity %q", internalerr.ErrInvalidConfig, string(g))
}

// Bucket truncates a timestamp to the start of its bucket, in UTC.
// Week buckets start on Monday; month buckets on the first of the month.
func (g Granularity) Bucket(t time.Time) time.Time {
	t = t.UTC()
	switch g {
	case Week:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case Month:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
}

// Doc is the slice of a document the aggregator needs.
type Doc struct {
	ClusterID  int
	Timestamp  *time.Time // nil excludes the document from aggregation
	Normalized string
}

// Options controls one aggregation pass.
type Options struct {
	// Granularity defaults to Day.
	Granularity Granularity
	// Filter is an optional keyword matched against normalized text
	// before aggregation. A filter that matches nothing is an error,
	// distinct from an empty result.
	Filter string
}

// Point is one (topic, bucket) row. Buckets with zero documents are not
// materialized; the series is sparse.
type Point struct {
	ClusterID int
	Bucket    time.Time
	Count     int
}

// Aggregate groups documents by (cluster, bucket) and counts them.
// Documents without a usable timestamp are excluded after filtering, so a
// filter that only matches undated documents still succeeds (with an
// empty series) rather than failing.
func Aggregate(docs []Doc, opt Options) ([]Point, error) {
	g := opt.Granularity
	if g == "" {
		g = DefaultGranularity
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	if needle := strings.ToLower(strings.TrimSpace(opt.Filter)); needle != "" {
		filtered := make([]Doc, 0, len(docs))
		for _, d := range docs {
			if strings.Contains(d.Normalized, needle) {
				filtered = append(filtered, d)
			}
		}
		if len(filtered) == 0 {
			return nil, fmt.Errorf("%w: filter %q", internalerr.ErrNoMatchingDocuments, opt.Filter)
		}
		docs = filtered
	}

	type key struct {
		cluster int
		bucket  time.Time
	}
	counts := make(map[key]int)
	for _, d := range docs {
		if d.Timestamp == nil {
			continue
		}
		counts[key{cluster: d.ClusterID, bucket: g.Bucket(*d.Timestamp)}]++
	}

	points := make([]Point, 0, len(counts))
	for k, count := range counts {
		points = append(points, Point{ClusterID: k.cluster, Bucket: k.bucket, Count: count})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].ClusterID != points[j].ClusterID {
			return points[i].ClusterID < points[j].ClusterID
		}
		return points[i].Bucket.Before(points[j].Bucket)
	})
	return points, nil
}
