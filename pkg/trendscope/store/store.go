// Package store defines persistence for completed analysis runs.
//
// A saved run restores enough state to answer document-info, topic-summary
// and trend queries without recomputation. Embeddings and reduced vectors
// are deliberately not persisted; they have no query surface.
package store

import (
	"context"
	"time"
)

// Store is the interface for persisting and reloading analysis runs.
// Runs are immutable: SaveRun never overwrites an existing run id.
type Store interface {
	Close() error

	SaveRun(ctx context.Context, r Run) error
	GetRun(ctx context.Context, id string) (Run, bool, error)
	ListRuns(ctx context.Context) ([]RunMeta, error)
	DeleteRun(ctx context.Context, id string) error
}

// Run is the serialized form of one analysis run.
type Run struct {
	ID          string
	CreatedAt   time.Time
	Seed        int64
	Filter      string
	Granularity string
	Documents   []Document
	Topics      []Topic
	Trends      []TrendPoint
}

// RunMeta is the listing view of a stored run.
type RunMeta struct {
	ID            string
	CreatedAt     time.Time
	DocumentCount int
}

// Document is one stored per-document assignment.
type Document struct {
	DocID      int
	Normalized string
	Timestamp  *time.Time
	ClusterID  int
	Confidence float64
}

// Topic is one stored topic record.
type Topic struct {
	ClusterID     int
	Label         string
	Keywords      []Keyword
	DocumentCount int
}

// Keyword is one weighted topic term, ordered by position.
type Keyword struct {
	Term   string
	Weight float64
}

// TrendPoint is one stored (topic, bucket) count.
type TrendPoint struct {
	ClusterID int
	Bucket    time.Time
	Count     int
}
