// Package trendscope discovers latent topics in a corpus of short text
// documents and tracks how topic prevalence changes over time.
//
// The pipeline is a single-threaded batch per run: normalize → embed →
// reduce → cluster → describe → aggregate. Each stage depends on the full
// output of the previous one. Cluster ids are scoped to one AnalysisRun
// and are never comparable across runs.
package trendscope

import (
	"context"
	cryptorand "crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/cognicore/trendscope/pkg/trendscope/cluster"
	"github.com/cognicore/trendscope/pkg/trendscope/config"
	"github.com/cognicore/trendscope/pkg/trendscope/describe"
	"github.com/cognicore/trendscope/pkg/trendscope/embed"
	"github.com/cognicore/trendscope/pkg/trendscope/ingest"
	"github.com/cognicore/trendscope/pkg/trendscope/internalerr"
	"github.com/cognicore/trendscope/pkg/trendscope/reduce"
	"github.com/cognicore/trendscope/pkg/trendscope/trend"
)

// Reserved cluster ids.
const (
	// ClusterNoise marks documents too sparse to join any cluster.
	// Noise is a first-class topic, never dropped or merged away.
	ClusterNoise = cluster.Noise
	// ClusterExcluded marks documents excluded from analysis entirely:
	// empty after normalization, or removed by the domain filter.
	ClusterExcluded = -2
)

// UnclassifiedLabel is the fixed label of the noise topic.
const UnclassifiedLabel = describe.FallbackLabel

// RunID identifies one analysis run. Cluster ids are only meaningful
// together with the RunID that produced them.
type RunID string

// SourceDoc is one input record as supplied by a data loader.
type SourceDoc struct {
	Title       string
	Summary     string
	PublishedAt *time.Time
}

// Document is one analyzed document inside a run.
type Document struct {
	ID         int
	RawText    string
	Normalized string
	Timestamp  *time.Time
	Embedding  []float64
	Reduced    []float64
	ClusterID  int
	Confidence float64 // 0 for noise and excluded documents
}

// Topic is one discovered topic inside a run.
type Topic struct {
	ClusterID     int
	Label         string
	Keywords      []describe.Keyword
	DocumentCount int
}

// TrendPoint is one (topic, bucket) count; the series is sparse.
type TrendPoint struct {
	ClusterID int
	Bucket    time.Time
	Count     int
}

// Assignment is the per-document view exposed to callers.
type Assignment struct {
	DocID      int
	ClusterID  int
	Confidence float64
}

// AnalysisRun is an immutable snapshot of one pipeline execution. A new
// run never mutates a prior run's records.
type AnalysisRun struct {
	ID          RunID
	CreatedAt   time.Time
	Seed        int64
	Filter      string
	Granularity trend.Granularity
	Documents   []Document
	Topics      []Topic
	Trends      []TrendPoint
}

// DocumentInfo returns per-document cluster assignments.
func (r *AnalysisRun) DocumentInfo() []Assignment {
	out := make([]Assignment, len(r.Documents))
	for i, d := range r.Documents {
		out[i] = Assignment{DocID: d.ID, ClusterID: d.ClusterID, Confidence: d.Confidence}
	}
	return out
}

// TopicsOverTime returns a copy of the trend series.
func (r *AnalysisRun) TopicsOverTime() []TrendPoint {
	out := make([]TrendPoint, len(r.Trends))
	copy(out, r.Trends)
	return out
}

// Topic returns the topic with the given cluster id, if present.
func (r *AnalysisRun) Topic(clusterID int) (Topic, bool) {
	for _, t := range r.Topics {
		if t.ClusterID == clusterID {
			return t, true
		}
	}
	return Topic{}, false
}

// ClusteredDocuments counts documents that took part in clustering,
// including noise, excluding excluded documents.
func (r *AnalysisRun) ClusteredDocuments() int {
	count := 0
	for _, d := range r.Documents {
		if d.ClusterID != ClusterExcluded {
			count++
		}
	}
	return count
}

// Options configures an Engine.
type Options struct {
	Config config.Config
	// Embedder is the semantic encoder. Required. The engine serializes
	// access to it, so providers need not be safe for concurrent use.
	Embedder embed.Embedder
	// Reducer overrides the config-driven reducer, mainly for tests.
	Reducer reduce.Reducer
	// Stopwords overrides the built-in stopword list.
	Stopwords []string
	// Logger receives stage progress. Nil means no logging.
	Logger *zap.Logger
}

// Engine runs the analysis pipeline. It holds no per-run state; multiple
// runs may execute concurrently.
type Engine struct {
	cfg        config.Config
	embedder   embed.Embedder
	reducer    reduce.Reducer
	normalizer *ingest.Normalizer
	logger     *zap.Logger

	idMu    sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// New creates an Engine. A missing or misconfigured encoder is a fatal
// configuration error.
func New(opts Options) (*Engine, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	if opts.Embedder == nil {
		return nil, fmt.Errorf("%w: embedder required", internalerr.ErrInvalidConfig)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:        opts.Config,
		embedder:   embed.Guard(opts.Embedder),
		reducer:    opts.Reducer,
		normalizer: ingest.NewNormalizer(opts.Stopwords),
		logger:     logger,
		entropy:    ulid.Monotonic(cryptorand.Reader, 0),
	}, nil
}

// AnalyzeOptions configures one run.
type AnalyzeOptions struct {
	// Filter is a free-text domain keyword matched against normalized
	// text. Documents that do not match are excluded before embedding,
	// so a filtered run re-clusters the filtered subset only. A filter
	// matching nothing fails with ErrNoMatchingDocuments.
	Filter string
	// Seed overrides the configured reduction seed when non-zero.
	Seed int64
}

// Analyze executes the full pipeline over a batch snapshot and returns a
// new immutable run. The run either completes fully or produces nothing.
func (e *Engine) Analyze(ctx context.Context, sources []SourceDoc, opt AnalyzeOptions) (*AnalysisRun, error) {
	seed := opt.Seed
	if seed == 0 {
		seed = e.cfg.Reduction.Seed
	}

	docs := e.normalize(sources)
	selected, err := e.selectDocuments(docs, opt.Filter)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("normalized corpus",
		zap.Int("total", len(docs)),
		zap.Int("analyzable", len(selected)))

	if err := ctx.Err(); err != nil {
		return nil, internalerr.Stage("embed", err)
	}
	if err := e.embedStage(ctx, docs, selected); err != nil {
		return nil, err
	}

	if err := e.reduceStage(docs, selected, seed); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, internalerr.Stage("cluster", err)
	}
	numClusters, err := e.clusterStage(docs, selected)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("clustering complete", zap.Int("clusters", numClusters))

	topics, err := e.describeStage(docs, selected)
	if err != nil {
		return nil, err
	}

	granularity := trend.Granularity(e.cfg.Trends.Granularity)
	trends, err := e.trendStage(docs, selected, granularity)
	if err != nil {
		return nil, err
	}

	run := &AnalysisRun{
		ID:          e.newRunID(),
		CreatedAt:   time.Now().UTC(),
		Seed:        seed,
		Filter:      opt.Filter,
		Granularity: granularity,
		Documents:   docs,
		Topics:      topics,
		Trends:      trends,
	}
	e.logger.Info("analysis run complete",
		zap.String("run_id", string(run.ID)),
		zap.Int("documents", len(docs)),
		zap.Int("topics", len(topics)))
	return run, nil
}

// normalize builds the document set. Every input record keeps a slot;
// documents start excluded and are promoted as they pass each gate.
func (e *Engine) normalize(sources []SourceDoc) []Document {
	docs := make([]Document, len(sources))
	for i, src := range sources {
		raw := ingest.Combine(src.Title, src.Summary)
		docs[i] = Document{
			ID:         i,
			RawText:    raw,
			Normalized: e.normalizer.Normalize(raw),
			Timestamp:  src.PublishedAt,
			ClusterID:  ClusterExcluded,
		}
	}
	return docs
}

// selectDocuments picks the indices that enter the pipeline: non-empty
// after normalization and, when a filter is given, matching it.
func (e *Engine) selectDocuments(docs []Document, filter string) ([]int, error) {
	var selected []int
	for i, d := range docs {
		if d.Normalized != "" {
			selected = append(selected, i)
		}
	}
	if len(selected) == 0 {
		return nil, internalerr.Stage("normalize",
			fmt.Errorf("%w: no documents with usable text", internalerr.ErrInsufficientData))
	}

	needle := strings.ToLower(strings.TrimSpace(filter))
	if needle == "" {
		return selected, nil
	}

	var matched []int
	for _, i := range selected {
		if strings.Contains(docs[i].Normalized, needle) {
			matched = append(matched, i)
		}
	}
	if len(matched) == 0 {
		return nil, internalerr.Stage("filter",
			fmt.Errorf("%w: filter %q", internalerr.ErrNoMatchingDocuments, filter))
	}
	return matched, nil
}

func (e *Engine) embedStage(ctx context.Context, docs []Document, selected []int) error {
	texts := make([]string, len(selected))
	for j, i := range selected {
		texts[j] = docs[i].Normalized
	}

	vectors, err := e.embedder.Encode(ctx, texts)
	if err != nil {
		return internalerr.Stage("embed", err)
	}
	if len(vectors) != len(texts) {
		return internalerr.Stage("embed",
			fmt.Errorf("encoder returned %d vectors for %d documents", len(vectors), len(texts)))
	}
	dim := e.embedder.Dim()
	for j, vec := range vectors {
		if len(vec) != dim {
			return internalerr.Stage("embed",
				fmt.Errorf("vector %d has dimension %d, want %d", j, len(vec), dim))
		}
		docs[selected[j]].Embedding = vec
	}
	return nil
}

func (e *Engine) reduceStage(docs []Document, selected []int, seed int64) error {
	vectors := make([][]float64, len(selected))
	for j, i := range selected {
		vectors[j] = docs[i].Embedding
	}

	reducer := e.reducer
	if reducer == nil {
		reducer = e.buildReducer(seed)
	}
	reduced, err := reducer.Reduce(vectors)
	if err != nil {
		return internalerr.Stage("reduce", err)
	}
	for j, i := range selected {
		docs[i].Reduced = reduced[j]
	}
	return nil
}

// buildReducer constructs the configured reducer with the run's seed.
func (e *Engine) buildReducer(seed int64) reduce.Reducer {
	rc := e.cfg.Reduction
	if rc.Method == config.MethodPCA {
		return &reduce.PCA{Components: rc.Components}
	}
	return &reduce.NeighborEmbedding{
		Components:   rc.Components,
		Neighbors:    rc.Neighbors,
		MinPoints:    rc.MinPoints,
		OnSmallBatch: reduce.Fallback(rc.Fallback),
		Seed:         seed,
	}
}

func (e *Engine) clusterStage(docs []Document, selected []int) (int, error) {
	points := make([][]float64, len(selected))
	for j, i := range selected {
		points[j] = docs[i].Reduced
	}

	result, err := cluster.Assign(points, cluster.Config{
		MinClusterSize: e.cfg.Clustering.MinClusterSize,
		MinSamples:     e.cfg.Clustering.MinSamples,
		Epsilon:        e.cfg.Clustering.Epsilon,
	})
	if err != nil {
		return 0, internalerr.Stage("cluster", err)
	}
	for j, i := range selected {
		docs[i].ClusterID = result.Assignments[j].ClusterID
		docs[i].Confidence = result.Assignments[j].Confidence
	}
	return result.NumClusters, nil
}

// describeStage derives keywords and labels, then assembles the topic
// catalogue including the reserved noise topic when noise exists.
func (e *Engine) describeStage(docs []Document, selected []int) ([]Topic, error) {
	normalized := make([]string, len(selected))
	clusterIDs := make([]int, len(selected))
	counts := make(map[int]int)
	for j, i := range selected {
		normalized[j] = docs[i].Normalized
		clusterIDs[j] = docs[i].ClusterID
		counts[docs[i].ClusterID]++
	}

	described := describe.Topics(normalized, clusterIDs, e.cfg.Keywords.TopK)

	topics := make([]Topic, 0, len(described)+1)
	for _, t := range described {
		topics = append(topics, Topic{
			ClusterID:     t.ClusterID,
			Label:         t.Label,
			Keywords:      t.Keywords,
			DocumentCount: counts[t.ClusterID],
		})
	}
	if noise := counts[ClusterNoise]; noise > 0 {
		// The noise topic has no keywords by convention.
		topics = append(topics, Topic{
			ClusterID:     ClusterNoise,
			Label:         UnclassifiedLabel,
			DocumentCount: noise,
		})
	}
	return topics, nil
}

func (e *Engine) trendStage(docs []Document, selected []int, g trend.Granularity) ([]TrendPoint, error) {
	trendDocs := make([]trend.Doc, len(selected))
	for j, i := range selected {
		trendDocs[j] = trend.Doc{
			ClusterID:  docs[i].ClusterID,
			Timestamp:  docs[i].Timestamp,
			Normalized: docs[i].Normalized,
		}
	}
	points, err := trend.Aggregate(trendDocs, trend.Options{Granularity: g})
	if err != nil {
		return nil, internalerr.Stage("trend", err)
	}
	out := make([]TrendPoint, len(points))
	for i, p := range points {
		out[i] = TrendPoint{ClusterID: p.ClusterID, Bucket: p.Bucket, Count: p.Count}
	}
	return out, nil
}

func (e *Engine) newRunID() RunID {
	e.idMu.Lock()
	defer e.idMu.Unlock()
	return RunID(ulid.MustNew(ulid.Now(), e.entropy).String())
}
