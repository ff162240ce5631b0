package trendscope

import (
	"github.com/cognicore/trendscope/pkg/trendscope/describe"
	"github.com/cognicore/trendscope/pkg/trendscope/store"
	"github.com/cognicore/trendscope/pkg/trendscope/trend"
)

// StoreRun converts a run into its persisted form. Embeddings and reduced
// vectors are not persisted; a restored run serves queries, not
// recomputation.
func StoreRun(run *AnalysisRun) store.Run {
	docs := make([]store.Document, len(run.Documents))
	for i, d := range run.Documents {
		docs[i] = store.Document{
			DocID:      d.ID,
			Normalized: d.Normalized,
			Timestamp:  d.Timestamp,
			ClusterID:  d.ClusterID,
			Confidence: d.Confidence,
		}
	}

	topics := make([]store.Topic, len(run.Topics))
	for i, t := range run.Topics {
		keywords := make([]store.Keyword, len(t.Keywords))
		for j, kw := range t.Keywords {
			keywords[j] = store.Keyword{Term: kw.Term, Weight: kw.Weight}
		}
		topics[i] = store.Topic{
			ClusterID:     t.ClusterID,
			Label:         t.Label,
			Keywords:      keywords,
			DocumentCount: t.DocumentCount,
		}
	}

	trends := make([]store.TrendPoint, len(run.Trends))
	for i, p := range run.Trends {
		trends[i] = store.TrendPoint{ClusterID: p.ClusterID, Bucket: p.Bucket, Count: p.Count}
	}

	return store.Run{
		ID:          string(run.ID),
		CreatedAt:   run.CreatedAt,
		Seed:        run.Seed,
		Filter:      run.Filter,
		Granularity: string(run.Granularity),
		Documents:   docs,
		Topics:      topics,
		Trends:      trends,
	}
}

// RestoreRun rebuilds an AnalysisRun from its persisted form.
func RestoreRun(r store.Run) *AnalysisRun {
	docs := make([]Document, len(r.Documents))
	for i, d := range r.Documents {
		docs[i] = Document{
			ID:         d.DocID,
			Normalized: d.Normalized,
			Timestamp:  d.Timestamp,
			ClusterID:  d.ClusterID,
			Confidence: d.Confidence,
		}
	}

	topics := make([]Topic, len(r.Topics))
	for i, t := range r.Topics {
		keywords := make([]describe.Keyword, len(t.Keywords))
		for j, kw := range t.Keywords {
			keywords[j] = describe.Keyword{Term: kw.Term, Weight: kw.Weight}
		}
		topics[i] = Topic{
			ClusterID:     t.ClusterID,
			Label:         t.Label,
			Keywords:      keywords,
			DocumentCount: t.DocumentCount,
		}
	}

	trends := make([]TrendPoint, len(r.Trends))
	for i, p := range r.Trends {
		trends[i] = TrendPoint{ClusterID: p.ClusterID, Bucket: p.Bucket, Count: p.Count}
	}

	return &AnalysisRun{
		ID:          RunID(r.ID),
		CreatedAt:   r.CreatedAt,
		Seed:        r.Seed,
		Filter:      r.Filter,
		Granularity: trend.Granularity(r.Granularity),
		Documents:   docs,
		Topics:      topics,
		Trends:      trends,
	}
}
