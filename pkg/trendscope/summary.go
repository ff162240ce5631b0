package trendscope

import (
	"sort"
	"time"
)

// representativeDocs is how many sample document ids each topic carries.
const representativeDocs = 3

// Summary is the combined result set consumed by external collaborators.
// Key names are stable.
type Summary struct {
	RunID              string         `json:"run_id"`
	GeneratedAt        time.Time      `json:"generated_at"`
	Filter             string         `json:"filter,omitempty"`
	TotalDocuments     int            `json:"total_documents"`
	ClusteredDocuments int            `json:"clustered_documents"`
	Topics             []TopicSummary `json:"topics"`
}

// TopicSummary is one topic with its keywords, trend series and sample
// documents.
type TopicSummary struct {
	ClusterID          int             `json:"topic_id"`
	Label              string          `json:"label"`
	Keywords           []KeywordWeight `json:"top_keywords"`
	DocumentCount      int             `json:"document_count"`
	RepresentativeDocs []int           `json:"representative_docs"`
	Trend              []TrendEntry    `json:"trend"`
}

// KeywordWeight is one weighted keyword.
type KeywordWeight struct {
	Keyword string  `json:"keyword"`
	Weight  float64 `json:"weight"`
}

// TrendEntry is one bucket count in a topic's series.
type TrendEntry struct {
	Bucket string `json:"bucket"`
	Count  int    `json:"count"`
}

// BuildSummary assembles the result set for a run. Topics are ordered by
// document count descending with ties broken by cluster id; the noise
// topic always sorts last regardless of its count, because it is
// structurally distinct rather than merely low-frequency.
func BuildSummary(run *AnalysisRun) Summary {
	trendsByCluster := make(map[int][]TrendEntry)
	for _, p := range run.Trends {
		trendsByCluster[p.ClusterID] = append(trendsByCluster[p.ClusterID], TrendEntry{
			Bucket: p.Bucket.Format("2006-01-02"),
			Count:  p.Count,
		})
	}

	topics := make([]TopicSummary, 0, len(run.Topics))
	for _, t := range run.Topics {
		keywords := make([]KeywordWeight, len(t.Keywords))
		for i, kw := range t.Keywords {
			keywords[i] = KeywordWeight{Keyword: kw.Term, Weight: kw.Weight}
		}
		topics = append(topics, TopicSummary{
			ClusterID:          t.ClusterID,
			Label:              t.Label,
			Keywords:           keywords,
			DocumentCount:      t.DocumentCount,
			RepresentativeDocs: representatives(run.Documents, t.ClusterID),
			Trend:              trendsByCluster[t.ClusterID],
		})
	}

	sort.Slice(topics, func(i, j int) bool {
		ti, tj := topics[i], topics[j]
		if (ti.ClusterID == ClusterNoise) != (tj.ClusterID == ClusterNoise) {
			return tj.ClusterID == ClusterNoise
		}
		if ti.DocumentCount != tj.DocumentCount {
			return ti.DocumentCount > tj.DocumentCount
		}
		return ti.ClusterID < tj.ClusterID
	})

	return Summary{
		RunID:              string(run.ID),
		GeneratedAt:        run.CreatedAt,
		Filter:             run.Filter,
		TotalDocuments:     len(run.Documents),
		ClusteredDocuments: run.ClusteredDocuments(),
		Topics:             topics,
	}
}

// representatives picks up to three member document ids, highest
// confidence first, ties by id for determinism.
func representatives(docs []Document, clusterID int) []int {
	type member struct {
		id         int
		confidence float64
	}
	var members []member
	for _, d := range docs {
		if d.ClusterID == clusterID {
			members = append(members, member{id: d.ID, confidence: d.Confidence})
		}
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].confidence == members[j].confidence {
			return members[i].id < members[j].id
		}
		return members[i].confidence > members[j].confidence
	})

	count := representativeDocs
	if len(members) < count {
		count = len(members)
	}
	out := make([]int, count)
	for i := 0; i < count; i++ {
		out[i] = members[i].id
	}
	return out
}
