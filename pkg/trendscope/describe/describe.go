// Package describe extracts representative keywords and labels per topic
// cluster. It is a pure function of cluster membership and normalized
// text; no state is carried across calls.
package describe

import (
	"math"
	"sort"
	"strings"
)

// FallbackLabel is used when a cluster has no extractable terms, and is
// the fixed label of the reserved noise topic.
const FallbackLabel = "Unclassified/Miscellaneous"

// DefaultTopK is the keyword list length when none is configured.
const DefaultTopK = 5

// labelTerms is how many top keywords make up a topic label.
const labelTerms = 3

// Keyword is one weighted topic term. Weights are non-negative.
type Keyword struct {
	Term   string
	Weight float64
}

// Topic describes one non-noise cluster.
type Topic struct {
	ClusterID int
	Label     string
	Keywords  []Keyword
}

// Topics ranks terms for each non-negative cluster id by a class-based
// TF-IDF: term frequency within the cluster, discounted by how common the
// term is across the whole corpus. Raw frequency alone would surface the
// same generic terms for every topic.
//
// normalized and clusterIDs run in parallel; noise entries (id < 0) still
// contribute to corpus document frequencies but get no topic of their own.
// Keywords are sorted by weight descending, ties broken by term, and
// truncated to topK (DefaultTopK when topK <= 0). Topics come back sorted
// by cluster id.
func Topics(normalized []string, clusterIDs []int, topK int) []Topic {
	if topK <= 0 {
		topK = DefaultTopK
	}

	totalDocs := len(normalized)
	docFreq := make(map[string]int)
	clusterTermCounts := make(map[int]map[string]int)
	clusterTokenTotals := make(map[int]int)

	for i, doc := range normalized {
		tokens := strings.Fields(doc)

		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			docFreq[tok]++
		}

		id := clusterIDs[i]
		if id < 0 {
			continue
		}
		counts, ok := clusterTermCounts[id]
		if !ok {
			counts = make(map[string]int)
			clusterTermCounts[id] = counts
		}
		for _, tok := range tokens {
			counts[tok]++
			clusterTokenTotals[id]++
		}
	}

	ids := make([]int, 0, len(clusterTermCounts))
	for id := range clusterTermCounts {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	topics := make([]Topic, 0, len(ids))
	for _, id := range ids {
		keywords := rankTerms(clusterTermCounts[id], clusterTokenTotals[id], docFreq, totalDocs, topK)
		topics = append(topics, Topic{
			ClusterID: id,
			Label:     Label(keywords),
			Keywords:  keywords,
		})
	}
	return topics
}

// rankTerms scores every term in one cluster and keeps the top K.
func rankTerms(counts map[string]int, tokenTotal int, docFreq map[string]int, totalDocs, topK int) []Keyword {
	if tokenTotal == 0 {
		return nil
	}

	keywords := make([]Keyword, 0, len(counts))
	for term, count := range counts {
		tf := float64(count) / float64(tokenTotal)
		idf := math.Log(1.0 + float64(totalDocs)/float64(1+docFreq[term]))
		keywords = append(keywords, Keyword{Term: term, Weight: tf * idf})
	}

	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Weight == keywords[j].Weight {
			return keywords[i].Term < keywords[j].Term
		}
		return keywords[i].Weight > keywords[j].Weight
	})

	if len(keywords) > topK {
		keywords = keywords[:topK]
	}
	return keywords
}

// Label derives a short human-readable label from ranked keywords: the
// top terms, title-cased and space-joined. Degenerate keyword sets fall
// back to the fixed sentinel instead of failing.
func Label(keywords []Keyword) string {
	if len(keywords) == 0 {
		return FallbackLabel
	}
	count := labelTerms
	if len(keywords) < count {
		count = len(keywords)
	}
	parts := make([]string, count)
	for i := 0; i < count; i++ {
		parts[i] = titleCase(keywords[i].Term)
	}
	return strings.Join(parts, " ")
}

// titleCase uppercases the leading letter of an a-z token.
func titleCase(term string) string {
	if term == "" {
		return term
	}
	return strings.ToUpper(term[:1]) + term[1:]
}
