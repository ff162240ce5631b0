package trendscope

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreRestoreRoundTrip(t *testing.T) {
	run := fixtureRun()

	restored := RestoreRun(StoreRun(run))

	require.Equal(t, run.ID, restored.ID)
	require.True(t, run.CreatedAt.Equal(restored.CreatedAt))
	require.Equal(t, run.Seed, restored.Seed)
	require.Equal(t, run.Filter, restored.Filter)
	require.Equal(t, run.Granularity, restored.Granularity)

	require.Len(t, restored.Documents, len(run.Documents))
	for i, d := range run.Documents {
		got := restored.Documents[i]
		require.Equal(t, d.ID, got.ID)
		require.Equal(t, d.Normalized, got.Normalized)
		require.Equal(t, d.ClusterID, got.ClusterID)
		require.InDelta(t, d.Confidence, got.Confidence, 1e-12)
	}

	require.Len(t, restored.Topics, len(run.Topics))
	for i, topic := range run.Topics {
		got := restored.Topics[i]
		require.Equal(t, topic.ClusterID, got.ClusterID)
		require.Equal(t, topic.Label, got.Label)
		require.Equal(t, topic.DocumentCount, got.DocumentCount)
		require.Len(t, got.Keywords, len(topic.Keywords))
		for j, kw := range topic.Keywords {
			require.Equal(t, kw.Term, got.Keywords[j].Term)
			require.InDelta(t, kw.Weight, got.Keywords[j].Weight, 1e-12)
		}
	}

	require.Equal(t, run.Trends, restored.Trends)
}

func TestStoreRunDropsVectors(t *testing.T) {
	run := fixtureRun()
	run.Documents[0].Embedding = []float64{1, 2, 3}
	run.Documents[0].Reduced = []float64{1, 2}

	restored := RestoreRun(StoreRun(run))
	require.Empty(t, restored.Documents[0].Embedding)
	require.Empty(t, restored.Documents[0].Reduced)
}
