package trendscope

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cognicore/trendscope/pkg/trendscope/internalerr"
	"github.com/cognicore/trendscope/pkg/trendscope/store/memstore"
)

func newTestService(t *testing.T) (*Service, *memstore.Store) {
	t.Helper()
	st := memstore.New()
	return NewService(newTestEngine(t, testConfig()), st), st
}

func TestServiceBaselineLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.DocumentInfo()
	require.ErrorIs(t, err, internalerr.ErrNotFound)
	_, err = svc.TopicSummary()
	require.ErrorIs(t, err, internalerr.ErrNotFound)

	docs := syntheticCorpus(3, 8)
	run, err := svc.AnalyzeBaseline(ctx, docs)
	require.NoError(t, err)

	cached, ok := svc.Baseline()
	require.True(t, ok)
	require.Equal(t, run.ID, cached.ID)

	info, err := svc.DocumentInfo()
	require.NoError(t, err)
	require.Len(t, info, len(docs))

	summary, err := svc.TopicSummary()
	require.NoError(t, err)
	require.Equal(t, string(run.ID), summary.RunID)

	svc.Invalidate()
	_, ok = svc.Baseline()
	require.False(t, ok)
}

func TestServiceBaselinePersisted(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	run, err := svc.AnalyzeBaseline(ctx, syntheticCorpus(2, 8))
	require.NoError(t, err)

	_, found, err := st.GetRun(ctx, string(run.ID))
	require.NoError(t, err)
	require.True(t, found)
}

func TestServiceAdHocLeavesBaseline(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	docs := syntheticCorpus(3, 8)
	baseline, err := svc.AnalyzeBaseline(ctx, docs)
	require.NoError(t, err)

	adhoc, err := svc.AnalyzeAdHoc(ctx, docs, AnalyzeOptions{Filter: topicWord(0)})
	require.NoError(t, err)
	require.NotEqual(t, baseline.ID, adhoc.ID)

	cached, ok := svc.Baseline()
	require.True(t, ok)
	require.Equal(t, baseline.ID, cached.ID)
}

func TestServiceTopicsOverTime(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	docs := syntheticCorpus(3, 8)
	baseline, err := svc.AnalyzeBaseline(ctx, docs)
	require.NoError(t, err)

	// empty filter serves the baseline series
	points, err := svc.TopicsOverTime(ctx, docs, "")
	require.NoError(t, err)
	require.Equal(t, baseline.TopicsOverTime(), points)

	// a filter re-analyzes the matching subset
	filtered, err := svc.TopicsOverTime(ctx, docs, topicWord(1))
	require.NoError(t, err)
	require.NotEmpty(t, filtered)
	for _, p := range filtered {
		require.Equal(t, 0, p.ClusterID, "filtered run should renumber from zero")
	}

	_, err = svc.TopicsOverTime(ctx, docs, "nonexistentterm")
	require.ErrorIs(t, err, internalerr.ErrNoMatchingDocuments)
}

func TestServiceLoadRun(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	run, err := svc.AnalyzeBaseline(ctx, syntheticCorpus(2, 8))
	require.NoError(t, err)

	restored, err := svc.LoadRun(ctx, string(run.ID))
	require.NoError(t, err)
	require.Equal(t, run.ID, restored.ID)
	require.Len(t, restored.Documents, len(run.Documents))

	_, err = svc.LoadRun(ctx, "missing-run")
	require.ErrorIs(t, err, internalerr.ErrNotFound)
}

func TestServiceWithoutStore(t *testing.T) {
	svc := NewService(newTestEngine(t, testConfig()), nil)
	ctx := context.Background()

	_, err := svc.AnalyzeBaseline(ctx, syntheticCorpus(2, 8))
	require.NoError(t, err)

	_, err = svc.LoadRun(ctx, "any")
	require.ErrorIs(t, err, internalerr.ErrNotFound)
}
