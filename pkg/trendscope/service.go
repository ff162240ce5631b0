package trendscope

import (
	"context"
	"fmt"
	"sync"

	"github.com/cognicore/trendscope/pkg/trendscope/internalerr"
	"github.com/cognicore/trendscope/pkg/trendscope/store"
)

// Service wraps an Engine with an explicit baseline run cache and optional
// persistence. The "analyze the corpus once at startup, serve queries
// forever" pattern lives here, as a constructed-and-invalidated run
// rather than hidden global state. Ad-hoc analysis always recomputes.
type Service struct {
	engine *Engine
	store  store.Store // optional

	mu       sync.RWMutex
	baseline *AnalysisRun
}

// NewService creates a service. st may be nil for a purely in-memory
// service.
func NewService(engine *Engine, st store.Store) *Service {
	return &Service{engine: engine, store: st}
}

// AnalyzeBaseline analyzes the corpus and retains the result as the
// baseline run, replacing any previous baseline. The run is persisted
// when a store is configured.
func (s *Service) AnalyzeBaseline(ctx context.Context, docs []SourceDoc) (*AnalysisRun, error) {
	run, err := s.engine.Analyze(ctx, docs, AnalyzeOptions{})
	if err != nil {
		return nil, err
	}
	if err := s.saveRun(ctx, run); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.baseline = run
	s.mu.Unlock()
	return run, nil
}

// Baseline returns the cached baseline run, if one exists.
func (s *Service) Baseline() (*AnalysisRun, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.baseline, s.baseline != nil
}

// Invalidate drops the cached baseline run.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.baseline = nil
	s.mu.Unlock()
}

// AnalyzeAdHoc runs a fresh analysis, never touching the baseline cache.
// The run is persisted when a store is configured.
func (s *Service) AnalyzeAdHoc(ctx context.Context, docs []SourceDoc, opt AnalyzeOptions) (*AnalysisRun, error) {
	run, err := s.engine.Analyze(ctx, docs, opt)
	if err != nil {
		return nil, err
	}
	if err := s.saveRun(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// DocumentInfo answers the per-document query from the baseline run.
func (s *Service) DocumentInfo() ([]Assignment, error) {
	run, ok := s.Baseline()
	if !ok {
		return nil, fmt.Errorf("%w: no baseline run", internalerr.ErrNotFound)
	}
	return run.DocumentInfo(), nil
}

// TopicSummary answers the topic-catalogue query from the baseline run.
func (s *Service) TopicSummary() (Summary, error) {
	run, ok := s.Baseline()
	if !ok {
		return Summary{}, fmt.Errorf("%w: no baseline run", internalerr.ErrNotFound)
	}
	return BuildSummary(run), nil
}

// TopicsOverTime answers the trend query. With an empty filter it serves
// the baseline series; with a filter it re-analyzes the filtered subset,
// which produces a fresh topic numbering not comparable to the baseline.
func (s *Service) TopicsOverTime(ctx context.Context, docs []SourceDoc, filter string) ([]TrendPoint, error) {
	if filter == "" {
		run, ok := s.Baseline()
		if !ok {
			return nil, fmt.Errorf("%w: no baseline run", internalerr.ErrNotFound)
		}
		return run.TopicsOverTime(), nil
	}

	run, err := s.AnalyzeAdHoc(ctx, docs, AnalyzeOptions{Filter: filter})
	if err != nil {
		return nil, err
	}
	return run.TopicsOverTime(), nil
}

// LoadRun restores a persisted run for query answering.
func (s *Service) LoadRun(ctx context.Context, id string) (*AnalysisRun, error) {
	if s.store == nil {
		return nil, fmt.Errorf("%w: no store configured", internalerr.ErrNotFound)
	}
	rec, found, err := s.store.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: run %s", internalerr.ErrNotFound, id)
	}
	return RestoreRun(rec), nil
}

func (s *Service) saveRun(ctx context.Context, run *AnalysisRun) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.SaveRun(ctx, StoreRun(run)); err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	return nil
}
