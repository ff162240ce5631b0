package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/trendscope/pkg/trendscope/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu   sync.RWMutex
	runs map[string]store.Run
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{runs: make(map[string]store.Run)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveRun stores a copy of the run. Duplicate ids are rejected; runs are
// immutable.
func (s *Store) SaveRun(ctx context.Context, r store.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[r.ID]; ok {
		return fmt.Errorf("run %s already exists", r.ID)
	}
	s.runs[r.ID] = copyRun(r)
	return nil
}

// GetRun returns a copy of the stored run.
func (s *Store) GetRun(ctx context.Context, id string) (store.Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if r, ok := s.runs[id]; ok {
		return copyRun(r), true, nil
	}
	return store.Run{}, false, nil
}

// ListRuns returns run metadata, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]store.RunMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	metas := make([]store.RunMeta, 0, len(s.runs))
	for _, r := range s.runs {
		metas = append(metas, store.RunMeta{
			ID:            r.ID,
			CreatedAt:     r.CreatedAt,
			DocumentCount: len(r.Documents),
		})
	}
	sort.Slice(metas, func(i, j int) bool {
		if metas[i].CreatedAt.Equal(metas[j].CreatedAt) {
			return metas[i].ID > metas[j].ID
		}
		return metas[i].CreatedAt.After(metas[j].CreatedAt)
	})
	return metas, nil
}

// DeleteRun removes a run.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, id)
	return nil
}

func copyRun(r store.Run) store.Run {
	out := r

	out.Documents = make([]store.Document, len(r.Documents))
	for i, d := range r.Documents {
		if d.Timestamp != nil {
			ts := *d.Timestamp
			d.Timestamp = &ts
		}
		out.Documents[i] = d
	}

	out.Topics = make([]store.Topic, len(r.Topics))
	for i, t := range r.Topics {
		keywords := make([]store.Keyword, len(t.Keywords))
		copy(keywords, t.Keywords)
		t.Keywords = keywords
		out.Topics[i] = t
	}

	out.Trends = make([]store.TrendPoint, len(r.Trends))
	copy(out.Trends, r.Trends)

	return out
}
