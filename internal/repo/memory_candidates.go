package repo

import (
	"context"
	"sync"

	"github.com/rbalint/candidate-outreach/internal/model"
)

// MemoryCandidateStore backs the workflow when no database is
// configured. Local memory is always "connected".
type MemoryCandidateStore struct {
	mu    sync.Mutex
	order []string
	byID  map[string]model.Candidate
}

var _ CandidateStore = (*MemoryCandidateStore)(nil)

func NewMemoryCandidateStore() *MemoryCandidateStore {
	return &MemoryCandidateStore{byID: make(map[string]model.Candidate)}
}

func (s *MemoryCandidateStore) List(ctx context.Context) ([]model.Candidate, ConnState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Candidate, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out, StateConnected, nil
}

func (s *MemoryCandidateStore) Upsert(ctx context.Context, candidates []model.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range candidates {
		if _, ok := s.byID[c.ID]; !ok {
			s.order = append(s.order, c.ID)
		}
		s.byID[c.ID] = c
	}
	return nil
}

func (s *MemoryCandidateStore) UpdateStatus(ctx context.Context, id string, status model.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.byID[id]; ok {
		c.Status = status
		s.byID[id] = c
	}
	return nil
}

func (s *MemoryCandidateStore) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = nil
	s.byID = make(map[string]model.Candidate)
	return nil
}

func (s *MemoryCandidateStore) State() ConnState {
	return StateConnected
}

func (s *MemoryCandidateStore) Verify(ctx context.Context) error {
	return nil
}
