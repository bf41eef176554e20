package evaluations

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type MemoryStore struct {
	mu          sync.RWMutex
	evaluations map[string]Evaluation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{evaluations: map[string]Evaluation{}}
}

func (s *MemoryStore) Create(_ context.Context, e *Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = uuid.NewString()
	s.evaluations[e.ID] = *e
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.evaluations[id]
	if !ok {
		return Evaluation{}, ErrNotFound
	}
	return e, nil
}

func (s *MemoryStore) filter(keep func(Evaluation) bool) []Evaluation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Evaluation{}
	for _, e := range s.evaluations {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *MemoryStore) ListAll(_ context.Context) ([]Evaluation, error) {
	return s.filter(func(Evaluation) bool { return true }), nil
}

func (s *MemoryStore) ListForUser(_ context.Context, userID string) ([]Evaluation, error) {
	return s.filter(func(e Evaluation) bool { return e.IsParticipant(userID) }), nil
}

func (s *MemoryStore) Update(_ context.Context, e Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.evaluations[e.ID]; !ok {
		return ErrNotFound
	}
	s.evaluations[e.ID] = e
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.evaluations[id]; !ok {
		return ErrNotFound
	}
	delete(s.evaluations, id)
	return nil
}
