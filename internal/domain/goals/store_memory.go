package goals

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type MemoryStore struct {
	mu    sync.RWMutex
	goals map[string]Goal
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{goals: map[string]Goal{}}
}

func (s *MemoryStore) Create(_ context.Context, goal *Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	goal.ID = uuid.NewString()
	s.goals[goal.ID] = *goal
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	goal, ok := s.goals[id]
	if !ok {
		return Goal{}, ErrNotFound
	}
	return goal, nil
}

func (s *MemoryStore) ListByOwner(_ context.Context, userID string) ([]Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Goal{}
	for _, goal := range s.goals {
		if goal.UserID == userID {
			out = append(out, goal)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) Update(_ context.Context, goal Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.goals[goal.ID]; !ok {
		return ErrNotFound
	}
	s.goals[goal.ID] = goal
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.goals[id]; !ok {
		return ErrNotFound
	}
	delete(s.goals, id)
	return nil
}

func (s *MemoryStore) MarkOverdue(_ context.Context, today string, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, goal := range s.goals {
		if IsOverdue(goal, today) {
			goal.Status = StatusOverdue
			goal.UpdatedAt = now
			s.goals[id] = goal
			n++
		}
	}
	return n, nil
}
