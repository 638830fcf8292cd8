package budget

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu      sync.Mutex
	states  map[string]State
	history map[string][]Entry
}

// NewMemoryStore constructs an in-memory budget store for tests and local runs.
func NewMemoryStore() Store {
	return &memoryStore{states: make(map[string]State), history: make(map[string][]Entry)}
}

func (s *memoryStore) Create(_ context.Context, userID string, st State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.states[userID]; !exists {
		s.states[userID] = st.Clone()
	}
	return nil
}

func (s *memoryStore) Get(_ context.Context, userID string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[userID]
	if !ok {
		return State{}, ErrNotFound
	}
	return st.Clone(), nil
}

func (s *memoryStore) Put(_ context.Context, userID string, st State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[userID] = st.Clone()
	return nil
}

func (s *memoryStore) Update(_ context.Context, userID string, fn MutateFunc) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.states[userID]
	if !ok {
		return State{}, ErrNotFound
	}

	next := current.Clone()
	entry, err := fn(&next)
	if err != nil {
		return State{}, err
	}
	entry.CreatedAt = time.Now().UTC()

	s.states[userID] = next
	s.history[userID] = append(s.history[userID], entry)
	return next.Clone(), nil
}

func (s *memoryStore) History(_ context.Context, userID string, limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.history[userID]
	limit = clampLimit(limit)
	out := make([]Entry, 0, min(limit, len(entries)))
	for i := len(entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}
