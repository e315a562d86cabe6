package session

import (
	"context"
	"sync"
)

// MemoryStore is an in-process session store. Histories do not survive
// restarts; intended for tests and development without Redis.
type MemoryStore struct {
	mu      sync.RWMutex
	threads map[string][]Turn
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{threads: make(map[string][]Turn)}
}

// Append adds turns to the end of a thread's history.
func (s *MemoryStore) Append(ctx context.Context, threadID string, turns ...Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.threads[threadID] = append(s.threads[threadID], turns...)
	return nil
}

// Load returns a copy of the history, oldest first.
func (s *MemoryStore) Load(ctx context.Context, threadID string) ([]Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.threads[threadID]
	out := make([]Turn, len(history))
	copy(out, history)
	return out, nil
}

// Clear removes the history for a thread.
func (s *MemoryStore) Clear(ctx context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.threads, threadID)
	return nil
}
