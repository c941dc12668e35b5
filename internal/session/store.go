// Package session holds the server-side half of the pending-intent pair:
// one slot per session identity, read once near the start of a turn and
// written at most once at the end. Concurrent writes from the same session
// are not synchronized; last write wins.
package session

import (
	"context"
	"sync"
)

// MemoryStore is an in-process store for single-node deployments and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	pending map[string]string
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pending: make(map[string]string)}
}

// GetPendingIntent returns the pending intent for a session, or "".
func (s *MemoryStore) GetPendingIntent(_ context.Context, sessionID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending[sessionID], nil
}

// SetPendingIntent stores the pending intent for a session.
func (s *MemoryStore) SetPendingIntent(_ context.Context, sessionID, intent string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[sessionID] = intent
	return nil
}

// ClearPendingIntent removes the pending intent for a session.
func (s *MemoryStore) ClearPendingIntent(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, sessionID)
	return nil
}
