package store

import (
	"context"
	"sync"
)

// MemoryStore is a volatile SessionStore keeping the mapping in a process
// local map. It is safe for concurrent use and intended for tests.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]string
}

// NewMemoryStore constructs an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]string)}
}

// Get looks up the thread handle for a user.
func (s *MemoryStore) Get(_ context.Context, userID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	threadID, ok := s.sessions[userID]
	return threadID, ok, nil
}

// GetOrCreate returns the existing handle or creates and stores a new one.
func (s *MemoryStore) GetOrCreate(ctx context.Context, userID string, create CreateThreadFunc) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if threadID, ok := s.sessions[userID]; ok {
		return threadID, nil
	}

	threadID, err := create(ctx)
	if err != nil {
		return "", err
	}
	s.sessions[userID] = threadID
	return threadID, nil
}

// Reset removes the user's entry if present.
func (s *MemoryStore) Reset(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[userID]; !ok {
		return false, nil
	}
	delete(s.sessions, userID)
	return true, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
