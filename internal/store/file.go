package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists the session mapping as a single flat JSON object,
// rewritten wholesale on every mutation. A missing file at startup is an
// empty store, not an error.
type FileStore struct {
	path string

	mu       sync.Mutex
	sessions map[string]string
}

// NewFileStore loads the mapping from path, initializing an empty mapping if
// the file does not exist yet.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	sessions := make(map[string]string)
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// First start.
	case err != nil:
		return nil, fmt.Errorf("read session file: %w", err)
	default:
		if err := json.Unmarshal(data, &sessions); err != nil {
			return nil, fmt.Errorf("parse session file %s: %w", path, err)
		}
	}

	return &FileStore{path: path, sessions: sessions}, nil
}

// Get looks up the thread handle for a user.
func (s *FileStore) Get(_ context.Context, userID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	threadID, ok := s.sessions[userID]
	return threadID, ok, nil
}

// GetOrCreate returns the existing handle or creates, persists, and returns a
// new one. The store lock is held across the create callback so a single
// invocation can never produce two handles for the same user.
func (s *FileStore) GetOrCreate(ctx context.Context, userID string, create CreateThreadFunc) (string, error) {
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
	if err := s.persistLocked(); err != nil {
		delete(s.sessions, userID)
		return "", err
	}
	return threadID, nil
}

// Reset removes the user's entry if present.
func (s *FileStore) Reset(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	threadID, ok := s.sessions[userID]
	if !ok {
		return false, nil
	}

	delete(s.sessions, userID)
	if err := s.persistLocked(); err != nil {
		s.sessions[userID] = threadID
		return false, err
	}
	return true, nil
}

// Close is a no-op; every mutation is already flushed synchronously.
func (s *FileStore) Close() error {
	return nil
}

// persistLocked rewrites the whole mapping. Written to a temp file and
// renamed so a crash mid-write cannot truncate the map. Caller holds s.mu.
func (s *FileStore) persistLocked() error {
	data, err := json.MarshalIndent(s.sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session map: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}
