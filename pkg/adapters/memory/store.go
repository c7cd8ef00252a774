package memory

import (
	"context"
	"sync"

	"github.com/aretw0/fieldsweep/pkg/domain"
)

// Store implements ports.Store in memory.
// Safe for concurrent use.
type Store struct {
	data      map[string]*domain.Checkpoint
	autostart map[string]bool
	mu        sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data:      make(map[string]*domain.Checkpoint),
		autostart: make(map[string]bool),
	}
}

// Save persists a copy of the checkpoint in memory.
func (s *Store) Save(ctx context.Context, sweepID string, cp *domain.Checkpoint) error {
	copied := cp.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sweepID] = copied
	return nil
}

// Load retrieves a copy of the checkpoint, so callers can't mutate the store through the pointer.
func (s *Store) Load(ctx context.Context, sweepID string) (*domain.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp, ok := s.data[sweepID]
	if !ok {
		return nil, domain.ErrCheckpointNotFound
	}
	return cp.Clone(), nil
}

// Delete removes the checkpoint.
func (s *Store) Delete(ctx context.Context, sweepID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sweepID)
	return nil
}

// List returns stored sweep IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}

// SetAutostart sets or clears the autostart marker.
func (s *Store) SetAutostart(ctx context.Context, sweepID string, on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on {
		s.autostart[sweepID] = true
	} else {
		delete(s.autostart, sweepID)
	}
	return nil
}

// Autostart reports whether the marker is set.
func (s *Store) Autostart(ctx context.Context, sweepID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.autostart[sweepID], nil
}
