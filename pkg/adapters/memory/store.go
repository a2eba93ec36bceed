package memory

import (
	"context"
	"sync"

	"github.com/aretw0/syllabus/pkg/domain"
)

// Store implements ports.DraftStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Draft
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Draft),
	}
}

// Save persists the draft in memory.
func (s *Store) Save(ctx context.Context, draftID string, draft *domain.Draft) error {
	// Deep copy to ensure isolation, similar to serialization
	copied := draft.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[draftID] = copied
	return nil
}

// Load retrieves the draft from memory.
func (s *Store) Load(ctx context.Context, draftID string) (*domain.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	draft, ok := s.data[draftID]
	if !ok {
		return nil, domain.ErrDraftNotFound
	}

	// Copy on read so the caller can't mutate store state by pointer
	return draft.Clone(), nil
}

// Delete removes the draft.
func (s *Store) Delete(ctx context.Context, draftID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, draftID)
	return nil
}

// List returns stored draft IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	drafts := make([]string, 0, len(s.data))
	for id := range s.data {
		drafts = append(drafts, id)
	}
	return drafts, nil
}
