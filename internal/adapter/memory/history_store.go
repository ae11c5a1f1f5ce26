// Package memory provides process-local implementations of domain stores,
// used when no external backend is configured and in tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/pscheid92/lingobridge/internal/domain"
)

// HistoryStore keeps per-client history in memory, newest first.
type HistoryStore struct {
	mu      sync.RWMutex
	limit   int
	entries map[uuid.UUID][]domain.HistoryEntry
}

var _ domain.HistoryStore = (*HistoryStore)(nil)

func NewHistoryStore(limit int) *HistoryStore {
	if limit <= 0 {
		limit = domain.DefaultHistoryLimit
	}
	return &HistoryStore{
		limit:   limit,
		entries: make(map[uuid.UUID][]domain.HistoryEntry),
	}
}

func (s *HistoryStore) Add(_ context.Context, clientID uuid.UUID, entry domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.entries[clientID]
	next := make([]domain.HistoryEntry, 0, min(len(current)+1, s.limit))
	next = append(next, entry)
	next = append(next, current[:min(len(current), s.limit-1)]...)
	s.entries[clientID] = next
	return nil
}

func (s *HistoryStore) List(_ context.Context, clientID uuid.UUID, limit int) ([]domain.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.entries[clientID]
	if limit <= 0 || limit > len(current) {
		limit = len(current)
	}
	out := make([]domain.HistoryEntry, limit)
	copy(out, current[:limit])
	return out, nil
}

func (s *HistoryStore) Clear(_ context.Context, clientID uuid.UUID) error {
	s.mu.Lock()
	delete(s.entries, clientID)
	s.mu.Unlock()
	return nil
}
