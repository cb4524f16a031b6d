package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/hybridq/internal/core/domain"
	"github.com/custodia-labs/hybridq/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.HistoryStore = (*HistoryStore)(nil)

// DefaultHistorySize is the number of queries kept when no size is given.
const DefaultHistorySize = 100

// HistoryStore keeps the most recent queries in a fixed-size ring.
type HistoryStore struct {
	mu      sync.Mutex
	entries []domain.HistoryEntry
	start   int
	n       int
}

// NewHistoryStore creates a ring holding at most size entries.
func NewHistoryStore(size int) *HistoryStore {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &HistoryStore{entries: make([]domain.HistoryEntry, size)}
}

// Append records entry, overwriting the oldest once the ring is full.
func (s *HistoryStore) Append(_ context.Context, entry domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	size := len(s.entries)
	if s.n < size {
		s.entries[(s.start+s.n)%size] = entry
		s.n++
		return nil
	}
	s.entries[s.start] = entry
	s.start = (s.start + 1) % size
	return nil
}

// List returns entries oldest first.
func (s *HistoryStore) List(_ context.Context) ([]domain.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.HistoryEntry, s.n)
	for i := 0; i < s.n; i++ {
		out[i] = s.entries[(s.start+i)%len(s.entries)]
	}
	return out, nil
}

// Prune drops all but the newest keep entries.
func (s *HistoryStore) Prune(_ context.Context, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keep < 0 {
		keep = 0
	}
	if keep >= s.n {
		return nil
	}
	drop := s.n - keep
	s.start = (s.start + drop) % len(s.entries)
	s.n = keep
	return nil
}

// Len returns the number of stored entries.
func (s *HistoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}
