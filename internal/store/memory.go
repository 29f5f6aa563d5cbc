package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/mollier-diagram/internal/mollier"
)

var (
	// ErrNotFound is returned when no diagram matches the query.
	ErrNotFound = errors.New("no diagram available")
)

// MemoryStore is a concurrency-safe in-memory history of assembled diagrams,
// ordered by assembly time.
type MemoryStore struct {
	mu       sync.RWMutex
	diagrams []mollier.Diagram

	// retention configuration
	maxHistory int           // max number of diagrams kept
	maxAge     time.Duration // max age relative to the newest diagram
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory or maxAge is <= 0, that limit is disabled.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// SaveDiagram inserts a diagram and enforces retention.
func (s *MemoryStore) SaveDiagram(d mollier.Diagram) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Refreshes normally arrive in order; keep the slice sorted if they don't.
	i := sort.Search(len(s.diagrams), func(i int) bool {
		return s.diagrams[i].AssembledAt.After(d.AssembledAt)
	})
	s.diagrams = append(s.diagrams, mollier.Diagram{})
	copy(s.diagrams[i+1:], s.diagrams[i:])
	s.diagrams[i] = d

	if s.maxHistory > 0 && len(s.diagrams) > s.maxHistory {
		s.diagrams = s.diagrams[len(s.diagrams)-s.maxHistory:]
	}

	if s.maxAge > 0 {
		cutoff := s.diagrams[len(s.diagrams)-1].AssembledAt.Add(-s.maxAge)
		keep := sort.Search(len(s.diagrams), func(i int) bool {
			return !s.diagrams[i].AssembledAt.Before(cutoff)
		})
		s.diagrams = s.diagrams[keep:]
	}
}

// GetLatest returns the most recently assembled diagram.
func (s *MemoryStore) GetLatest() (mollier.Diagram, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.diagrams) == 0 {
		return mollier.Diagram{}, ErrNotFound
	}
	return s.diagrams[len(s.diagrams)-1], nil
}

// GetRange returns all diagrams assembled between from and to (inclusive).
func (s *MemoryStore) GetRange(from, to time.Time) ([]mollier.Diagram, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []mollier.Diagram
	for _, d := range s.diagrams {
		if !d.AssembledAt.Before(from) && !d.AssembledAt.After(to) {
			result = append(result, d)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}

// Len returns the number of retained diagrams.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.diagrams)
}
