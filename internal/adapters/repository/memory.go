package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/okian/timeline/pkg/metrics"
)

// MemoryStore keeps snapshots in process memory, ordered by version.
type MemoryStore struct {
	mu           sync.RWMutex
	snaps        []Snapshot
	byID         map[string]int
	version      int64
	maxSnapshots int
	now          func() time.Time
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		byID: make(map[string]int),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Save(_ context.Context, snap Snapshot) (Snapshot, error) {
	if len(snap.Document) == 0 {
		return Snapshot{}, ErrEmptyDoc
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.version++
	snap.ID = NewSnapshotID()
	snap.Version = s.version
	snap.CreatedAt = s.now().UTC()
	snap.Document = slices.Clone(snap.Document)

	s.snaps = append(s.snaps, snap)
	if s.maxSnapshots > 0 && len(s.snaps) > s.maxSnapshots {
		s.snaps = slices.Delete(s.snaps, 0, len(s.snaps)-s.maxSnapshots)
	}
	s.reindex()
	return withDocument(snap), nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return withDocument(s.snaps[i]), nil
}

func (s *MemoryStore) Latest(_ context.Context) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.snaps) == 0 {
		return Snapshot{}, ErrNotFound
	}
	return withDocument(s.snaps[len(s.snaps)-1]), nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]Snapshot, error) {
	if limit < 0 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	if limit == 0 {
		limit = DefaultListLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Snapshot, 0, min(limit, len(s.snaps)))
	for i := len(s.snaps) - 1; i >= 0 && len(out) < limit; i-- {
		snap := s.snaps[i]
		snap.Document = nil
		out = append(out, snap)
	}
	return out, nil
}

func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snaps)
}

func (s *MemoryStore) Close() error { return nil }

// reindex must be called with mu held.
func (s *MemoryStore) reindex() {
	clear(s.byID)
	for i, snap := range s.snaps {
		s.byID[snap.ID] = i
	}
}

func withDocument(snap Snapshot) Snapshot {
	snap.Document = slices.Clone(snap.Document)
	return snap
}
