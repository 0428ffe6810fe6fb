package repository

import "time"

// DefaultListLimit is used when List is called with limit 0.
const DefaultListLimit = 50

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithMaxSnapshots bounds how many snapshots are retained. The oldest are
// evicted first. Zero keeps everything.
func WithMaxSnapshots(n int) Option {
	return func(s *MemoryStore) {
		if n >= 0 {
			s.maxSnapshots = n
		}
	}
}

// WithClock replaces the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}
