// Package repository persists exported timeline documents as numbered snapshots.
package repository

import (
	"context"
	"time"
)

// Snapshot is one stored export of the timeline.
type Snapshot struct {
	ID        string    `json:"id"`
	Version   int64     `json:"version"`
	Title     string    `json:"title"`
	Events    int       `json:"events"`
	Timespans int       `json:"timespans"`
	CreatedAt time.Time `json:"created_at"`

	// Document is the JSON export. List leaves it empty.
	Document []byte `json:"-"`
}

// Store provides read/write access to snapshots.
type Store interface {
	// Save assigns an ID, the next version and a creation time, stores the
	// snapshot and returns it.
	Save(ctx context.Context, snap Snapshot) (Snapshot, error)

	// Get returns the snapshot with id, document included.
	// Returns ErrNotFound if there is none.
	Get(ctx context.Context, id string) (Snapshot, error)

	// Latest returns the snapshot with the highest version.
	// Returns ErrNotFound if the store is empty.
	Latest(ctx context.Context) (Snapshot, error)

	// List returns up to limit snapshots, newest first, without documents.
	List(ctx context.Context, limit int) ([]Snapshot, error)

	// Count returns the number of stored snapshots.
	Count(ctx context.Context) int

	Close() error
}
