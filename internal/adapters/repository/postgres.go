package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/timeline/pkg/metrics"
)

const schema = `
CREATE TABLE IF NOT EXISTS timeline_snapshots (
	id         TEXT PRIMARY KEY,
	version    BIGINT NOT NULL UNIQUE,
	title      TEXT NOT NULL DEFAULT '',
	events     INTEGER NOT NULL DEFAULT 0,
	timespans  INTEGER NOT NULL DEFAULT 0,
	document   JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE SEQUENCE IF NOT EXISTS timeline_snapshot_versions;
SELECT setval('timeline_snapshot_versions',
	GREATEST((SELECT COALESCE(MAX(version), 0) FROM timeline_snapshots) + 1,
		(SELECT CASE WHEN is_called THEN last_value + 1 ELSE last_value END FROM timeline_snapshot_versions)),
	false)`

// PostgresStore keeps snapshots in a PostgreSQL table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dsn and creates the snapshot table if needed.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create snapshot table: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Save inserts snap under a fresh id. Versions come from a sequence, so
// concurrent saves never share one.
func (s *PostgresStore) Save(ctx context.Context, snap Snapshot) (Snapshot, error) {
	if len(snap.Document) == 0 {
		return Snapshot{}, ErrEmptyDoc
	}
	snap.ID = NewSnapshotID()
	err := s.pool.QueryRow(ctx, `
		INSERT INTO timeline_snapshots (id, version, title, events, timespans, document)
		VALUES ($1, nextval('timeline_snapshot_versions'), $2, $3, $4, $5)
		RETURNING version, created_at`,
		snap.ID, snap.Title, snap.Events, snap.Timespans, snap.Document,
	).Scan(&snap.Version, &snap.CreatedAt)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "save_failed")
		return Snapshot{}, fmt.Errorf("insert snapshot: %w", err)
	}
	snap.CreatedAt = snap.CreatedAt.UTC()
	return snap, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Snapshot, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, version, title, events, timespans, created_at, document
		FROM timeline_snapshots WHERE id = $1`, id)
	return scanOne(row, id)
}

func (s *PostgresStore) Latest(ctx context.Context) (Snapshot, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, version, title, events, timespans, created_at, document
		FROM timeline_snapshots ORDER BY version DESC LIMIT 1`)
	return scanOne(row, "latest")
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]Snapshot, error) {
	if limit < 0 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	if limit == 0 {
		limit = DefaultListLimit
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, version, title, events, timespans, created_at
		FROM timeline_snapshots ORDER BY version DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	out := []Snapshot{}
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.Version, &snap.Title, &snap.Events, &snap.Timespans, &snap.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snap.CreatedAt = snap.CreatedAt.UTC()
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Count(ctx context.Context) int {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM timeline_snapshots`).Scan(&n); err != nil {
		metrics.RecordErrorByComponent("repository", "count_failed")
		return 0
	}
	return n
}

// Purge deletes every snapshot and restarts version numbering.
func (s *PostgresStore) Purge(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `TRUNCATE timeline_snapshots; ALTER SEQUENCE timeline_snapshot_versions RESTART`); err != nil {
		return fmt.Errorf("purge snapshots: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanOne(row pgx.Row, key string) (Snapshot, error) {
	var snap Snapshot
	err := row.Scan(&snap.ID, &snap.Version, &snap.Title, &snap.Events, &snap.Timespans, &snap.CreatedAt, &snap.Document)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			metrics.RecordErrorByComponent("repository", "not_found")
			return Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return Snapshot{}, fmt.Errorf("get snapshot: %w", err)
	}
	snap.CreatedAt = snap.CreatedAt.UTC()
	return snap, nil
}
