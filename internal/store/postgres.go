package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaSQL bootstraps the events table. Every statement is guarded with
// IF NOT EXISTS so running it on each process start, even from several
// instances at once, is a no-op after the first.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS events (
	id SERIAL PRIMARY KEY,
	event_type TEXT,
	user_id TEXT,
	properties JSONB,
	captured_at TIMESTAMPTZ DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_events_captured_at ON events (captured_at);
`

// PostgresStore is the primary persistence layer for events.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres opens a connection pool and fails fast if the database is
// unreachable.
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema applies the event schema. Safe to call on every start.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}
