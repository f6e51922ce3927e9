package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/arjunc477/telemetry-hub/internal/domain"
)

// InsertEvent persists one event and returns the id assigned by the database.
// Id assignment is serialized by the SERIAL sequence; nothing here re-implements
// ordering across concurrent inserts.
func (s *PostgresStore) InsertEvent(ctx context.Context, ev domain.Event) (int64, error) {
	var props []byte
	if ev.Properties != nil {
		b, err := json.Marshal(ev.Properties)
		if err != nil {
			return 0, fmt.Errorf("marshaling properties: %w", err)
		}
		props = b
	}

	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO events (event_type, user_id, properties, captured_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, ev.EventType, ev.UserID, props, ev.CapturedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting event: %w", err)
	}
	return id, nil
}

// EventsSince returns all events captured at or after since. Order is not
// guaranteed; the aggregation engine does not need one.
func (s *PostgresStore) EventsSince(ctx context.Context, since time.Time) ([]domain.Event, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, event_type, user_id, properties, captured_at
		FROM events
		WHERE captured_at >= $1
	`, since)
	if err != nil {
		return nil, fmt.Errorf("querying events since %s: %w", since.Format(time.RFC3339), err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// RecentToday returns up to limit events from the current UTC calendar day,
// newest first by id.
func (s *PostgresStore) RecentToday(ctx context.Context, limit int) ([]domain.Event, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, event_type, user_id, properties, captured_at
		FROM events
		WHERE (captured_at AT TIME ZONE 'utc')::date = (NOW() AT TIME ZONE 'utc')::date
		ORDER BY id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

type pgRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanEvents(rows pgRows) ([]domain.Event, error) {
	var events []domain.Event
	for rows.Next() {
		var (
			e     domain.Event
			props []byte
		)
		if err := rows.Scan(&e.ID, &e.EventType, &e.UserID, &props, &e.CapturedAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		if len(props) > 0 {
			if err := json.Unmarshal(props, &e.Properties); err != nil {
				return nil, fmt.Errorf("decoding event %d properties: %w", e.ID, err)
			}
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}

	if events == nil {
		events = []domain.Event{}
	}
	return events, nil
}
