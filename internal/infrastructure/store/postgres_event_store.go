package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const createCheckoutEvents = `
CREATE TABLE IF NOT EXISTS checkout_events (
	id         UUID PRIMARY KEY,
	stream_id  TEXT NOT NULL,
	event_type TEXT NOT NULL,
	data       JSONB NOT NULL,
	version    INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	UNIQUE (stream_id, version)
);
CREATE INDEX IF NOT EXISTS idx_checkout_events_created_at ON checkout_events (created_at);
`

const selectEventColumns = `SELECT id, stream_id, event_type, data, version, created_at FROM checkout_events`

// PostgresEventStore keeps the journal in PostgreSQL
type PostgresEventStore struct {
	db        *sql.DB
	publisher Publisher
}

func NewPostgresEventStore(db *sql.DB, publisher Publisher) *PostgresEventStore {
	return &PostgresEventStore{
		db:        db,
		publisher: publisher,
	}
}

// EnsureSchema creates the journal table if it does not exist
func (es *PostgresEventStore) EnsureSchema(ctx context.Context) error {
	if _, err := es.db.ExecContext(ctx, createCheckoutEvents); err != nil {
		return fmt.Errorf("create checkout_events: %w", err)
	}
	return nil
}

// Append inserts the event with the next version of its stream, then publishes it
func (es *PostgresEventStore) Append(ctx context.Context, streamID, eventType string, data any) (*Event, error) {
	tx, err := es.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var currentVersion int
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) FROM checkout_events WHERE stream_id = $1",
		streamID,
	).Scan(&currentVersion)
	if err != nil {
		return nil, fmt.Errorf("read stream version: %w", err)
	}

	event, err := newEvent(streamID, eventType, data, currentVersion+1)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO checkout_events (id, stream_id, event_type, data, version, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		event.ID,
		event.StreamID,
		event.EventType,
		string(event.Data),
		event.Version,
		event.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if err := publish(ctx, es.publisher, event); err != nil {
		return &event, err
	}
	return &event, nil
}

func (es *PostgresEventStore) Events(ctx context.Context, streamID string) ([]Event, error) {
	return es.query(ctx, selectEventColumns+` WHERE stream_id = $1 ORDER BY version ASC`, streamID)
}

func (es *PostgresEventStore) AllEvents(ctx context.Context) ([]Event, error) {
	return es.query(ctx, selectEventColumns+` ORDER BY created_at ASC, version ASC`)
}

// EventsAfter returns events recorded after the given time, for incremental replay
func (es *PostgresEventStore) EventsAfter(ctx context.Context, after time.Time) ([]Event, error) {
	return es.query(ctx, selectEventColumns+` WHERE created_at > $1 ORDER BY created_at ASC, version ASC`, after)
}

func (es *PostgresEventStore) query(ctx context.Context, q string, args ...any) ([]Event, error) {
	rows, err := es.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var data []byte
		if err := rows.Scan(&e.ID, &e.StreamID, &e.EventType, &data, &e.Version, &e.Timestamp); err != nil {
			return nil, err
		}
		e.Data = data
		events = append(events, e)
	}
	return events, rows.Err()
}

// ConnectPostgres opens a pooled connection and pings it
func ConnectPostgres(ctx context.Context, connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}
