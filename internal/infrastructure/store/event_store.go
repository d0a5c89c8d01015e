package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrPublishFailed is returned when an event was stored but could not be published
var ErrPublishFailed = errors.New("event stored but not published")

// Event is one entry of the checkout journal
type Event struct {
	ID        string          `json:"id"`
	StreamID  string          `json:"stream_id"`
	EventType string          `json:"event_type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	Version   int             `json:"version"`
}

// Journal is an append-only event log partitioned by stream
type Journal interface {
	Append(ctx context.Context, streamID, eventType string, data any) (*Event, error)
	Events(ctx context.Context, streamID string) ([]Event, error)
	AllEvents(ctx context.Context) ([]Event, error)
	EventsAfter(ctx context.Context, after time.Time) ([]Event, error)
}

// Publisher forwards appended events to a message broker
type Publisher interface {
	Publish(ctx context.Context, key string, value any) error
}

func newEvent(streamID, eventType string, data any, version int) (Event, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s event: %w", eventType, err)
	}
	return Event{
		ID:        uuid.New().String(),
		StreamID:  streamID,
		EventType: eventType,
		Data:      jsonData,
		Timestamp: time.Now().UTC(),
		Version:   version,
	}, nil
}

func publish(ctx context.Context, publisher Publisher, event Event) error {
	if publisher == nil {
		return nil
	}
	if err := publisher.Publish(ctx, event.StreamID, event); err != nil {
		return fmt.Errorf("%w: %v", ErrPublishFailed, err)
	}
	return nil
}

// EventStore keeps the journal in memory
type EventStore struct {
	mu        sync.RWMutex
	streams   map[string][]Event
	all       []Event
	publisher Publisher
}

func NewEventStore(publisher Publisher) *EventStore {
	return &EventStore{
		streams:   make(map[string][]Event),
		publisher: publisher,
	}
}

// Append stores an event and publishes it when a publisher is configured.
// A publish failure still leaves the event in the journal.
func (es *EventStore) Append(ctx context.Context, streamID, eventType string, data any) (*Event, error) {
	es.mu.Lock()
	event, err := newEvent(streamID, eventType, data, len(es.streams[streamID])+1)
	if err != nil {
		es.mu.Unlock()
		return nil, err
	}
	es.streams[streamID] = append(es.streams[streamID], event)
	es.all = append(es.all, event)
	es.mu.Unlock()

	if err := publish(ctx, es.publisher, event); err != nil {
		return &event, err
	}
	return &event, nil
}

func (es *EventStore) Events(ctx context.Context, streamID string) ([]Event, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()
	return append([]Event(nil), es.streams[streamID]...), nil
}

// AllEvents returns every event in append order
func (es *EventStore) AllEvents(ctx context.Context) ([]Event, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()
	return append([]Event(nil), es.all...), nil
}

// EventsAfter returns events stamped strictly after the given time, in append order
func (es *EventStore) EventsAfter(ctx context.Context, after time.Time) ([]Event, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()

	var out []Event
	for _, e := range es.all {
		if e.Timestamp.After(after) {
			out = append(out, e)
		}
	}
	return out, nil
}
