package mocks

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/example/quickbite/internal/infrastructure/store"
	"github.com/google/uuid"
)

// MockJournal is a recording store.Journal for tests
type MockJournal struct {
	mu     sync.RWMutex
	events []store.Event

	AppendCalls      []AppendCall
	AppendErr        error
	EventsAfterCalls []time.Time
	EventsAfterErr   error
}

// AppendCall records parameters passed to Append
type AppendCall struct {
	StreamID  string
	EventType string
	Data      any
}

func NewMockJournal() *MockJournal {
	return &MockJournal{AppendCalls: make([]AppendCall, 0)}
}

func (m *MockJournal) Append(ctx context.Context, streamID, eventType string, data any) (*store.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AppendCalls = append(m.AppendCalls, AppendCall{
		StreamID:  streamID,
		EventType: eventType,
		Data:      data,
	})

	if m.AppendErr != nil {
		return nil, m.AppendErr
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	version := 1
	for _, e := range m.events {
		if e.StreamID == streamID {
			version++
		}
	}
	event := store.Event{
		ID:        uuid.New().String(),
		StreamID:  streamID,
		EventType: eventType,
		Data:      jsonData,
		Timestamp: time.Now(),
		Version:   version,
	}
	m.events = append(m.events, event)
	return &event, nil
}

func (m *MockJournal) Events(ctx context.Context, streamID string) ([]store.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []store.Event
	for _, e := range m.events {
		if e.StreamID == streamID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockJournal) AllEvents(ctx context.Context) ([]store.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]store.Event(nil), m.events...), nil
}

func (m *MockJournal) EventsAfter(ctx context.Context, after time.Time) ([]store.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.EventsAfterCalls = append(m.EventsAfterCalls, after)
	if m.EventsAfterErr != nil {
		return nil, m.EventsAfterErr
	}

	var out []store.Event
	for _, e := range m.events {
		if e.Timestamp.After(after) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Seed stores events as given, keeping their ids and timestamps
func (m *MockJournal) Seed(events ...store.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
}

// Reset clears all events and recorded calls
func (m *MockJournal) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
	m.AppendCalls = make([]AppendCall, 0)
	m.AppendErr = nil
	m.EventsAfterCalls = nil
	m.EventsAfterErr = nil
}
