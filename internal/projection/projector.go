package projection

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/example/quickbite/internal/checkout"
	"github.com/example/quickbite/internal/infrastructure/store"
	"github.com/example/quickbite/internal/readmodel"
)

// replayOverlap is re-read on every incremental replay so rows committed out
// of timestamp order are still picked up. Dedup absorbs the repeats.
const replayOverlap = time.Minute

// Projector folds checkout journal events into per-user order summaries
type Projector struct {
	mu        sync.RWMutex
	summaries map[int]*readmodel.OrderSummary
	seen      map[string]struct{}
	watermark time.Time // newest journal timestamp read by Replay

	// OnUpdate, when set, is called with each changed summary
	OnUpdate func(readmodel.OrderSummary)
}

func NewProjector() *Projector {
	return &Projector{
		summaries: make(map[int]*readmodel.OrderSummary),
		seen:      make(map[string]struct{}),
	}
}

// HandleEvent has the kafka.MessageHandler signature
func (p *Projector) HandleEvent(ctx context.Context, key, value []byte) error {
	var event store.Event
	if err := json.Unmarshal(value, &event); err != nil {
		return fmt.Errorf("decode journal event: %w", err)
	}
	return p.Apply(event)
}

// Apply projects one event. Redelivered events are ignored.
func (p *Projector) Apply(event store.Event) error {
	_, err := p.apply(event)
	return err
}

func (p *Projector) apply(event store.Event) (bool, error) {
	if event.EventType != checkout.EventOrderSubmitted {
		return false, nil
	}

	var e checkout.OrderSubmitted
	if err := json.Unmarshal(event.Data, &e); err != nil {
		return false, fmt.Errorf("decode %s %s: %w", event.EventType, event.ID, err)
	}

	p.mu.Lock()
	if _, dup := p.seen[event.ID]; dup {
		p.mu.Unlock()
		return false, nil
	}
	p.seen[event.ID] = struct{}{}

	s, ok := p.summaries[e.UserID]
	if !ok {
		s = &readmodel.OrderSummary{UserID: e.UserID}
		p.summaries[e.UserID] = s
	}
	s.OrderCount++
	s.ItemCount += e.ItemCount
	s.TotalSpent = s.TotalSpent.Add(e.TotalAmount)
	if !e.SubmittedAt.Before(s.LastOrderAt) {
		s.LastOrderID = e.OrderID
		s.LastOrderAt = e.SubmittedAt
	}
	updated := *s
	p.mu.Unlock()

	log.Printf("[Projector] Order %d projected for user %d", e.OrderID, e.UserID)
	if p.OnUpdate != nil {
		p.OnUpdate(updated)
	}
	return true, nil
}

// Replay reads the journal past the last replay and returns how many events
// were newly projected. The first call reads the whole journal. Events that
// also arrive over Kafka are applied once.
func (p *Projector) Replay(ctx context.Context, journal store.Journal) (int, error) {
	p.mu.RLock()
	after := p.watermark
	p.mu.RUnlock()
	if !after.IsZero() {
		after = after.Add(-replayOverlap)
	}

	events, err := journal.EventsAfter(ctx, after)
	if err != nil {
		return 0, fmt.Errorf("load journal: %w", err)
	}

	applied := 0
	for _, event := range events {
		ok, err := p.apply(event)
		if err != nil {
			log.Printf("[Projector] Skipping event %s: %v", event.ID, err)
			continue
		}
		if ok {
			applied++
		}
	}

	p.mu.Lock()
	for _, event := range events {
		if event.Timestamp.After(p.watermark) {
			p.watermark = event.Timestamp
		}
	}
	p.mu.Unlock()

	return applied, nil
}

// RunResync replays the journal every interval until ctx is cancelled. It
// catches orders whose journal entry was stored but never reached Kafka.
func (p *Projector) RunResync(ctx context.Context, journal store.Journal, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.Replay(ctx, journal)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("[Projector] Resync failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("[Projector] Resync projected %d events missed by the consumer", n)
			}
		}
	}
}

func (p *Projector) Summary(userID int) (readmodel.OrderSummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.summaries[userID]
	if !ok {
		return readmodel.OrderSummary{}, false
	}
	return *s, true
}

// Summaries returns every summary ordered by user id
func (p *Projector) Summaries() []readmodel.OrderSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]readmodel.OrderSummary, 0, len(p.summaries))
	for _, s := range p.summaries {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}
