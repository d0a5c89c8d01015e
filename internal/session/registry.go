package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/example/quickbite/internal/domain/cart"
)

type entry struct {
	cart     *cart.Store
	lastSeen time.Time
}

// Registry owns one cart store per session
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*entry
	idleTTL  time.Duration
	now      func() time.Time
}

func NewRegistry(idleTTL time.Duration) *Registry {
	return &Registry{
		sessions: make(map[string]*entry),
		idleTTL:  idleTTL,
		now:      time.Now,
	}
}

// Cart returns the session's store, creating an empty one on first use
func (r *Registry) Cart(sessionID string) *cart.Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[sessionID]
	if !ok {
		e = &entry{cart: cart.NewStore()}
		r.sessions[sessionID] = e
	}
	e.lastSeen = r.now()
	return e.cart
}

func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions not seen within the idle TTL and returns how many went.
// A cart with live subscribers, such as an open cart stream, counts as seen.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	cutoff := now.Add(-r.idleTTL)
	dropped := 0
	for id, e := range r.sessions {
		if !e.lastSeen.Before(cutoff) {
			continue
		}
		if e.cart.Subscribers() > 0 {
			e.lastSeen = now
			continue
		}
		delete(r.sessions, id)
		dropped++
	}
	return dropped
}

// RunSweeper sweeps every interval until ctx is cancelled
func (r *Registry) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				log.Printf("[Session] Swept %d idle carts, %d active", n, r.Len())
			}
		}
	}
}
