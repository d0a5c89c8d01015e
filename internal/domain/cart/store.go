package cart

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Line is one distinct menu item in the cart
type Line struct {
	ItemID    int             `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Subtotal returns unit price times quantity
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Snapshot is a consistent read of the whole cart
type Snapshot struct {
	Lines        []Line          `json:"items"`
	Total        decimal.Decimal `json:"total"`
	RestaurantID int             `json:"restaurantId,omitempty"`
	Bound        bool            `json:"-"`
}

// Count returns the number of units across all lines
func (s Snapshot) Count() int {
	n := 0
	for _, l := range s.Lines {
		n += l.Quantity
	}
	return n
}

// Empty reports whether the snapshot has no lines
func (s Snapshot) Empty() bool { return len(s.Lines) == 0 }

type subscriber struct {
	id int
	fn func(Snapshot)
}

// Store holds the in-progress order of a single session and notifies
// subscribers synchronously on every mutation.
//
// Subscribers receive the current state when they subscribe and again after
// each mutation, before the mutating call returns. Callbacks must not mutate
// the store they observe.
type Store struct {
	emitMu sync.Mutex // serializes notifications, taken before mu

	mu           sync.Mutex
	lines        []Line
	restaurantID int
	bound        bool
	total        decimal.Decimal
	subscribers  []subscriber
	nextSubID    int
}

// NewStore returns an empty, unbound cart
func NewStore() *Store {
	return &Store{total: decimal.Zero}
}

// AddItem adds one unit of an item. Adding an item from a restaurant other
// than the bound one empties the cart and rebinds it first.
func (s *Store) AddItem(itemID int, name string, unitPrice decimal.Decimal, restaurantID int) {
	s.mutate(func() {
		if s.bound && s.restaurantID != restaurantID {
			s.reset()
		}
		if !s.bound {
			s.restaurantID = restaurantID
			s.bound = true
		}

		if i := s.indexOf(itemID); i >= 0 {
			s.lines[i].Quantity++
			return
		}
		s.lines = append(s.lines, Line{
			ItemID:    itemID,
			Name:      name,
			UnitPrice: unitPrice,
			Quantity:  1,
		})
	})
}

// SetQuantity sets the quantity of an existing line. A quantity of zero or
// less removes the line.
func (s *Store) SetQuantity(itemID, quantity int) {
	s.mutate(func() {
		i := s.indexOf(itemID)
		if i < 0 {
			return
		}
		if quantity <= 0 {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return
		}
		s.lines[i].Quantity = quantity
	})
}

// Clear removes all lines and unbinds the restaurant
func (s *Store) Clear() {
	s.mutate(s.reset)
}

// Lines returns a copy of the current lines in insertion order
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLines()
}

// Total returns the current cart total
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// BoundRestaurant returns the restaurant the cart is bound to, if any
func (s *Store) BoundRestaurant() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restaurantID, s.bound
}

// Snapshot returns lines, total and binding read under one lock
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn for whole-cart updates. fn is called with the
// current state before Subscribe returns. The returned function removes the
// subscription and may be called more than once.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	s.nextSubID++
	id := s.nextSubID
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})
	snap := s.snapshotLocked()
	s.mu.Unlock()

	fn(snap)

	var once sync.Once
	return func() {
		once.Do(func() { s.unsubscribe(id) })
	}
}

// SubscribeLines registers fn for line-list updates with replay of the current lines
func (s *Store) SubscribeLines(fn func([]Line)) (unsubscribe func()) {
	return s.Subscribe(func(snap Snapshot) { fn(snap.Lines) })
}

// SubscribeTotal registers fn for total updates with replay of the current total
func (s *Store) SubscribeTotal(fn func(decimal.Decimal)) (unsubscribe func()) {
	return s.Subscribe(func(snap Snapshot) { fn(snap.Total) })
}

// Subscribers reports how many subscriptions are currently registered
func (s *Store) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers)
}

func (s *Store) unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subscribers {
		if sub.id == id {
			s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
			return
		}
	}
}

// mutate applies change, recomputes the total and notifies every subscriber
// with the resulting state.
func (s *Store) mutate(change func()) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	change()
	s.recomputeTotal()
	snap := s.snapshotLocked()
	subs := make([]subscriber, len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, sub := range subs {
		// each subscriber gets its own copy of the lines
		sub.fn(Snapshot{
			Lines:        append([]Line(nil), snap.Lines...),
			Total:        snap.Total,
			RestaurantID: snap.RestaurantID,
			Bound:        snap.Bound,
		})
	}
}

func (s *Store) reset() {
	s.lines = nil
	s.restaurantID = 0
	s.bound = false
}

func (s *Store) recomputeTotal() {
	total := decimal.Zero
	for _, l := range s.lines {
		total = total.Add(l.Subtotal())
	}
	s.total = total
}

func (s *Store) indexOf(itemID int) int {
	for i, l := range s.lines {
		if l.ItemID == itemID {
			return i
		}
	}
	return -1
}

func (s *Store) copyLines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Lines:        s.copyLines(),
		Total:        s.total,
		RestaurantID: s.restaurantID,
		Bound:        s.bound,
	}
}
