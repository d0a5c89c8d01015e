package checkout

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/example/quickbite/internal/backend"
	"github.com/example/quickbite/internal/domain/cart"
	"github.com/example/quickbite/internal/domain/order"
	"github.com/example/quickbite/internal/infrastructure/store"
	"github.com/shopspring/decimal"
)

const EventOrderSubmitted = "OrderSubmitted"

// OrderSubmitted is journaled after the backend accepts an order
type OrderSubmitted struct {
	OrderID      int             `json:"orderId"`
	UserID       int             `json:"userId"`
	RestaurantID int             `json:"restaurantId"`
	ItemCount    int             `json:"itemCount"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Address      string          `json:"address"`
	SubmittedAt  time.Time       `json:"submittedAt"`
}

type Service struct {
	api     backend.API
	journal store.Journal
	now     func() time.Time
}

// NewService builds a checkout service. journal may be nil.
func NewService(api backend.API, journal store.Journal) *Service {
	return &Service{
		api:     api,
		journal: journal,
		now:     time.Now,
	}
}

// PlaceOrder submits the session's cart as an order and clears the cart
// once the backend has accepted it.
func (s *Service) PlaceOrder(ctx context.Context, sessionID string, userID int, c *cart.Store, address string) (*order.Order, error) {
	o, err := order.FromCart(userID, address, c.Snapshot(), s.now())
	if err != nil {
		return nil, err
	}

	created, err := s.api.CreateOrder(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("submit order: %w", err)
	}

	c.Clear()
	log.Printf("[Checkout] Order %d submitted for user %d (%s)", created.ID, userID, created.TotalAmount.StringFixed(2))

	if s.journal != nil {
		event := OrderSubmitted{
			OrderID:      created.ID,
			UserID:       userID,
			RestaurantID: created.RestaurantID,
			ItemCount:    created.ItemCount(),
			TotalAmount:  created.TotalAmount,
			Address:      created.Address,
			SubmittedAt:  s.now(),
		}
		if _, err := s.journal.Append(ctx, sessionID, EventOrderSubmitted, event); err != nil {
			log.Printf("[Checkout] Failed to journal order %d: %v", created.ID, err)
		}
	}

	return created, nil
}
