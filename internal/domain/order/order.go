package order

import (
	"errors"
	"strings"
	"time"

	"github.com/example/quickbite/internal/domain/cart"
	"github.com/shopspring/decimal"
)

// Status values known to the client. The backend owns the lifecycle; any
// other string it returns is passed through unchanged.
const (
	StatusCreated        = "created"
	StatusPaid           = "paid"
	StatusPreparing      = "preparing"
	StatusProcessing     = "processing"
	StatusOutForDelivery = "out_for_delivery"
	StatusDelivered      = "delivered"
	StatusCancelled      = "cancelled"
)

var (
	ErrEmptyOrder     = errors.New("order must have at least one item")
	ErrMissingAddress = errors.New("delivery address is required")
)

type Item struct {
	MenuItemID int             `json:"menuItemId"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
}

type Order struct {
	ID           int             `json:"id"`
	UserID       int             `json:"userId"`
	RestaurantID int             `json:"restaurantId"`
	Items        []Item          `json:"items"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Status       string          `json:"status"`
	Address      string          `json:"address"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    *time.Time      `json:"updatedAt,omitempty"`
}

// ItemCount returns the number of units in the order
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// FromCart builds an order ready for submission from a cart snapshot.
// An unbound cart yields restaurant 0.
func FromCart(userID int, address string, snap cart.Snapshot, now time.Time) (*Order, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrMissingAddress
	}
	if snap.Empty() {
		return nil, ErrEmptyOrder
	}

	items := make([]Item, 0, len(snap.Lines))
	for _, line := range snap.Lines {
		items = append(items, Item{
			MenuItemID: line.ItemID,
			Name:       line.Name,
			Price:      line.UnitPrice,
			Quantity:   line.Quantity,
		})
	}

	restaurantID := 0
	if snap.Bound {
		restaurantID = snap.RestaurantID
	}

	return &Order{
		UserID:       userID,
		RestaurantID: restaurantID,
		Items:        items,
		TotalAmount:  snap.Total,
		Status:       StatusCreated,
		Address:      address,
		CreatedAt:    now,
	}, nil
}
