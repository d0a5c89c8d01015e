package backend

import (
	"time"

	"github.com/example/quickbite/internal/domain/order"
	"github.com/example/quickbite/internal/domain/restaurant"
	"github.com/shopspring/decimal"
)

// The backend services exchange prices as JSON numbers

type menuItemPayload struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
}

type restaurantPayload struct {
	ID        int               `json:"id"`
	Name      string            `json:"name"`
	Address   string            `json:"address"`
	Cuisine   string            `json:"cuisine"`
	Rating    float64           `json:"rating"`
	MenuItems []menuItemPayload `json:"menuItems"`
}

func (p restaurantPayload) toDomain() restaurant.Restaurant {
	r := restaurant.Restaurant{
		ID:      p.ID,
		Name:    p.Name,
		Address: p.Address,
		Cuisine: p.Cuisine,
		Rating:  p.Rating,
	}
	for _, item := range p.MenuItems {
		r.MenuItems = append(r.MenuItems, restaurant.MenuItem{
			ID:          item.ID,
			Name:        item.Name,
			Description: item.Description,
			Price:       decimal.NewFromFloat(item.Price),
			Category:    item.Category,
		})
	}
	return r
}

type orderItemPayload struct {
	MenuItemID int     `json:"menuItemId"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
}

type orderPayload struct {
	ID           int                `json:"id,omitempty"`
	UserID       int                `json:"userId"`
	RestaurantID int                `json:"restaurantId"`
	Items        []orderItemPayload `json:"items"`
	TotalAmount  float64            `json:"totalAmount"`
	Status       string             `json:"status"`
	Address      string             `json:"address"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    *time.Time         `json:"updatedAt,omitempty"`
}

func orderToPayload(o *order.Order) orderPayload {
	p := orderPayload{
		ID:           o.ID,
		UserID:       o.UserID,
		RestaurantID: o.RestaurantID,
		Items:        make([]orderItemPayload, 0, len(o.Items)),
		TotalAmount:  o.TotalAmount.InexactFloat64(),
		Status:       o.Status,
		Address:      o.Address,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
	for _, item := range o.Items {
		p.Items = append(p.Items, orderItemPayload{
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			Price:      item.Price.InexactFloat64(),
			Quantity:   item.Quantity,
		})
	}
	return p
}

func (p orderPayload) toDomain() *order.Order {
	o := &order.Order{
		ID:           p.ID,
		UserID:       p.UserID,
		RestaurantID: p.RestaurantID,
		Items:        make([]order.Item, 0, len(p.Items)),
		TotalAmount:  decimal.NewFromFloat(p.TotalAmount),
		Status:       p.Status,
		Address:      p.Address,
		CreatedAt:    p.CreatedAt,
	}
	// the order service sends a zero time for orders never updated
	if p.UpdatedAt != nil && !p.UpdatedAt.IsZero() {
		updated := *p.UpdatedAt
		o.UpdatedAt = &updated
	}
	for _, item := range p.Items {
		o.Items = append(o.Items, order.Item{
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			Price:      decimal.NewFromFloat(item.Price),
			Quantity:   item.Quantity,
		})
	}
	return o
}
