package fallback

import (
	"context"
	"log"
	"math/rand/v2"
	"time"

	"github.com/example/quickbite/internal/backend"
	"github.com/example/quickbite/internal/domain/order"
	"github.com/example/quickbite/internal/domain/restaurant"
	"github.com/example/quickbite/internal/domain/user"
)

// Gateway decorates a backend.API so that every failed call is answered
// with fixed demo data instead of an error. Views built on top of it only
// ever see successful responses.
type Gateway struct {
	next     backend.API
	now      func() time.Time
	randomID func() int
}

func NewGateway(next backend.API) *Gateway {
	return &Gateway{
		next:     next,
		now:      time.Now,
		randomID: func() int { return rand.IntN(1000) },
	}
}

func (g *Gateway) GetUser(ctx context.Context, userID int) (*user.User, error) {
	u, err := g.next.GetUser(ctx, userID)
	if err != nil {
		logFallback("GetUser", err)
		return mockUser(userID), nil
	}
	return u, nil
}

func (g *Gateway) GetRestaurants(ctx context.Context) ([]restaurant.Restaurant, error) {
	restaurants, err := g.next.GetRestaurants(ctx)
	if err != nil {
		logFallback("GetRestaurants", err)
		return mockRestaurants(), nil
	}
	return restaurants, nil
}

func (g *Gateway) GetRestaurant(ctx context.Context, restaurantID int) (*restaurant.Restaurant, error) {
	r, err := g.next.GetRestaurant(ctx, restaurantID)
	if err != nil {
		logFallback("GetRestaurant", err)
		return mockRestaurant(restaurantID), nil
	}
	return r, nil
}

func (g *Gateway) GetOrders(ctx context.Context, userID int) ([]order.Order, error) {
	orders, err := g.next.GetOrders(ctx, userID)
	if err != nil {
		logFallback("GetOrders", err)
		return mockOrders(userID, g.now()), nil
	}
	return orders, nil
}

func (g *Gateway) GetOrder(ctx context.Context, orderID int) (*order.Order, error) {
	o, err := g.next.GetOrder(ctx, orderID)
	if err != nil {
		logFallback("GetOrder", err)
		return mockOrder(orderID, g.now()), nil
	}
	return o, nil
}

// CreateOrder echoes the submitted order back with a random id when the
// order service cannot be reached.
func (g *Gateway) CreateOrder(ctx context.Context, o *order.Order) (*order.Order, error) {
	created, err := g.next.CreateOrder(ctx, o)
	if err != nil {
		logFallback("CreateOrder", err)
		mock := *o
		mock.ID = g.randomID()
		mock.Items = append([]order.Item(nil), o.Items...)
		mock.Status = order.StatusCreated
		mock.CreatedAt = g.now()
		return &mock, nil
	}
	return created, nil
}

func logFallback(op string, err error) {
	log.Printf("[Fallback] %s failed, serving demo data: %v", op, err)
}
