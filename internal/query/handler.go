package query

import (
	"context"
	"fmt"

	"github.com/example/quickbite/internal/backend"
	"github.com/example/quickbite/internal/domain/cart"
	"github.com/example/quickbite/internal/domain/restaurant"
	"github.com/example/quickbite/internal/readmodel"
)

// Handler assembles the read-only views of the client
type Handler struct {
	api backend.API
}

func NewHandler(api backend.API) *Handler {
	return &Handler{api: api}
}

// Restaurants lists restaurants whose name or cuisine contains q
func (h *Handler) Restaurants(ctx context.Context, q string) (*readmodel.RestaurantListView, error) {
	all, err := h.api.GetRestaurants(ctx)
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	return &readmodel.RestaurantListView{
		Query:       q,
		Restaurants: restaurant.Filter(all, q),
	}, nil
}

func (h *Handler) RestaurantDetail(ctx context.Context, restaurantID int, snap cart.Snapshot) (*readmodel.RestaurantDetailView, error) {
	r, err := h.api.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("get restaurant %d: %w", restaurantID, err)
	}
	view := readmodel.NewRestaurantDetailView(*r, snap)
	return &view, nil
}

// MenuItem resolves a menu item so the cart is priced from the catalog
func (h *Handler) MenuItem(ctx context.Context, restaurantID, itemID int) (restaurant.MenuItem, error) {
	r, err := h.api.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return restaurant.MenuItem{}, fmt.Errorf("get restaurant %d: %w", restaurantID, err)
	}
	return r.FindItem(itemID)
}

func (h *Handler) Cart(snap cart.Snapshot) readmodel.CartView {
	return readmodel.NewCartView(snap)
}

// Checkout prefills the delivery address from the user's profile
func (h *Handler) Checkout(ctx context.Context, userID int, snap cart.Snapshot) (*readmodel.CheckoutView, error) {
	u, err := h.api.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}
	return &readmodel.CheckoutView{
		Cart:           readmodel.NewCartView(snap),
		DefaultAddress: u.Address,
		PaymentMethod:  readmodel.DefaultPaymentMethod,
	}, nil
}

func (h *Handler) Orders(ctx context.Context, userID int) (*readmodel.OrdersView, error) {
	orders, err := h.api.GetOrders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders for user %d: %w", userID, err)
	}
	view := &readmodel.OrdersView{Orders: make([]readmodel.OrderView, 0, len(orders))}
	for _, o := range orders {
		view.Orders = append(view.Orders, readmodel.NewOrderView(o))
	}
	return view, nil
}

func (h *Handler) Order(ctx context.Context, orderID int) (*readmodel.OrderView, error) {
	o, err := h.api.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", orderID, err)
	}
	view := readmodel.NewOrderView(*o)
	return &view, nil
}
