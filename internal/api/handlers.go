package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/example/quickbite/internal/api/middleware"
	"github.com/example/quickbite/internal/backend"
	"github.com/example/quickbite/internal/checkout"
	"github.com/example/quickbite/internal/domain/cart"
	"github.com/example/quickbite/internal/domain/order"
	"github.com/example/quickbite/internal/domain/restaurant"
	"github.com/example/quickbite/internal/query"
	"github.com/example/quickbite/internal/readmodel"
	"github.com/example/quickbite/internal/session"
)

// HealthChecker reports the reachability of each backend service
type HealthChecker interface {
	CheckHealth(ctx context.Context) map[string]string
}

type Handlers struct {
	queries  *query.Handler
	checkout *checkout.Service
	carts    *session.Registry
	health   HealthChecker

	pingPeriod time.Duration
}

// NewHandlers wires the HTTP handlers. health may be nil.
func NewHandlers(queries *query.Handler, checkoutSvc *checkout.Service, carts *session.Registry, health HealthChecker) *Handlers {
	return &Handlers{
		queries:  queries,
		checkout: checkoutSvc,
		carts:    carts,
		health:   health,

		pingPeriod: defaultPingPeriod,
	}
}

// Status Handlers

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	services := map[string]string{}
	if h.health != nil {
		services = h.health.CheckHealth(r.Context())
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"services": services,
	})
}

// Restaurant Handlers

func (h *Handlers) GetRestaurants(w http.ResponseWriter, r *http.Request) {
	view, err := h.queries.Restaurants(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *Handlers) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	view, err := h.queries.RestaurantDetail(r.Context(), id, h.sessionCart(r).Snapshot())
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// Cart Handlers

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.queries.Cart(h.sessionCart(r).Snapshot()))
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	c := h.sessionCart(r)
	c.Clear()
	respondJSON(w, http.StatusOK, h.queries.Cart(c.Snapshot()))
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemID       int `json:"itemId"`
		RestaurantID int `json:"restaurantId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ItemID <= 0 || req.RestaurantID <= 0 {
		respondError(w, "itemId and restaurantId are required", http.StatusBadRequest)
		return
	}

	item, err := h.queries.MenuItem(r.Context(), req.RestaurantID, req.ItemID)
	if err != nil {
		respondFailure(w, err)
		return
	}

	c := h.sessionCart(r)
	c.AddItem(item.ID, item.Name, item.Price, req.RestaurantID)
	respondJSON(w, http.StatusOK, h.queries.Cart(c.Snapshot()))
}

func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Quantity *int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity == nil {
		respondError(w, "quantity is required", http.StatusBadRequest)
		return
	}

	c := h.sessionCart(r)
	c.SetQuantity(id, *req.Quantity)
	respondJSON(w, http.StatusOK, h.queries.Cart(c.Snapshot()))
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c := h.sessionCart(r)
	c.SetQuantity(id, 0)
	respondJSON(w, http.StatusOK, h.queries.Cart(c.Snapshot()))
}

// Checkout Handlers

func (h *Handlers) GetCheckout(w http.ResponseWriter, r *http.Request) {
	claims := sessionClaims(r)
	view, err := h.queries.Checkout(r.Context(), claims.UserID, h.sessionCart(r).Snapshot())
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	claims := sessionClaims(r)
	created, err := h.checkout.PlaceOrder(r.Context(), claims.SessionID, claims.UserID, h.sessionCart(r), req.Address)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, readmodel.NewOrderView(*created))
}

// Order Handlers

func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request) {
	view, err := h.queries.Orders(r.Context(), sessionClaims(r).UserID)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	view, err := h.queries.Order(r.Context(), id)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// Session Handlers

// EndSession empties and forgets the session cart and expires the cookie.
// The next request starts a new session.
func (h *Handlers) EndSession(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionClaims(r).SessionID
	h.carts.Cart(sessionID).Clear()
	h.carts.Drop(sessionID)
	middleware.ExpireSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) sessionCart(r *http.Request) *cart.Store {
	return h.carts.Cart(sessionClaims(r).SessionID)
}

// sessionClaims falls back to an anonymous session when the middleware is not mounted
func sessionClaims(r *http.Request) *session.Claims {
	if claims, ok := middleware.GetSession(r.Context()); ok {
		return claims
	}
	return &session.Claims{SessionID: "anonymous", UserID: 1}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, order.ErrMissingAddress), errors.Is(err, order.ErrEmptyOrder):
		respondError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, restaurant.ErrMenuItemNotFound), errors.Is(err, backend.ErrNotFound):
		respondError(w, err.Error(), http.StatusNotFound)
	default:
		log.Printf("[Web] Request failed: %v", err)
		respondError(w, "internal error", http.StatusInternalServerError)
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		respondError(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
