package api

import (
	"bufio"
	"errors"
	"log"
	"net"
	"net/http"
	"time"
)

func NewRouter(handlers *Handlers, webDir string) http.Handler {
	mux := http.NewServeMux()

	// Static files (web UI)
	if webDir != "" {
		fs := http.FileServer(http.Dir(webDir))
		mux.Handle("/", fs)
	}

	mux.HandleFunc("GET /health", handlers.Health)
	mux.HandleFunc("GET /api/status", handlers.Status)

	// Restaurants
	mux.HandleFunc("GET /api/restaurants", handlers.GetRestaurants)
	mux.HandleFunc("GET /api/restaurants/{id}", handlers.GetRestaurant)

	// Cart
	mux.HandleFunc("GET /api/cart", handlers.GetCart)
	mux.HandleFunc("DELETE /api/cart", handlers.ClearCart)
	mux.HandleFunc("POST /api/cart/items", handlers.AddToCart)
	mux.HandleFunc("PUT /api/cart/items/{id}", handlers.UpdateCartItem)
	mux.HandleFunc("DELETE /api/cart/items/{id}", handlers.RemoveFromCart)
	mux.HandleFunc("GET /api/cart/stream", handlers.CartStream)

	// Checkout
	mux.HandleFunc("GET /api/checkout", handlers.GetCheckout)
	mux.HandleFunc("POST /api/checkout", handlers.PlaceOrder)

	// Orders
	mux.HandleFunc("GET /api/orders", handlers.GetOrders)
	mux.HandleFunc("GET /api/orders/{id}", handlers.GetOrder)

	// Session
	mux.HandleFunc("DELETE /api/session", handlers.EndSession)

	return withLogging(mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Unwrap lets http.ResponseController reach the underlying writer
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack keeps WebSocket upgrades working behind the logger
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("[Web] %s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}
