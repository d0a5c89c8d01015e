package api

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/example/quickbite/internal/domain/cart"
	"github.com/example/quickbite/internal/readmodel"
	"github.com/gorilla/websocket"
)

const (
	defaultPingPeriod = 30 * time.Second
	writeWait         = 10 * time.Second
	maxClientMessage  = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type cartMessage struct {
	Type string `json:"type"`
	readmodel.CartView
}

// CartStream pushes the session cart to a WebSocket client on connect and
// after every change. Slow clients only ever receive the latest cart.
func (h *Handlers) CartStream(w http.ResponseWriter, r *http.Request) {
	c := h.sessionCart(r)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Web] WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	var (
		mu     sync.Mutex
		latest cart.Snapshot
	)
	changed := make(chan struct{}, 1)
	unsubscribe := c.Subscribe(func(snap cart.Snapshot) {
		mu.Lock()
		latest = snap
		mu.Unlock()
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	pingPeriod := h.pingPeriod
	pongWait := pingPeriod * 2

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(maxClientMessage)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case <-changed:
			mu.Lock()
			snap := latest
			mu.Unlock()

			conn.SetWriteDeadline(time.Now().Add(writeWait))
			msg := cartMessage{Type: "cart_updated", CartView: readmodel.NewCartView(snap)}
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("[Web] WebSocket write failed: %v", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
