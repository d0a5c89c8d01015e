package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/quickbite/internal/api/middleware"
	"github.com/example/quickbite/internal/backend"
	"github.com/example/quickbite/internal/checkout"
	"github.com/example/quickbite/internal/domain/cart"
	"github.com/example/quickbite/internal/domain/order"
	"github.com/example/quickbite/internal/domain/restaurant"
	"github.com/example/quickbite/internal/domain/user"
	"github.com/example/quickbite/internal/infrastructure/store/mocks"
	"github.com/example/quickbite/internal/query"
	"github.com/example/quickbite/internal/session"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// fakeBackend serves two small menus and records submitted orders
type fakeBackend struct {
	created   []*order.Order
	createErr error
}

func (f *fakeBackend) GetUser(ctx context.Context, userID int) (*user.User, error) {
	return &user.User{ID: userID, Name: "Ana", Address: "1 Elm St"}, nil
}

func (f *fakeBackend) GetRestaurants(ctx context.Context) ([]restaurant.Restaurant, error) {
	return []restaurant.Restaurant{
		{ID: 1, Name: "Tasty Bites", Cuisine: "Italian"},
		{ID: 2, Name: "Burger Palace", Cuisine: "American"},
	}, nil
}

func (f *fakeBackend) GetRestaurant(ctx context.Context, restaurantID int) (*restaurant.Restaurant, error) {
	switch restaurantID {
	case 1:
		return &restaurant.Restaurant{ID: 1, Name: "Tasty Bites", MenuItems: []restaurant.MenuItem{
			{ID: 1, Name: "Margherita Pizza", Price: price("12.99"), Category: "Main"},
			{ID: 3, Name: "Tiramisu", Price: price("7.99"), Category: "Dessert"},
		}}, nil
	case 2:
		return &restaurant.Restaurant{ID: 2, Name: "Burger Palace", MenuItems: []restaurant.MenuItem{
			{ID: 5, Name: "Chicken Burger", Price: price("9.99"), Category: "Main"},
		}}, nil
	}
	return nil, &backend.StatusError{Method: http.MethodGet, Code: http.StatusNotFound}
}

func (f *fakeBackend) GetOrders(ctx context.Context, userID int) ([]order.Order, error) {
	return []order.Order{{ID: 1, UserID: userID, Status: "delivered", CreatedAt: time.Date(2025, 3, 1, 14, 30, 0, 0, time.UTC)}}, nil
}

func (f *fakeBackend) GetOrder(ctx context.Context, orderID int) (*order.Order, error) {
	if orderID == 500 {
		return nil, errors.New("order service exploded")
	}
	return &order.Order{ID: orderID, Status: "created", CreatedAt: time.Date(2025, 3, 1, 14, 30, 0, 0, time.UTC)}, nil
}

func (f *fakeBackend) CreateOrder(ctx context.Context, o *order.Order) (*order.Order, error) {
	f.created = append(f.created, o)
	if f.createErr != nil {
		return nil, f.createErr
	}
	c := *o
	c.ID = 42
	return &c, nil
}

type fakeHealth struct{}

func (fakeHealth) CheckHealth(ctx context.Context) map[string]string {
	return map[string]string{"orders": "ok", "users": "status 503"}
}

type testServer struct {
	handler http.Handler
	api     *fakeBackend
	journal *mocks.MockJournal
	carts   *session.Registry
	tokens  *session.TokenService
	token   string
	claims  *session.Claims
}

func newTestServer(t *testing.T, webDir string) *testServer {
	t.Helper()
	api := &fakeBackend{}
	journal := mocks.NewMockJournal()
	carts := session.NewRegistry(time.Hour)
	tokens, err := session.NewTokenService("test-secret-key-for-testing-purposes", time.Hour)
	require.NoError(t, err)
	token, claims, err := tokens.Issue(1)
	require.NoError(t, err)

	handlers := NewHandlers(query.NewHandler(api), checkout.NewService(api, journal), carts, fakeHealth{})
	handlers.pingPeriod = 250 * time.Millisecond
	router := NewRouter(handlers, webDir)

	return &testServer{
		handler: middleware.SessionMiddleware(tokens, 1, false)(router),
		api:     api,
		journal: journal,
		carts:   carts,
		tokens:  tokens,
		token:   token,
		claims:  claims,
	}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: s.token})
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// ============================================
// Status Tests
// ============================================

func TestHealth(t *testing.T) {
	s := newTestServer(t, "")

	rec := s.do(t, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestStatus_ReportsBackends(t *testing.T) {
	s := newTestServer(t, "")

	rec := s.do(t, http.MethodGet, "/api/status", "")

	require.Equal(t, http.StatusOK, rec.Code)
	services := decode(t, rec)["services"].(map[string]any)
	assert.Equal(t, "ok", services["orders"])
	assert.Equal(t, "status 503", services["users"])
}

// ============================================
// Restaurant Tests
// ============================================

func TestGetRestaurants_Filter(t *testing.T) {
	s := newTestServer(t, "")

	rec := s.do(t, http.MethodGet, "/api/restaurants?q=burger", "")

	require.Equal(t, http.StatusOK, rec.Code)
	restaurants := decode(t, rec)["restaurants"].([]any)
	require.Len(t, restaurants, 1)
	assert.Equal(t, "Burger Palace", restaurants[0].(map[string]any)["name"])
}

func TestGetRestaurant_Detail(t *testing.T) {
	s := newTestServer(t, "")

	rec := s.do(t, http.MethodGet, "/api/restaurants/1", "")

	require.Equal(t, http.StatusOK, rec.Code)
	menu := decode(t, rec)["menu"].([]any)
	require.Len(t, menu, 2)
	assert.Equal(t, "Main", menu[0].(map[string]any)["category"])
}

func TestGetRestaurant_BadAndUnknownID(t *testing.T) {
	s := newTestServer(t, "")

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/restaurants/abc", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/restaurants/99", "").Code)
}

// ============================================
// Cart Tests
// ============================================

func TestAddToCart_PricesFromMenu(t *testing.T) {
	s := newTestServer(t, "")

	s.do(t, http.MethodPost, "/api/cart/items", `{"itemId":1,"restaurantId":1}`)
	rec := s.do(t, http.MethodPost, "/api/cart/items", `{"itemId":1,"restaurantId":1,"price":0.01}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "25.98", body["total"])
	assert.Equal(t, float64(2), body["count"])
	assert.Equal(t, float64(1), body["restaurantId"])

	lines := s.carts.Cart(s.claims.SessionID).Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "Margherita Pizza", lines[0].Name)
}

func TestAddToCart_OtherRestaurantReplacesCart(t *testing.T) {
	s := newTestServer(t, "")

	s.do(t, http.MethodPost, "/api/cart/items", `{"itemId":1,"restaurantId":1}`)
	rec := s.do(t, http.MethodPost, "/api/cart/items", `{"itemId":5,"restaurantId":2}`)

	body := decode(t, rec)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "Chicken Burger", items[0].(map[string]any)["name"])
	assert.Equal(t, float64(2), body["restaurantId"])
}

func TestAddToCart_Errors(t *testing.T) {
	s := newTestServer(t, "")

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/cart/items", `{bad`).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/cart/items", `{"itemId":1}`).Code)

	rec := s.do(t, http.MethodPost, "/api/cart/items", `{"itemId":99,"restaurantId":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "menu item")
}

func TestUpdateAndRemoveCartItem(t *testing.T) {
	s := newTestServer(t, "")
	s.do(t, http.MethodPost, "/api/cart/items", `{"itemId":1,"restaurantId":1}`)
	s.do(t, http.MethodPost, "/api/cart/items", `{"itemId":3,"restaurantId":1}`)

	rec := s.do(t, http.MethodPut, "/api/cart/items/1", `{"quantity":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "46.96", decode(t, rec)["total"])

	rec = s.do(t, http.MethodDelete, "/api/cart/items/3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "38.97", decode(t, rec)["total"])

	rec = s.do(t, http.MethodPut, "/api/cart/items/1", `{"quantity":0}`)
	body := decode(t, rec)
	assert.Empty(t, body["items"])
	// binding survives removal of the last line
	assert.Equal(t, float64(1), body["restaurantId"])

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPut, "/api/cart/items/1", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPut, "/api/cart/items/x", `{"quantity":1}`).Code)
}

func TestClearCart(t *testing.T) {
	s := newTestServer(t, "")
	s.do(t, http.MethodPost, "/api/cart/items", `{"itemId":1,"restaurantId":1}`)

	rec := s.do(t, http.MethodDelete, "/api/cart", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "0", body["total"])
	assert.Nil(t, body["restaurantId"])
}

func TestCart_IsolatedPerSession(t *testing.T) {
	s := newTestServer(t, "")
	s.do(t, http.MethodPost, "/api/cart/items", `{"itemId":1,"restaurantId":1}`)

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Empty(t, decode(t, rec)["items"])
	assert.NotEmpty(t, rec.Result().Cookies())
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, "")

	rec := s.do(t, http.MethodPatch, "/api/cart", "")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// ============================================
// Checkout Tests
// ============================================

func TestGetCheckout(t *testing.T) {
	s := newTestServer(t, "")

	rec := s.do(t, http.MethodGet, "/api/checkout", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "1 Elm St", body["defaultAddress"])
	assert.Equal(t, "card", body["paymentMethod"])
}

func TestPlaceOrder_Success(t *testing.T) {
	s := newTestServer(t, "")
	s.do(t, http.MethodPost, "/api/cart/items", `{"itemId":1,"restaurantId":1}`)

	rec := s.do(t, http.MethodPost, "/api/checkout", `{"address":"9 Side St"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(42), body["id"])
	assert.Equal(t, "status-created", body["statusClass"])
	require.Len(t, s.api.created, 1)
	assert.Equal(t, "9 Side St", s.api.created[0].Address)
	assert.Empty(t, s.carts.Cart(s.claims.SessionID).Lines())

	require.Len(t, s.journal.AppendCalls, 1)
	assert.Equal(t, s.claims.SessionID, s.journal.AppendCalls[0].StreamID)
}

func TestPlaceOrder_ValidationErrors(t *testing.T) {
	s := newTestServer(t, "")

	rec := s.do(t, http.MethodPost, "/api/checkout", `{"address":"9 Side St"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, order.ErrEmptyOrder.Error(), decode(t, rec)["error"])

	s.do(t, http.MethodPost, "/api/cart/items", `{"itemId":1,"restaurantId":1}`)
	rec = s.do(t, http.MethodPost, "/api/checkout", `{"address":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, order.ErrMissingAddress.Error(), decode(t, rec)["error"])

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/checkout", `nope`).Code)
	assert.Empty(t, s.api.created)
}

func TestPlaceOrder_BackendFailure(t *testing.T) {
	s := newTestServer(t, "")
	s.api.createErr = errors.New("timeout")
	s.do(t, http.MethodPost, "/api/cart/items", `{"itemId":1,"restaurantId":1}`)

	rec := s.do(t, http.MethodPost, "/api/checkout", `{"address":"9 Side St"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Len(t, s.carts.Cart(s.claims.SessionID).Lines(), 1)
}

// ============================================
// Order Tests
// ============================================

func TestGetOrders(t *testing.T) {
	s := newTestServer(t, "")

	rec := s.do(t, http.MethodGet, "/api/orders", "")

	require.Equal(t, http.StatusOK, rec.Code)
	orders := decode(t, rec)["orders"].([]any)
	require.Len(t, orders, 1)
	first := orders[0].(map[string]any)
	assert.Equal(t, "status-delivered", first["statusClass"])
	assert.Equal(t, "Mar 1, 2025, 02:30 PM", first["formattedDate"])
}

func TestGetOrder(t *testing.T) {
	s := newTestServer(t, "")

	rec := s.do(t, http.MethodGet, "/api/orders/7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(7), decode(t, rec)["id"])

	rec = s.do(t, http.MethodGet, "/api/orders/500", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", decode(t, rec)["error"])
}

// ============================================
// Session Tests
// ============================================

func TestEndSession(t *testing.T) {
	s := newTestServer(t, "")
	s.do(t, http.MethodPost, "/api/cart/items", `{"itemId":1,"restaurantId":1}`)
	var lastTotal string
	s.carts.Cart(s.claims.SessionID).Subscribe(func(snap cart.Snapshot) { lastTotal = snap.Total.String() })
	require.Equal(t, 1, s.carts.Len())

	rec := s.do(t, http.MethodDelete, "/api/session", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, s.carts.Len())
	// watchers of the old cart see it emptied
	assert.Equal(t, "0", lastTotal)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookieName, cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0)
}

// ============================================
// Static Files Tests
// ============================================

func TestStaticFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>QuickBite</h1>"), 0o644))
	s := newTestServer(t, dir)

	rec := s.do(t, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "QuickBite")
}
