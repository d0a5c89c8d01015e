package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/quickbite/internal/domain/cart"
	"github.com/example/quickbite/internal/domain/order"
	"github.com/example/quickbite/internal/domain/restaurant"
	"github.com/example/quickbite/internal/domain/user"
	"github.com/example/quickbite/internal/infrastructure/store/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// orderAPI accepts orders and assigns sequential ids
type orderAPI struct {
	submitted []*order.Order
	err       error
	nextID    int
}

func (a *orderAPI) CreateOrder(ctx context.Context, o *order.Order) (*order.Order, error) {
	a.submitted = append(a.submitted, o)
	if a.err != nil {
		return nil, a.err
	}
	a.nextID++
	created := *o
	created.ID = a.nextID
	return &created, nil
}

func (a *orderAPI) GetUser(ctx context.Context, userID int) (*user.User, error) { return nil, nil }
func (a *orderAPI) GetRestaurants(ctx context.Context) ([]restaurant.Restaurant, error) {
	return nil, nil
}
func (a *orderAPI) GetRestaurant(ctx context.Context, restaurantID int) (*restaurant.Restaurant, error) {
	return nil, nil
}
func (a *orderAPI) GetOrders(ctx context.Context, userID int) ([]order.Order, error) { return nil, nil }
func (a *orderAPI) GetOrder(ctx context.Context, orderID int) (*order.Order, error)  { return nil, nil }

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService() (*Service, *orderAPI, *mocks.MockJournal) {
	api := &orderAPI{nextID: 100}
	journal := mocks.NewMockJournal()
	svc := NewService(api, journal)
	svc.now = func() time.Time { return fixedNow }
	return svc, api, journal
}

func filledCart() *cart.Store {
	c := cart.NewStore()
	c.AddItem(1, "Margherita Pizza", decimal.RequireFromString("12.99"), 1)
	c.AddItem(1, "Margherita Pizza", decimal.RequireFromString("12.99"), 1)
	c.AddItem(3, "Tiramisu", decimal.RequireFromString("7.99"), 1)
	return c
}

// ============================================
// Place Order Tests
// ============================================

func TestService_PlaceOrder_Success(t *testing.T) {
	svc, api, journal := newTestService()
	c := filledCart()

	created, err := svc.PlaceOrder(context.Background(), "session-1", 1, c, "  9 Side St ")

	require.NoError(t, err)
	assert.Equal(t, 101, created.ID)
	assert.Equal(t, "33.97", created.TotalAmount.StringFixed(2))
	assert.Equal(t, 1, created.RestaurantID)
	assert.Equal(t, "9 Side St", created.Address)

	require.Len(t, api.submitted, 1)
	sent := api.submitted[0]
	assert.Equal(t, order.StatusCreated, sent.Status)
	assert.Equal(t, fixedNow, sent.CreatedAt)
	require.Len(t, sent.Items, 2)
	assert.Equal(t, 2, sent.Items[0].Quantity)

	// cart is cleared and unbound
	assert.Empty(t, c.Lines())
	assert.True(t, c.Total().IsZero())
	_, bound := c.BoundRestaurant()
	assert.False(t, bound)

	require.Len(t, journal.AppendCalls, 1)
	call := journal.AppendCalls[0]
	assert.Equal(t, "session-1", call.StreamID)
	assert.Equal(t, EventOrderSubmitted, call.EventType)
	event := call.Data.(OrderSubmitted)
	assert.Equal(t, 101, event.OrderID)
	assert.Equal(t, 3, event.ItemCount)
	assert.Equal(t, fixedNow, event.SubmittedAt)
}

func TestService_PlaceOrder_NotifiesSubscribersOfClear(t *testing.T) {
	svc, _, _ := newTestService()
	c := filledCart()
	var totals []string
	unsubscribe := c.SubscribeTotal(func(total decimal.Decimal) {
		totals = append(totals, total.StringFixed(2))
	})
	defer unsubscribe()

	_, err := svc.PlaceOrder(context.Background(), "s", 1, c, "1 Elm St")

	require.NoError(t, err)
	assert.Equal(t, []string{"33.97", "0.00"}, totals)
}

func TestService_PlaceOrder_MissingAddress(t *testing.T) {
	svc, api, journal := newTestService()
	c := filledCart()

	created, err := svc.PlaceOrder(context.Background(), "s", 1, c, "   ")

	assert.ErrorIs(t, err, order.ErrMissingAddress)
	assert.Nil(t, created)
	assert.Empty(t, api.submitted)
	assert.Empty(t, journal.AppendCalls)
	assert.Len(t, c.Lines(), 2)
}

func TestService_PlaceOrder_EmptyCart(t *testing.T) {
	svc, api, _ := newTestService()

	_, err := svc.PlaceOrder(context.Background(), "s", 1, cart.NewStore(), "1 Elm St")

	assert.ErrorIs(t, err, order.ErrEmptyOrder)
	assert.Empty(t, api.submitted)
}

func TestService_PlaceOrder_BackendErrorKeepsCart(t *testing.T) {
	svc, api, journal := newTestService()
	api.err = errors.New("order service down")
	c := filledCart()

	_, err := svc.PlaceOrder(context.Background(), "s", 1, c, "1 Elm St")

	assert.ErrorContains(t, err, "order service down")
	assert.Len(t, c.Lines(), 2)
	assert.Empty(t, journal.AppendCalls)
}

func TestService_PlaceOrder_JournalFailureIsNotReturned(t *testing.T) {
	svc, _, journal := newTestService()
	journal.AppendErr = errors.New("database unavailable")
	c := filledCart()

	created, err := svc.PlaceOrder(context.Background(), "s", 1, c, "1 Elm St")

	require.NoError(t, err)
	assert.NotNil(t, created)
	assert.Empty(t, c.Lines())
	assert.Len(t, journal.AppendCalls, 1)
}

func TestService_PlaceOrder_WithoutJournal(t *testing.T) {
	api := &orderAPI{}
	svc := NewService(api, nil)

	created, err := svc.PlaceOrder(context.Background(), "s", 1, filledCart(), "1 Elm St")

	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)
}
