package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/example/quickbite/internal/domain/order"
	"github.com/example/quickbite/internal/domain/restaurant"
	"github.com/example/quickbite/internal/domain/user"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected status from backend")
	ErrNotFound         = errors.New("resource not found")
)

// StatusError is returned when a backend answers with a non-2xx status
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.Code, e.Body)
}

// Is matches ErrUnexpectedStatus for every status and ErrNotFound for 404
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrUnexpectedStatus:
		return true
	case ErrNotFound:
		return e.Code == http.StatusNotFound
	}
	return false
}

// API is the set of backend calls the client depends on
type API interface {
	GetUser(ctx context.Context, userID int) (*user.User, error)
	GetRestaurants(ctx context.Context) ([]restaurant.Restaurant, error)
	GetRestaurant(ctx context.Context, restaurantID int) (*restaurant.Restaurant, error)
	GetOrders(ctx context.Context, userID int) ([]order.Order, error)
	GetOrder(ctx context.Context, orderID int) (*order.Order, error)
	CreateOrder(ctx context.Context, o *order.Order) (*order.Order, error)
}

// Endpoints holds the collection URL of each backend service
type Endpoints struct {
	Users         string
	Restaurants   string
	Orders        string
	Payments      string
	Deliveries    string
	Notifications string
}

// Client talks to the backend services over HTTP
type Client struct {
	httpClient *http.Client
	endpoints  Endpoints
}

func NewClient(endpoints Endpoints, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoints:  endpoints,
	}
}

func (c *Client) GetUser(ctx context.Context, userID int) (*user.User, error) {
	var u user.User
	if err := c.do(ctx, http.MethodGet, c.endpoints.Users+"/"+strconv.Itoa(userID), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) GetRestaurants(ctx context.Context) ([]restaurant.Restaurant, error) {
	var payload []restaurantPayload
	if err := c.do(ctx, http.MethodGet, c.endpoints.Restaurants, nil, &payload); err != nil {
		return nil, err
	}
	restaurants := make([]restaurant.Restaurant, 0, len(payload))
	for _, p := range payload {
		restaurants = append(restaurants, p.toDomain())
	}
	return restaurants, nil
}

func (c *Client) GetRestaurant(ctx context.Context, restaurantID int) (*restaurant.Restaurant, error) {
	var payload restaurantPayload
	if err := c.do(ctx, http.MethodGet, c.endpoints.Restaurants+"/"+strconv.Itoa(restaurantID), nil, &payload); err != nil {
		return nil, err
	}
	r := payload.toDomain()
	return &r, nil
}

func (c *Client) GetOrders(ctx context.Context, userID int) ([]order.Order, error) {
	var payload []orderPayload
	u := c.endpoints.Orders + "/user/" + strconv.Itoa(userID) + "/orders"
	if err := c.do(ctx, http.MethodGet, u, nil, &payload); err != nil {
		return nil, err
	}
	orders := make([]order.Order, 0, len(payload))
	for _, p := range payload {
		orders = append(orders, *p.toDomain())
	}
	return orders, nil
}

func (c *Client) GetOrder(ctx context.Context, orderID int) (*order.Order, error) {
	var payload orderPayload
	if err := c.do(ctx, http.MethodGet, c.endpoints.Orders+"/"+strconv.Itoa(orderID), nil, &payload); err != nil {
		return nil, err
	}
	return payload.toDomain(), nil
}

func (c *Client) CreateOrder(ctx context.Context, o *order.Order) (*order.Order, error) {
	var created orderPayload
	if err := c.do(ctx, http.MethodPost, c.endpoints.Orders, orderToPayload(o), &created); err != nil {
		return nil, err
	}
	return created.toDomain(), nil
}

// CheckHealth probes GET /health on every configured service and returns
// "ok" or the failure reason keyed by service name.
func (c *Client) CheckHealth(ctx context.Context) map[string]string {
	services := map[string]string{
		"users":         c.endpoints.Users,
		"restaurants":   c.endpoints.Restaurants,
		"orders":        c.endpoints.Orders,
		"payments":      c.endpoints.Payments,
		"deliveries":    c.endpoints.Deliveries,
		"notifications": c.endpoints.Notifications,
	}

	status := make(map[string]string, len(services))
	for name, endpoint := range services {
		if endpoint == "" {
			continue
		}
		healthURL, err := healthURLFor(endpoint)
		if err != nil {
			status[name] = err.Error()
			continue
		}
		if err := c.do(ctx, http.MethodGet, healthURL, nil, nil); err != nil {
			status[name] = err.Error()
			continue
		}
		status[name] = "ok"
	}
	return status
}

// healthURLFor maps http://host:8081/api/restaurants to http://host:8081/health
func healthURLFor(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	u.Path = "/health"
	u.RawQuery = ""
	return u.String(), nil
}

func (c *Client) do(ctx context.Context, method, rawURL string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{
			Method: method,
			URL:    rawURL,
			Code:   resp.StatusCode,
			Body:   string(bytes.TrimSpace(snippet)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s: %w", method, rawURL, err)
	}
	return nil
}
