package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/quickbite/internal/backend"
	"github.com/example/quickbite/internal/domain/order"
	"github.com/example/quickbite/internal/domain/restaurant"
	"github.com/example/quickbite/internal/domain/user"
)

const (
	restaurantsKey    = "quickbite:restaurants"
	restaurantKeyFmt  = "quickbite:restaurant:%d"
	DefaultCatalogTTL = time.Minute
)

var errCorruptEntry = errors.New("corrupt cache entry")

// CatalogCache is a cache-aside decorator for the restaurant catalog.
// User and order calls are passed through untouched.
type CatalogCache struct {
	next  backend.API
	store Store
	ttl   time.Duration
}

func NewCatalogCache(next backend.API, store Store, ttl time.Duration) *CatalogCache {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	return &CatalogCache{next: next, store: store, ttl: ttl}
}

func (c *CatalogCache) GetRestaurants(ctx context.Context) ([]restaurant.Restaurant, error) {
	var cached []restaurant.Restaurant
	switch err := c.load(ctx, restaurantsKey, &cached); {
	case err == nil:
		return cached, nil
	case errors.Is(err, errCorruptEntry):
		c.discard(ctx)
	}

	restaurants, err := c.next.GetRestaurants(ctx)
	if err != nil {
		return nil, err
	}
	c.save(ctx, restaurantsKey, restaurants)
	return restaurants, nil
}

func (c *CatalogCache) GetRestaurant(ctx context.Context, restaurantID int) (*restaurant.Restaurant, error) {
	key := fmt.Sprintf(restaurantKeyFmt, restaurantID)

	var cached restaurant.Restaurant
	switch err := c.load(ctx, key, &cached); {
	case err == nil:
		return &cached, nil
	case errors.Is(err, errCorruptEntry):
		c.discard(ctx, restaurantID)
	}

	r, err := c.next.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	c.save(ctx, key, r)
	return r, nil
}

func (c *CatalogCache) GetUser(ctx context.Context, userID int) (*user.User, error) {
	return c.next.GetUser(ctx, userID)
}

func (c *CatalogCache) GetOrders(ctx context.Context, userID int) ([]order.Order, error) {
	return c.next.GetOrders(ctx, userID)
}

func (c *CatalogCache) GetOrder(ctx context.Context, orderID int) (*order.Order, error) {
	return c.next.GetOrder(ctx, orderID)
}

func (c *CatalogCache) CreateOrder(ctx context.Context, o *order.Order) (*order.Order, error) {
	return c.next.CreateOrder(ctx, o)
}

// Invalidate drops the list entry and the given restaurant entries
func (c *CatalogCache) Invalidate(ctx context.Context, restaurantIDs ...int) error {
	keys := []string{restaurantsKey}
	for _, id := range restaurantIDs {
		keys = append(keys, fmt.Sprintf(restaurantKeyFmt, id))
	}
	return c.store.Delete(ctx, keys...)
}

// load returns nil on a hit. Read failures other than a miss are logged.
func (c *CatalogCache) load(ctx context.Context, key string, out any) error {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			log.Printf("[Cache] read %s failed, going to backend: %v", key, err)
		}
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Printf("[Cache] discarding corrupt entry %s: %v", key, err)
		return fmt.Errorf("%w %s: %v", errCorruptEntry, key, err)
	}
	return nil
}

func (c *CatalogCache) discard(ctx context.Context, restaurantIDs ...int) {
	if err := c.Invalidate(ctx, restaurantIDs...); err != nil {
		log.Printf("[Cache] invalidate failed: %v", err)
	}
}

func (c *CatalogCache) save(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("[Cache] failed to encode %s: %v", key, err)
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		log.Printf("[Cache] write %s failed: %v", key, err)
	}
}
