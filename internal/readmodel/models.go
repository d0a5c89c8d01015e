package readmodel

import (
	"strings"

	"github.com/example/quickbite/internal/domain/cart"
	"github.com/example/quickbite/internal/domain/order"
	"github.com/example/quickbite/internal/domain/restaurant"
	"github.com/shopspring/decimal"
)

// DateLayout renders order timestamps, e.g. "Mar 1, 2025, 02:30 PM"
const DateLayout = "Jan 2, 2006, 03:04 PM"

const DefaultPaymentMethod = "card"

// CartLineView is one cart line with its subtotal
type CartLineView struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CartView is the cart as shown to the user
type CartView struct {
	Items        []CartLineView  `json:"items"`
	Total        decimal.Decimal `json:"total"`
	Count        int             `json:"count"`
	RestaurantID *int            `json:"restaurantId"`
}

func NewCartView(snap cart.Snapshot) CartView {
	v := CartView{
		Items: make([]CartLineView, 0, len(snap.Lines)),
		Total: snap.Total,
		Count: snap.Count(),
	}
	for _, line := range snap.Lines {
		v.Items = append(v.Items, CartLineView{
			ID:       line.ItemID,
			Name:     line.Name,
			Price:    line.UnitPrice,
			Quantity: line.Quantity,
			Subtotal: line.Subtotal(),
		})
	}
	if snap.Bound {
		id := snap.RestaurantID
		v.RestaurantID = &id
	}
	return v
}

type RestaurantListView struct {
	Query       string                  `json:"query,omitempty"`
	Restaurants []restaurant.Restaurant `json:"restaurants"`
}

// MenuSection groups the menu items of one category
type MenuSection struct {
	Category string                `json:"category"`
	Items    []restaurant.MenuItem `json:"items"`
}

type RestaurantDetailView struct {
	Restaurant restaurant.Restaurant `json:"restaurant"`
	Menu       []MenuSection         `json:"menu"`
	Cart       CartView              `json:"cart"`
}

func NewRestaurantDetailView(r restaurant.Restaurant, snap cart.Snapshot) RestaurantDetailView {
	categories := r.Categories()
	menu := make([]MenuSection, 0, len(categories))
	for _, category := range categories {
		menu = append(menu, MenuSection{
			Category: category,
			Items:    r.ItemsInCategory(category),
		})
	}
	return RestaurantDetailView{
		Restaurant: r,
		Menu:       menu,
		Cart:       NewCartView(snap),
	}
}

type CheckoutView struct {
	Cart           CartView `json:"cart"`
	DefaultAddress string   `json:"defaultAddress"`
	PaymentMethod  string   `json:"paymentMethod"`
}

// OrderView decorates an order with display fields
type OrderView struct {
	order.Order
	ItemCount     int    `json:"itemCount"`
	StatusClass   string `json:"statusClass"`
	FormattedDate string `json:"formattedDate"`
}

func NewOrderView(o order.Order) OrderView {
	return OrderView{
		Order:         o,
		ItemCount:     o.ItemCount(),
		StatusClass:   StatusClass(o.Status),
		FormattedDate: o.CreatedAt.Format(DateLayout),
	}
}

type OrdersView struct {
	Orders []OrderView `json:"orders"`
}

// StatusClass maps an order status to its badge style; unknown statuses get none
func StatusClass(status string) string {
	switch strings.ToLower(status) {
	case order.StatusCreated:
		return "status-created"
	case order.StatusProcessing:
		return "status-processing"
	case order.StatusDelivered:
		return "status-delivered"
	case order.StatusCancelled:
		return "status-cancelled"
	default:
		return ""
	}
}
