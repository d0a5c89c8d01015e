package fallback

import (
	"time"

	"github.com/example/quickbite/internal/domain/order"
	"github.com/example/quickbite/internal/domain/restaurant"
	"github.com/example/quickbite/internal/domain/user"
	"github.com/shopspring/decimal"
)

// DemoAddress is the delivery address used by the offline demo data
const DemoAddress = "123 Main St, City"

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mockUser(userID int) *user.User {
	return &user.User{
		ID:      userID,
		Name:    "Demo User",
		Email:   "demo@quickbite.local",
		Address: DemoAddress,
	}
}

func mockRestaurants() []restaurant.Restaurant {
	return []restaurant.Restaurant{
		{ID: 1, Name: "Tasty Bites", Address: "123 Main St", Cuisine: "Italian", Rating: 4.5},
		{ID: 2, Name: "Burger Palace", Address: "456 Oak Ave", Cuisine: "American", Rating: 4.2},
		{ID: 3, Name: "Sushi Heaven", Address: "789 Maple Rd", Cuisine: "Japanese", Rating: 4.7},
	}
}

func mockRestaurant(restaurantID int) *restaurant.Restaurant {
	return &restaurant.Restaurant{
		ID:      restaurantID,
		Name:    "Tasty Bites",
		Address: "123 Main St",
		Cuisine: "Italian",
		Rating:  4.5,
		MenuItems: []restaurant.MenuItem{
			{
				ID:          1,
				Name:        "Margherita Pizza",
				Description: "Classic pizza with tomato sauce, mozzarella, and basil",
				Price:       money("12.99"),
				Category:    "Main",
			},
			{
				ID:          2,
				Name:        "Spaghetti Carbonara",
				Description: "Pasta with egg, cheese, pancetta, and black pepper",
				Price:       money("14.99"),
				Category:    "Main",
			},
			{
				ID:          3,
				Name:        "Tiramisu",
				Description: "Coffee-flavored Italian dessert",
				Price:       money("7.99"),
				Category:    "Dessert",
			},
			{
				ID:          4,
				Name:        "Caesar Salad",
				Description: "Romaine lettuce, croutons, parmesan cheese, and Caesar dressing",
				Price:       money("8.99"),
				Category:    "Starter",
			},
		},
	}
}

func mockOrders(userID int, now time.Time) []order.Order {
	return []order.Order{
		{
			ID:           1,
			UserID:       userID,
			RestaurantID: 1,
			Items: []order.Item{
				{MenuItemID: 1, Name: "Margherita Pizza", Price: money("12.99"), Quantity: 2},
			},
			TotalAmount: money("25.98"),
			Status:      order.StatusDelivered,
			Address:     DemoAddress,
			CreatedAt:   now.Add(-24 * time.Hour),
		},
		{
			ID:           2,
			UserID:       userID,
			RestaurantID: 2,
			Items: []order.Item{
				{MenuItemID: 3, Name: "Chicken Burger", Price: money("9.99"), Quantity: 1},
				{MenuItemID: 4, Name: "French Fries", Price: money("4.99"), Quantity: 1},
			},
			TotalAmount: money("14.98"),
			Status:      order.StatusProcessing,
			Address:     DemoAddress,
			CreatedAt:   now,
		},
	}
}

func mockOrder(orderID int, now time.Time) *order.Order {
	return &order.Order{
		ID:           orderID,
		UserID:       1,
		RestaurantID: 1,
		Items: []order.Item{
			{MenuItemID: 1, Name: "Margherita Pizza", Price: money("12.99"), Quantity: 2},
		},
		TotalAmount: money("25.98"),
		Status:      order.StatusCreated,
		Address:     DemoAddress,
		CreatedAt:   now,
	}
}
