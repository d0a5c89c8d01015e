package restaurant

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrMenuItemNotFound = errors.New("menu item not found")

type MenuItem struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
}

type Restaurant struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	Address   string     `json:"address"`
	Cuisine   string     `json:"cuisine"`
	Rating    float64    `json:"rating"`
	MenuItems []MenuItem `json:"menuItems,omitempty"`
}

// Categories returns the distinct menu categories in first-seen order
func (r *Restaurant) Categories() []string {
	seen := make(map[string]bool)
	categories := make([]string, 0)
	for _, item := range r.MenuItems {
		if seen[item.Category] {
			continue
		}
		seen[item.Category] = true
		categories = append(categories, item.Category)
	}
	return categories
}

// ItemsInCategory returns the menu items of one category, in menu order
func (r *Restaurant) ItemsInCategory(category string) []MenuItem {
	items := make([]MenuItem, 0)
	for _, item := range r.MenuItems {
		if item.Category == category {
			items = append(items, item)
		}
	}
	return items
}

// FindItem looks up a menu item by id
func (r *Restaurant) FindItem(itemID int) (MenuItem, error) {
	for _, item := range r.MenuItems {
		if item.ID == itemID {
			return item, nil
		}
	}
	return MenuItem{}, ErrMenuItemNotFound
}

// Filter returns the restaurants whose name or cuisine contains query,
// ignoring case. An empty query matches everything.
func Filter(restaurants []Restaurant, query string) []Restaurant {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return restaurants
	}

	matched := make([]Restaurant, 0)
	for _, r := range restaurants {
		if strings.Contains(strings.ToLower(r.Name), query) ||
			strings.Contains(strings.ToLower(r.Cuisine), query) {
			matched = append(matched, r)
		}
	}
	return matched
}
