package readmodel

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderSummary aggregates the orders a user has submitted through this client
type OrderSummary struct {
	UserID      int             `json:"userId"`
	OrderCount  int             `json:"orderCount"`
	ItemCount   int             `json:"itemCount"`
	TotalSpent  decimal.Decimal `json:"totalSpent"`
	LastOrderID int             `json:"lastOrderId"`
	LastOrderAt time.Time       `json:"lastOrderAt"`
}
