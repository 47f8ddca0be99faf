package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutSnapshot is the frozen cart that crosses from shopping to paying.
// Only one is live per session; a new checkout overwrites it.
type CheckoutSnapshot struct {
	CustomerName string          `json:"customer_name"`
	Lines        []CartLine      `json:"lines"`
	Discount     decimal.Decimal `json:"discount"`
	Total        decimal.Decimal `json:"total"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (s *CheckoutSnapshot) Cart() Cart {
	return Cart{Lines: s.Lines, Discount: s.Discount}.Clone()
}
