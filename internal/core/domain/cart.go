package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/srgjo27/rental_checkout/internal/core/duration"
)

// Duration is the rental range of a cart line. Zero dates mean "unset".
type Duration struct {
	Start time.Time
	End   time.Time
}

type CartLine struct {
	ItemID          string          `json:"item_id"`
	Quantity        int             `json:"quantity"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	UnitPricePerDay decimal.Decimal `json:"unit_price_per_day"`
}

func (l CartLine) Duration() Duration {
	return Duration{Start: l.StartDate, End: l.EndDate}
}

func (l CartLine) BillableDays() int {
	return duration.DaysBetween(l.StartDate, l.EndDate)
}

// Months is for display only; prices are always computed from BillableDays.
func (l CartLine) Months() int {
	return duration.MonthsBetween(l.StartDate, l.EndDate)
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPricePerDay.
		Mul(decimal.NewFromInt(int64(l.Quantity))).
		Mul(decimal.NewFromInt(int64(l.BillableDays())))
}

type Cart struct {
	Lines    []CartLine      `json:"lines"`
	Discount decimal.Decimal `json:"discount"`
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

// Total is the subtotal less the flat discount, never below zero.
func (c Cart) Total() decimal.Decimal {
	total := c.Subtotal().Sub(c.Discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

func (c Cart) Find(itemID string) (int, bool) {
	for i, l := range c.Lines {
		if l.ItemID == itemID {
			return i, true
		}
	}
	return -1, false
}

func (c Cart) Clone() Cart {
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	return Cart{Lines: lines, Discount: c.Discount}
}

// FormatMoney is the only place amounts get rounded.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}
