package domain

import "github.com/shopspring/decimal"

type ItemStatus string

const (
	ItemAvailable ItemStatus = "AVAILABLE"
	ItemArchived  ItemStatus = "ARCHIVED"
)

// Item is the catalog collaborator's view of a rentable item, reduced to
// what pricing needs.
type Item struct {
	ID          string
	Title       string
	PricePerDay decimal.Decimal
	Status      ItemStatus
}

func (i *Item) IsRentable() bool {
	return i.Status == ItemAvailable
}
