package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "CONFIRMED"
)

// Booking is the durable record of a paid checkout. There is at most one
// booking per PaymentReference.
type Booking struct {
	ID               uuid.UUID
	SessionID        string
	CustomerName     string
	Total            decimal.Decimal
	Status           BookingStatus
	PaymentReference string
	PayerID          string
	CreatedAt        time.Time
	Lines            []BookingLine
}

type BookingLine struct {
	ID              uuid.UUID
	BookingID       uuid.UUID
	ItemID          string
	Quantity        int
	StartDate       time.Time
	EndDate         time.Time
	BillableDays    int
	UnitPricePerDay decimal.Decimal
	LineTotal       decimal.Decimal
}

// BookingRequest is what the orchestrator hands to the backend to
// materialize a booking.
type BookingRequest struct {
	SessionID        string
	CustomerName     string
	Lines            []CartLine
	Discount         decimal.Decimal
	Total            decimal.Decimal
	PaymentReference string
	PayerID          string
}

// BookingResult reports whether this call created the booking or found one
// already committed for the same payment reference.
type BookingResult struct {
	Booking          *Booking
	AlreadyConfirmed bool
}

func NewBooking(req BookingRequest, now time.Time) *Booking {
	bookingID := uuid.New()
	lines := make([]BookingLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, BookingLine{
			ID:              uuid.New(),
			BookingID:       bookingID,
			ItemID:          l.ItemID,
			Quantity:        l.Quantity,
			StartDate:       l.StartDate,
			EndDate:         l.EndDate,
			BillableDays:    l.BillableDays(),
			UnitPricePerDay: l.UnitPricePerDay,
			LineTotal:       l.LineTotal(),
		})
	}

	return &Booking{
		ID:               bookingID,
		SessionID:        req.SessionID,
		CustomerName:     req.CustomerName,
		Total:            req.Total,
		Status:           BookingConfirmed,
		PaymentReference: req.PaymentReference,
		PayerID:          req.PayerID,
		CreatedAt:        now,
		Lines:            lines,
	}
}
