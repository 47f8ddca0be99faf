package ports

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/srgjo27/rental_checkout/internal/core/domain"
)

// CartBackend is the authoritative, per-session cart owned by the backend.
// A quantity below 1 in UpsertCartLine removes the line.
type CartBackend interface {
	GetCart(ctx context.Context, sessionID string) (*domain.Cart, error)
	UpsertCartLine(ctx context.Context, sessionID, itemID string, quantity int, d domain.Duration) (*domain.CartLine, error)
	ClearCart(ctx context.Context, sessionID string) error
}

// BookingBackend materializes bookings. Both calls are idempotent on
// BookingRequest.PaymentReference.
type BookingBackend interface {
	CreateBooking(ctx context.Context, req domain.BookingRequest) (*domain.BookingResult, error)
	ApproveBooking(ctx context.Context, req domain.BookingRequest) (*domain.BookingResult, error)
}

type CartRepository interface {
	GetCart(ctx context.Context, sessionID string) (*domain.Cart, error)
	UpsertLine(ctx context.Context, sessionID string, line domain.CartLine) error
	DeleteLine(ctx context.Context, sessionID, itemID string) error
	DeleteCart(ctx context.Context, sessionID string) error
}

type ItemRepository interface {
	GetByID(ctx context.Context, itemID string) (*domain.Item, error)
}

type BookingRepository interface {
	// CreateBooking inserts the booking and removes the session's cart in one
	// transaction. It returns ErrDuplicateReference when a booking for the
	// same payment reference already exists.
	CreateBooking(ctx context.Context, booking *domain.Booking) error
	GetByPaymentReference(ctx context.Context, reference string) (*domain.Booking, error)
}

// SessionStore is the durable cross-navigation key/value store.
type SessionStore interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Remove(ctx context.Context, key string) error
}

type Order struct {
	ID          string
	Status      string
	ApprovalURL string
}

type Capture struct {
	OrderID string
	Status  string
	PayerID string
}

type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal, currency, returnURL, cancelURL string) (*Order, error)
	CaptureOrder(ctx context.Context, orderID string) (*Capture, error)
}

type EventPublisher interface {
	BookingConfirmed(ctx context.Context, booking *domain.Booking) error
}

// ErrKeyNotFound is returned by SessionStore.Get for a missing key.
var ErrKeyNotFound = errors.New("session key not found")

// CartCache fronts CartRepository reads.
type CartCache interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	Set(ctx context.Context, sessionID string, cart *domain.Cart) error
	Delete(ctx context.Context, sessionID string) error
}

var ErrCacheMiss = errors.New("cache miss")
