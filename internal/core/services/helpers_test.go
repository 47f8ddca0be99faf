package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/srgjo27/rental_checkout/internal/core/domain"
	"github.com/srgjo27/rental_checkout/internal/core/ports"
)

type memSessionStore struct {
	mu   sync.Mutex
	data map[string][]byte
	err  error
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{data: make(map[string][]byte)}
}

func (m *memSessionStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[key] = value
	return nil
}

func (m *memSessionStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	v, ok := m.data[key]
	if !ok {
		return nil, ports.ErrKeyNotFound
	}
	return v, nil
}

func (m *memSessionStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memSessionStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

// memBookingRepo enforces one booking per payment reference like the
// unique index in Postgres does.
type memBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*domain.Booking
	err      error
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{bookings: make(map[string]*domain.Booking)}
}

func (m *memBookingRepo) CreateBooking(_ context.Context, b *domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.bookings[b.PaymentReference]; ok {
		return domain.ErrDuplicateReference
	}
	m.bookings[b.PaymentReference] = b
	return nil
}

func (m *memBookingRepo) GetByPaymentReference(_ context.Context, ref string) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[ref]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	return b, nil
}

func (m *memBookingRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bookings)
}

type nopPublisher struct{}

func (nopPublisher) BookingConfirmed(context.Context, *domain.Booking) error { return nil }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// drillLine is the one line cart used across the checkout scenarios:
// 10/day x 2 for 3 days.
func drillLine() domain.CartLine {
	return domain.CartLine{
		ItemID:          "drill",
		Quantity:        2,
		StartDate:       day(2024, 3, 1),
		EndDate:         day(2024, 3, 4),
		UnitPricePerDay: decimal.NewFromInt(10),
	}
}

// memCartCache never hits; it only records invalidations.
type memCartCache struct {
	mu      sync.Mutex
	deleted []string
}

func (c *memCartCache) Get(context.Context, string) (*domain.Cart, error) {
	return nil, ports.ErrCacheMiss
}

func (c *memCartCache) Set(context.Context, string, *domain.Cart) error { return nil }

func (c *memCartCache) Delete(_ context.Context, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, sessionID)
	return nil
}

func (c *memCartCache) invalidated() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.deleted...)
}
