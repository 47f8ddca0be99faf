package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/srgjo27/rental_checkout/internal/core/domain"
	"github.com/srgjo27/rental_checkout/internal/core/duration"
	"github.com/srgjo27/rental_checkout/internal/core/ports"
)

// CartStore is the session's single source of truth for the cart. Every
// mutation is applied locally before the backend write; a failed write
// discards the local state and replaces it with a re-fetch.
type CartStore struct {
	backend   ports.CartBackend
	sessionID string

	mu      sync.Mutex
	cart    domain.Cart
	lastErr error
}

// NewCartStore loads the authoritative cart. On a failed load the returned
// store is usable and empty, and the error is a *domain.FetchError.
func NewCartStore(ctx context.Context, backend ports.CartBackend, sessionID string) (*CartStore, error) {
	s := &CartStore{
		backend:   backend,
		sessionID: sessionID,
	}

	err := s.Refresh(ctx)
	return s, err
}

func (s *CartStore) SessionID() string {
	return s.sessionID
}

func (s *CartStore) List() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.Clone()
}

// Err returns the last fetch or write error, nil once a later call succeeds.
func (s *CartStore) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastErr
}

func (s *CartStore) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.refetchLocked(ctx)
}

func (s *CartStore) UpsertLine(ctx context.Context, itemID string, quantity int, d domain.Duration) error {
	if quantity < 1 {
		return s.RemoveLine(ctx, itemID)
	}
	if err := validateLine(itemID, d); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.cart.Find(itemID); ok {
		s.cart.Lines[i].Quantity = quantity
		s.cart.Lines[i].StartDate = d.Start
		s.cart.Lines[i].EndDate = d.End
	} else {
		s.cart.Lines = append(s.cart.Lines, domain.CartLine{
			ItemID:    itemID,
			Quantity:  quantity,
			StartDate: d.Start,
			EndDate:   d.End,
		})
	}

	line, err := s.backend.UpsertCartLine(ctx, s.sessionID, itemID, quantity, d)
	if err != nil {
		return s.rollbackLocked(ctx, "upsert", err)
	}

	if i, ok := s.cart.Find(itemID); ok && line != nil {
		s.cart.Lines[i] = *line
	}
	s.lastErr = nil
	return nil
}

// RemoveLine is idempotent; removing an absent line does not touch the backend.
func (s *CartStore) RemoveLine(ctx context.Context, itemID string) error {
	if strings.TrimSpace(itemID) == "" {
		return domain.NewValidationError("item_id", "must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.cart.Find(itemID)
	if !ok {
		return nil
	}
	removed := s.cart.Lines[i]
	s.cart.Lines = append(s.cart.Lines[:i:i], s.cart.Lines[i+1:]...)

	if _, err := s.backend.UpsertCartLine(ctx, s.sessionID, itemID, 0, removed.Duration()); err != nil {
		return s.rollbackLocked(ctx, "remove", err)
	}

	s.lastErr = nil
	return nil
}

func (s *CartStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = domain.Cart{Discount: s.cart.Discount}

	if err := s.backend.ClearCart(ctx, s.sessionID); err != nil {
		return s.rollbackLocked(ctx, "clear", err)
	}

	s.lastErr = nil
	return nil
}

// UpdateDuration only changes local state. The range is sent to the backend
// with the next upsert and frozen at checkout.
func (s *CartStore) UpdateDuration(itemID string, start, end time.Time) error {
	if err := validateLine(itemID, domain.Duration{Start: start, End: end}); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.cart.Find(itemID)
	if !ok {
		return domain.ErrLineNotFound
	}
	s.cart.Lines[i].StartDate = start
	s.cart.Lines[i].EndDate = end
	return nil
}

func (s *CartStore) refetchLocked(ctx context.Context) error {
	cart, err := s.backend.GetCart(ctx, s.sessionID)
	if err != nil {
		s.cart = domain.Cart{}
		s.lastErr = &domain.FetchError{Err: err}
		return s.lastErr
	}

	s.cart = cart.Clone()
	s.lastErr = nil
	return nil
}

func (s *CartStore) rollbackLocked(ctx context.Context, op string, cause error) error {
	log.Warn().Err(cause).Str("session_id", s.sessionID).Str("op", op).Msg("cart write failed, refetching")

	writeErr := &domain.WriteError{Op: op, Err: cause}
	if err := s.refetchLocked(ctx); err != nil {
		log.Error().Err(err).Str("session_id", s.sessionID).Msg("cart refetch after failed write")
		s.lastErr = errors.Join(writeErr, err)
		return s.lastErr
	}

	s.lastErr = writeErr
	return writeErr
}

func validateLine(itemID string, d domain.Duration) error {
	if strings.TrimSpace(itemID) == "" {
		return domain.NewValidationError("item_id", "must not be empty")
	}
	if err := duration.Validate(d.Start, d.End); err != nil {
		return domain.NewValidationError("duration", err.Error())
	}
	return nil
}

// CartStores holds one CartStore per session, created on first use and
// dropped on logout.
type CartStores struct {
	backend ports.CartBackend

	mu     sync.Mutex
	stores map[string]*CartStore
}

func NewCartStores(backend ports.CartBackend) *CartStores {
	return &CartStores{
		backend: backend,
		stores:  make(map[string]*CartStore),
	}
}

// Open returns the session's store. A store whose initial load failed is
// returned together with the FetchError and is not cached, so the next Open
// retries the load.
func (r *CartStores) Open(ctx context.Context, sessionID string) (*CartStore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[sessionID]; ok {
		return s, nil
	}

	s, err := NewCartStore(ctx, r.backend, sessionID)
	if err != nil {
		return s, fmt.Errorf("open cart store: %w", err)
	}
	r.stores[sessionID] = s
	return s, nil
}

func (r *CartStores) Dispose(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.stores, sessionID)
}
