package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/srgjo27/rental_checkout/internal/core/domain"
	"github.com/srgjo27/rental_checkout/internal/core/ports"
)

// CartService is the backend side of the cart: Postgres behind a read-through
// cache. It implements ports.CartBackend.
type CartService struct {
	repo  ports.CartRepository
	items ports.ItemRepository
	cache ports.CartCache
	sfg   singleflight.Group

	// fills tracks the cache fill in flight per session. A write that
	// invalidates the session while its read is running marks it stale.
	mu    sync.Mutex
	fills map[string]*cacheFill
}

type cacheFill struct {
	stale bool
}

func NewCartService(repo ports.CartRepository, items ports.ItemRepository, cache ports.CartCache) *CartService {
	return &CartService{
		repo:  repo,
		items: items,
		cache: cache,
		fills: make(map[string]*cacheFill),
	}
}

func (s *CartService) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(sessionID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, sessionID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, ports.ErrCacheMiss) {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("cart cache get")
		}

		fill := s.beginFill(sessionID)
		cart, err = s.repo.GetCart(ctx, sessionID)
		if err != nil {
			s.endFill(sessionID)
			return nil, err
		}

		s.finishFill(sessionID, fill, cart)
		return cart, nil
	})
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	cart := v.(*domain.Cart).Clone()
	return &cart, nil
}

// UpsertCartLine snapshots the catalog price into the line. A quantity below
// one deletes the line.
func (s *CartService) UpsertCartLine(ctx context.Context, sessionID, itemID string, quantity int, d domain.Duration) (*domain.CartLine, error) {
	defer s.invalidate(sessionID)

	if quantity < 1 {
		if err := s.repo.DeleteLine(ctx, sessionID, itemID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.IsRentable() {
		return nil, fmt.Errorf("item %s is not rentable", itemID)
	}

	line := domain.CartLine{
		ItemID:          itemID,
		Quantity:        quantity,
		StartDate:       d.Start,
		EndDate:         d.End,
		UnitPricePerDay: item.PricePerDay,
	}
	if err := s.repo.UpsertLine(ctx, sessionID, line); err != nil {
		return nil, err
	}
	return &line, nil
}

func (s *CartService) ClearCart(ctx context.Context, sessionID string) error {
	defer s.invalidate(sessionID)

	return s.repo.DeleteCart(ctx, sessionID)
}

func (s *CartService) beginFill(sessionID string) *cacheFill {
	s.mu.Lock()
	defer s.mu.Unlock()

	fill := &cacheFill{}
	s.fills[sessionID] = fill
	return fill
}

func (s *CartService) endFill(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.fills, sessionID)
}

// finishFill writes the cart read by fill unless a write invalidated the
// session meanwhile. The check and the write happen under the same lock that
// invalidate takes before deleting the key.
func (s *CartService) finishFill(sessionID string, fill *cacheFill, cart *domain.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.fills, sessionID)
	if fill.stale {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	c := cart.Clone()
	if err := s.cache.Set(ctx, sessionID, &c); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("cart cache set")
	}
}

func (s *CartService) invalidate(sessionID string) {
	s.mu.Lock()
	if fill, ok := s.fills[sessionID]; ok {
		fill.stale = true
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, sessionID); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("cart cache invalidate")
	}
}
