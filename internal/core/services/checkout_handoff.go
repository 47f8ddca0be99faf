package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/srgjo27/rental_checkout/internal/core/domain"
	"github.com/srgjo27/rental_checkout/internal/core/ports"
)

// CheckoutHandoff moves the checkout intent from shopping to paying through
// the session store. The snapshot is the only state that crosses.
type CheckoutHandoff struct {
	store ports.SessionStore
	ttl   time.Duration
	now   func() time.Time
}

// NewCheckoutHandoff builds a handoff whose snapshots live for ttl; zero
// keeps them until overwritten or ended.
func NewCheckoutHandoff(store ports.SessionStore, ttl time.Duration) *CheckoutHandoff {
	return &CheckoutHandoff{
		store: store,
		ttl:   ttl,
		now:   time.Now,
	}
}

func (h *CheckoutHandoff) BeginCheckout(ctx context.Context, sessionID, customerName string, cart domain.Cart) (*domain.CheckoutSnapshot, error) {
	name := strings.TrimSpace(customerName)
	if name == "" {
		return nil, domain.NewValidationError("customer_name", "must not be empty")
	}
	if cart.IsEmpty() {
		return nil, domain.NewValidationError("cart", "must not be empty")
	}

	frozen := cart.Clone()
	snapshot := &domain.CheckoutSnapshot{
		CustomerName: name,
		Lines:        frozen.Lines,
		Discount:     frozen.Discount,
		Total:        frozen.Total(),
		CreatedAt:    h.now().UTC(),
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("marshal checkout snapshot: %w", err)
	}

	if err := h.store.Set(ctx, snapshotKey(sessionID), data, h.ttl); err != nil {
		return nil, fmt.Errorf("write checkout snapshot: %w", err)
	}

	log.Info().Str("session_id", sessionID).Int("lines", len(snapshot.Lines)).
		Str("total", domain.FormatMoney(snapshot.Total)).Msg("checkout started")
	return snapshot, nil
}

// ResumeCheckout returns domain.ErrSnapshotNotFound when no checkout was begun.
func (h *CheckoutHandoff) ResumeCheckout(ctx context.Context, sessionID string) (*domain.CheckoutSnapshot, error) {
	data, err := h.store.Get(ctx, snapshotKey(sessionID))
	if errors.Is(err, ports.ErrKeyNotFound) {
		return nil, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read checkout snapshot: %w", err)
	}

	var snapshot domain.CheckoutSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal checkout snapshot: %w", err)
	}
	return &snapshot, nil
}

// EndCheckout must only run once the booking is durably confirmed.
func (h *CheckoutHandoff) EndCheckout(ctx context.Context, sessionID string) error {
	if err := h.store.Remove(ctx, snapshotKey(sessionID)); err != nil {
		return fmt.Errorf("remove checkout snapshot: %w", err)
	}
	return nil
}

func snapshotKey(sessionID string) string {
	return fmt.Sprintf("checkout:%s:snapshot", sessionID)
}
