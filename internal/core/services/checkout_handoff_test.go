package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/rental_checkout/internal/core/domain"
	"github.com/srgjo27/rental_checkout/internal/core/services"
)

func TestBeginCheckout_WritesSnapshot(t *testing.T) {
	store := newMemSessionStore()
	handoff := services.NewCheckoutHandoff(store, 0)
	cart := domain.Cart{Lines: []domain.CartLine{drillLine()}}

	snapshot, err := handoff.BeginCheckout(context.Background(), sessionID, "  A. Renter ", cart)

	require.NoError(t, err)
	assert.Equal(t, "A. Renter", snapshot.CustomerName)
	assert.True(t, decimal.NewFromInt(60).Equal(snapshot.Total))

	resumed, err := handoff.ResumeCheckout(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, "A. Renter", resumed.CustomerName)
	require.Len(t, resumed.Lines, 1)
	assert.Equal(t, 3, resumed.Lines[0].BillableDays())
	assert.True(t, decimal.NewFromInt(60).Equal(resumed.Total))
}

func TestBeginCheckout_ValidationWritesNothing(t *testing.T) {
	store := newMemSessionStore()
	handoff := services.NewCheckoutHandoff(store, 0)

	_, err := handoff.BeginCheckout(context.Background(), sessionID, "", domain.Cart{Lines: []domain.CartLine{drillLine()}})
	assert.True(t, domain.IsValidation(err))

	_, err = handoff.BeginCheckout(context.Background(), sessionID, "Name", domain.Cart{})
	assert.True(t, domain.IsValidation(err))

	assert.Equal(t, 0, store.len())
}

func TestBeginCheckout_FreezesCart(t *testing.T) {
	handoff := services.NewCheckoutHandoff(newMemSessionStore(), 0)
	cart := domain.Cart{Lines: []domain.CartLine{drillLine()}}

	_, err := handoff.BeginCheckout(context.Background(), sessionID, "A", cart)
	require.NoError(t, err)
	cart.Lines[0].Quantity = 9

	resumed, err := handoff.ResumeCheckout(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, 2, resumed.Lines[0].Quantity)
}

func TestBeginCheckout_OverwritesPrevious(t *testing.T) {
	handoff := services.NewCheckoutHandoff(newMemSessionStore(), time.Hour)

	_, err := handoff.BeginCheckout(context.Background(), sessionID, "First", domain.Cart{Lines: []domain.CartLine{drillLine()}})
	require.NoError(t, err)
	_, err = handoff.BeginCheckout(context.Background(), sessionID, "Second", domain.Cart{Lines: []domain.CartLine{drillLine()}})
	require.NoError(t, err)

	resumed, err := handoff.ResumeCheckout(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, "Second", resumed.CustomerName)
}

func TestResumeCheckout_NotFound(t *testing.T) {
	handoff := services.NewCheckoutHandoff(newMemSessionStore(), 0)

	_, err := handoff.ResumeCheckout(context.Background(), sessionID)

	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
}

func TestResumeCheckout_StoreError(t *testing.T) {
	store := newMemSessionStore()
	store.err = errors.New("redis down")
	handoff := services.NewCheckoutHandoff(store, 0)

	_, err := handoff.ResumeCheckout(context.Background(), sessionID)

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSnapshotNotFound)
}

func TestEndCheckout_ClearsSnapshot(t *testing.T) {
	store := newMemSessionStore()
	handoff := services.NewCheckoutHandoff(store, 0)
	_, err := handoff.BeginCheckout(context.Background(), sessionID, "A", domain.Cart{Lines: []domain.CartLine{drillLine()}})
	require.NoError(t, err)

	require.NoError(t, handoff.EndCheckout(context.Background(), sessionID))

	_, err = handoff.ResumeCheckout(context.Background(), sessionID)
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
}
