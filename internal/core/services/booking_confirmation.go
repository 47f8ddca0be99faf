package services

import (
	"context"
	"fmt"

	"github.com/srgjo27/rental_checkout/internal/core/domain"
	"github.com/srgjo27/rental_checkout/internal/core/ports"
)

// BookingConfirmation asks the backend to turn the snapshot and the payment
// identifier into a booking. The backend call is the commit point.
type BookingConfirmation struct {
	backend ports.BookingBackend
}

func NewBookingConfirmation(backend ports.BookingBackend) *BookingConfirmation {
	return &BookingConfirmation{backend: backend}
}

// Confirm returns a *domain.ReconciliationError when the backend rejects the
// payment. Other errors are transport failures and may be retried.
func (c *BookingConfirmation) Confirm(ctx context.Context, sessionID string, snapshot *domain.CheckoutSnapshot, sig domain.PaymentSignal) (*domain.BookingResult, error) {
	req := domain.BookingRequest{
		SessionID:        sessionID,
		CustomerName:     snapshot.CustomerName,
		Lines:            snapshot.Lines,
		Discount:         snapshot.Discount,
		Total:            snapshot.Total,
		PaymentReference: sig.Reference(),
	}

	var (
		res *domain.BookingResult
		err error
	)
	switch s := sig.(type) {
	case domain.Approved:
		res, err = c.backend.CreateBooking(ctx, req)
	case domain.RedirectReturn:
		req.PayerID = s.PayerID
		res, err = c.backend.ApproveBooking(ctx, req)
	default:
		return nil, fmt.Errorf("unknown payment signal %T", sig)
	}

	if err != nil {
		if domain.IsRejected(err) {
			return nil, &domain.ReconciliationError{Reference: sig.Reference(), Err: err}
		}
		return nil, err
	}
	return res, nil
}
