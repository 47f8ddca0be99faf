package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/srgjo27/rental_checkout/internal/core/domain"
	"github.com/srgjo27/rental_checkout/internal/core/ports"
)

const captureCompleted = "COMPLETED"

// BookingService is the backend's booking capability. Every request is
// keyed by its payment reference, so duplicate callbacks resolve to the
// booking that already exists.
type BookingService struct {
	bookingRepo ports.BookingRepository
	cartCache   ports.CartCache
	gateway     ports.PaymentGateway
	events      ports.EventPublisher
	now         func() time.Time
}

func NewBookingService(bookingRepo ports.BookingRepository, cartCache ports.CartCache, gateway ports.PaymentGateway, events ports.EventPublisher) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		cartCache:   cartCache,
		gateway:     gateway,
		events:      events,
		now:         time.Now,
	}
}

// CreateBooking serves the embedded approval path.
func (s *BookingService) CreateBooking(ctx context.Context, req domain.BookingRequest) (*domain.BookingResult, error) {
	return s.commit(ctx, req)
}

// ApproveBooking serves the redirect path, keyed by the processor token.
func (s *BookingService) ApproveBooking(ctx context.Context, req domain.BookingRequest) (*domain.BookingResult, error) {
	if strings.TrimSpace(req.PayerID) == "" {
		return nil, &domain.RejectedError{Reason: "missing payer id"}
	}
	return s.commit(ctx, req)
}

func (s *BookingService) commit(ctx context.Context, req domain.BookingRequest) (*domain.BookingResult, error) {
	if strings.TrimSpace(req.PaymentReference) == "" {
		return nil, &domain.RejectedError{Reason: "missing payment reference"}
	}

	existing, err := s.bookingRepo.GetByPaymentReference(ctx, req.PaymentReference)
	if err == nil {
		return &domain.BookingResult{Booking: existing, AlreadyConfirmed: true}, nil
	}
	if !errors.Is(err, domain.ErrBookingNotFound) {
		return nil, fmt.Errorf("lookup booking: %w", err)
	}

	if strings.TrimSpace(req.CustomerName) == "" || len(req.Lines) == 0 {
		return nil, &domain.RejectedError{Reason: "no checkout to book for this payment"}
	}

	capture, err := s.gateway.CaptureOrder(ctx, req.PaymentReference)
	if err != nil {
		return nil, fmt.Errorf("capture payment %s: %w", req.PaymentReference, err)
	}
	if capture.Status != captureCompleted {
		return nil, &domain.RejectedError{Reason: fmt.Sprintf("capture status %s", capture.Status)}
	}
	if req.PayerID == "" {
		req.PayerID = capture.PayerID
	}

	booking := domain.NewBooking(req, s.now().UTC())
	err = s.bookingRepo.CreateBooking(ctx, booking)
	if errors.Is(err, domain.ErrDuplicateReference) {
		existing, getErr := s.bookingRepo.GetByPaymentReference(ctx, req.PaymentReference)
		if getErr != nil {
			return nil, fmt.Errorf("lookup booking after conflict: %w", getErr)
		}
		return &domain.BookingResult{Booking: existing, AlreadyConfirmed: true}, nil
	}
	if err != nil {
		log.Error().Err(err).Str("payment_reference", req.PaymentReference).
			Msg("payment captured but booking not stored")
		return nil, fmt.Errorf("store booking: %w", err)
	}

	// The booking transaction removed the session's cart rows.
	if err := s.cartCache.Delete(ctx, req.SessionID); err != nil {
		log.Warn().Err(err).Str("session_id", req.SessionID).Msg("cart cache invalidate after booking")
	}

	if err := s.events.BookingConfirmed(ctx, booking); err != nil {
		log.Warn().Err(err).Str("booking_id", booking.ID.String()).Msg("publish booking confirmed")
	}

	log.Info().Str("booking_id", booking.ID.String()).Str("payment_reference", req.PaymentReference).
		Str("total", domain.FormatMoney(booking.Total)).Msg("booking created")
	return &domain.BookingResult{Booking: booking}, nil
}
