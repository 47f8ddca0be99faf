package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/srgjo27/rental_checkout/internal/core/domain"
	"github.com/srgjo27/rental_checkout/internal/core/ports"
)

type PaymentConfig struct {
	Currency         string
	ReturnURL        string
	CancelURL        string
	ReconcileTimeout time.Duration
}

// PaymentOrchestrator drives the processor through either approval path and
// keeps the latest attempt of every session.
type PaymentOrchestrator struct {
	handoff      *CheckoutHandoff
	carts        *CartStores
	confirmation *BookingConfirmation
	gateway      ports.PaymentGateway
	cfg          PaymentConfig

	mu       sync.Mutex
	attempts map[string]*PaymentAttempt
}

// NewPaymentOrchestrator builds the orchestrator. carts may be nil; when set,
// a confirmed booking drops the session's cart store so the next read sees
// the emptied backend cart.
func NewPaymentOrchestrator(handoff *CheckoutHandoff, carts *CartStores, confirmation *BookingConfirmation, gateway ports.PaymentGateway, cfg PaymentConfig) *PaymentOrchestrator {
	if cfg.ReconcileTimeout <= 0 {
		cfg.ReconcileTimeout = 10 * time.Second
	}
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}
	return &PaymentOrchestrator{
		handoff:      handoff,
		carts:        carts,
		confirmation: confirmation,
		gateway:      gateway,
		cfg:          cfg,
		attempts:     make(map[string]*PaymentAttempt),
	}
}

// Start resumes the session's checkout snapshot into a new Idle attempt.
// Without a snapshot it returns domain.ErrSnapshotNotFound and the caller
// has to send the user back to the cart.
func (o *PaymentOrchestrator) Start(ctx context.Context, sessionID string, mode domain.EntryMode) (*PaymentAttempt, error) {
	snapshot, err := o.handoff.ResumeCheckout(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	a := o.newAttempt(sessionID, mode, snapshot)
	o.register(a)

	log.Info().Str("session_id", sessionID).Str("mode", mode.String()).Msg("payment attempt started")
	return a, nil
}

func (o *PaymentOrchestrator) newAttempt(sessionID string, mode domain.EntryMode, snapshot *domain.CheckoutSnapshot) *PaymentAttempt {
	return &PaymentAttempt{
		o:         o,
		sessionID: sessionID,
		mode:      mode,
		snapshot:  snapshot,
		state:     domain.PaymentIdle,
		fired:     make(map[string]bool),
	}
}

func (o *PaymentOrchestrator) register(a *PaymentAttempt) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.attempts[a.sessionID] = a
}

func (o *PaymentOrchestrator) Attempt(sessionID string) (*PaymentAttempt, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	a, ok := o.attempts[sessionID]
	if !ok {
		return nil, domain.ErrNoAttempt
	}
	return a, nil
}

// ReturnFromRedirect handles a Path B navigation. A reload of an already
// confirmed return URL is routed to the confirmed attempt so the backend can
// answer "already confirmed" instead of the user being bounced to the cart.
func (o *PaymentOrchestrator) ReturnFromRedirect(ctx context.Context, sessionID string, sig domain.RedirectReturn) (*PaymentAttempt, error) {
	if a, err := o.Attempt(sessionID); err == nil && a.confirmedFor(sig.Token) {
		_, err := a.Signal(ctx, sig)
		return a, err
	}

	a, err := o.Start(ctx, sessionID, domain.ModeReturn)
	if errors.Is(err, domain.ErrSnapshotNotFound) {
		return o.returnWithoutSnapshot(ctx, sessionID, sig)
	}
	if err != nil {
		return nil, err
	}
	_, err = a.Signal(ctx, sig)
	return a, err
}

// returnWithoutSnapshot serves a redirect return whose snapshot was already
// ended, such as a reload after logout or on another replica. Only a booking
// that already exists for the token can satisfy it; the backend refuses to
// book anything else without a checkout.
func (o *PaymentOrchestrator) returnWithoutSnapshot(ctx context.Context, sessionID string, sig domain.RedirectReturn) (*PaymentAttempt, error) {
	a := o.newAttempt(sessionID, domain.ModeReturn, &domain.CheckoutSnapshot{})
	_, err := a.Signal(ctx, sig)
	if err != nil && domain.IsRejected(err) {
		return nil, domain.ErrSnapshotNotFound
	}

	o.register(a)
	return a, err
}

func (o *PaymentOrchestrator) Dispose(sessionID string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	delete(o.attempts, sessionID)
}

// PaymentAttempt is the per page load state machine correlating a processor
// order with a checkout snapshot.
type PaymentAttempt struct {
	o         *PaymentOrchestrator
	sessionID string
	mode      domain.EntryMode
	snapshot  *domain.CheckoutSnapshot

	mu          sync.Mutex
	state       domain.PaymentState
	orderID     string
	approvalURL string
	booking     *domain.Booking
	lastErr     error
	fired       map[string]bool
}

type AttemptView struct {
	SessionID        string
	Mode             domain.EntryMode
	State            domain.PaymentState
	OrderID          string
	ApprovalURL      string
	CustomerName     string
	Total            decimal.Decimal
	Booking          *domain.Booking
	Err              error
	PaymentAvailable bool
}

func (a *PaymentAttempt) View() AttemptView {
	a.mu.Lock()
	defer a.mu.Unlock()

	view := AttemptView{
		SessionID:        a.sessionID,
		Mode:             a.mode,
		State:            a.state,
		OrderID:          a.orderID,
		ApprovalURL:      a.approvalURL,
		CustomerName:     a.snapshot.CustomerName,
		Total:            a.snapshot.Total,
		Booking:          a.booking,
		Err:              a.lastErr,
		PaymentAvailable: a.state == domain.PaymentAwaitingApproval,
	}
	if a.booking != nil {
		view.CustomerName = a.booking.CustomerName
		view.Total = a.booking.Total
	}
	return view
}

func (a *PaymentAttempt) State() domain.PaymentState {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.state
}

// CreateOrder is called lazily when the payment widget first renders. A
// failure leaves the attempt Idle with no payment affordance until retried.
func (a *PaymentAttempt) CreateOrder(ctx context.Context) (*ports.Order, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.mode != domain.ModeFresh {
		return nil, domain.ErrPathMismatch
	}
	if a.state == domain.PaymentAwaitingApproval {
		return &ports.Order{ID: a.orderID, ApprovalURL: a.approvalURL}, nil
	}
	if !domain.CanTransitionTo(a.state, domain.PaymentAwaitingApproval) {
		return nil, domain.ErrIllegalTransition
	}

	order, err := a.o.gateway.CreateOrder(ctx, a.snapshot.Total, a.o.cfg.Currency, a.o.cfg.ReturnURL, a.o.cfg.CancelURL)
	if err != nil {
		a.lastErr = &domain.PaymentError{Reason: "create order", Err: err}
		log.Warn().Err(err).Str("session_id", a.sessionID).Msg("payment order creation failed")
		return nil, a.lastErr
	}

	a.state = domain.PaymentAwaitingApproval
	a.orderID = order.ID
	a.approvalURL = order.ApprovalURL
	a.lastErr = nil
	log.Info().Str("session_id", a.sessionID).Str("order_id", order.ID).Msg("payment order created")
	return order, nil
}

// Signal feeds an approval from either path into reconciliation. The
// attempt is not locked while the backend is asked, so readers observe
// Reconciling and competing signals are refused.
func (a *PaymentAttempt) Signal(ctx context.Context, sig domain.PaymentSignal) (*domain.BookingResult, error) {
	duplicate, err := a.admit(sig)
	if err != nil {
		return nil, err
	}
	if duplicate {
		return a.reconcileDuplicate(ctx, sig)
	}
	return a.reconcile(ctx, sig)
}

// admit reports whether sig repeats an already confirmed reference. A first
// delivery moves the attempt to Reconciling.
func (a *PaymentAttempt) admit(sig domain.PaymentSignal) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if sig.Mode() != a.mode {
		return false, domain.ErrPathMismatch
	}
	ref := sig.Reference()

	switch a.state {
	case domain.PaymentConfirmed:
		if a.booking == nil || a.booking.PaymentReference != ref {
			return false, domain.ErrIllegalTransition
		}
		return true, nil
	case domain.PaymentAwaitingApproval:
		if approved, ok := sig.(domain.Approved); ok && approved.OrderID != a.orderID {
			return false, &domain.PaymentError{Reason: fmt.Sprintf("approval for unknown order %s", approved.OrderID)}
		}
	case domain.PaymentIdle:
		if _, ok := sig.(domain.Approved); ok {
			return false, domain.ErrIllegalTransition
		}
	default:
		return false, domain.ErrIllegalTransition
	}

	if a.fired[ref] {
		return false, domain.ErrSignalAlreadyFired
	}
	a.state = domain.PaymentReconciling
	a.fired[ref] = true
	return false, nil
}

func (a *PaymentAttempt) reconcile(ctx context.Context, sig domain.PaymentSignal) (*domain.BookingResult, error) {
	ref := sig.Reference()
	res, err := a.confirm(ctx, sig)

	a.mu.Lock()
	if err != nil {
		a.state = domain.PaymentFailed
		a.lastErr = err
		a.mu.Unlock()
		log.Error().Err(err).Str("session_id", a.sessionID).Str("payment_reference", ref).
			Msg("booking reconciliation failed, payment may have been captured")
		return nil, err
	}
	a.state = domain.PaymentConfirmed
	a.booking = res.Booking
	a.lastErr = nil
	a.mu.Unlock()

	if err := a.o.handoff.EndCheckout(ctx, a.sessionID); err != nil {
		log.Error().Err(err).Str("session_id", a.sessionID).Msg("booking confirmed but snapshot not cleared")
	}
	if a.o.carts != nil {
		a.o.carts.Dispose(a.sessionID)
	}

	log.Info().Str("session_id", a.sessionID).Str("payment_reference", ref).
		Bool("already_confirmed", res.AlreadyConfirmed).Msg("booking confirmed")
	return res, nil
}

// reconcileDuplicate re-asks the backend for a reference this attempt has
// already confirmed. The backend's idempotency answers it; the snapshot was
// already ended and stays that way.
func (a *PaymentAttempt) reconcileDuplicate(ctx context.Context, sig domain.PaymentSignal) (*domain.BookingResult, error) {
	res, err := a.confirm(ctx, sig)
	if err != nil {
		return nil, err
	}
	log.Info().Str("session_id", a.sessionID).Str("payment_reference", sig.Reference()).
		Msg("duplicate payment signal resolved")
	return res, nil
}

// confirm bounds each backend call with the reconcile timeout and retries
// once unless the backend rejected the payment outright.
func (a *PaymentAttempt) confirm(ctx context.Context, sig domain.PaymentSignal) (*domain.BookingResult, error) {
	var lastErr error
	for try := 1; try <= 2; try++ {
		callCtx, cancel := context.WithTimeout(ctx, a.o.cfg.ReconcileTimeout)
		res, err := a.o.confirmation.Confirm(callCtx, a.sessionID, a.snapshot, sig)
		cancel()
		if err == nil {
			return res, nil
		}

		var recErr *domain.ReconciliationError
		if errors.As(err, &recErr) {
			return nil, err
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		log.Warn().Err(err).Int("try", try).Str("payment_reference", sig.Reference()).Msg("booking confirmation call failed")
	}
	return nil, &domain.ReconciliationError{Reference: sig.Reference(), Err: lastErr}
}

// ReportPaymentError records a processor side failure such as a declined
// approval or a cancelled redirect.
func (a *PaymentAttempt) ReportPaymentError(reason string, cause error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != domain.PaymentIdle && a.state != domain.PaymentAwaitingApproval {
		return domain.ErrIllegalTransition
	}

	a.state = domain.PaymentFailed
	a.lastErr = &domain.PaymentError{Reason: reason, Err: cause}
	log.Warn().Err(cause).Str("session_id", a.sessionID).Str("reason", reason).Msg("payment failed")
	return nil
}

// Retry moves a failed attempt back to Idle. Signals that already fired are
// remembered and not replayed.
func (a *PaymentAttempt) Retry() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !domain.CanTransitionTo(a.state, domain.PaymentIdle) {
		return domain.ErrIllegalTransition
	}

	a.state = domain.PaymentIdle
	a.orderID = ""
	a.approvalURL = ""
	a.lastErr = nil
	return nil
}

func (a *PaymentAttempt) confirmedFor(ref string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.state == domain.PaymentConfirmed && a.booking != nil && a.booking.PaymentReference == ref
}
