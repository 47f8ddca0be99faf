package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/srgjo27/rental_checkout/internal/core/domain"
	"github.com/srgjo27/rental_checkout/internal/core/services"
)

// StartPayment enters the payment page from the checkout flow. Without a
// snapshot the caller is sent back to the cart.
func (h *Handler) StartPayment(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.payments.Start(r.Context(), SessionID(r.Context()), domain.ModeFresh)
	if errors.Is(err, domain.ErrSnapshotNotFound) {
		redirectToCart(w, r)
		return
	}
	if err != nil {
		respondDomainError(w, r, err, nil)
		return
	}

	respondJSON(w, http.StatusOK, newAttemptDTO(attempt.View()))
}

func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.payments.Attempt(SessionID(r.Context()))
	if err != nil {
		respondDomainError(w, r, err, nil)
		return
	}

	respondJSON(w, http.StatusOK, newAttemptDTO(attempt.View()))
}

// CreateOrder is called when the embedded payment widget renders.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.payments.Attempt(SessionID(r.Context()))
	if err == nil {
		_, err = attempt.CreateOrder(r.Context())
	}
	if err != nil {
		respondDomainError(w, r, err, nil)
		return
	}

	respondJSON(w, http.StatusCreated, newAttemptDTO(attempt.View()))
}

// ApprovePayment is the embedded widget's approval callback.
func (h *Handler) ApprovePayment(w http.ResponseWriter, r *http.Request) {
	var req approveRequest
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.OrderID) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "order_id is required")
		return
	}

	attempt, err := h.payments.Attempt(SessionID(r.Context()))
	if err != nil {
		respondDomainError(w, r, err, nil)
		return
	}

	res, err := attempt.Signal(r.Context(), domain.Approved{OrderID: req.OrderID})
	respondSignal(w, r, attempt, res, err)
}

// ReturnFromRedirect is where the processor sends the buyer back after an
// off-site approval. Without both token and PayerID the request is an
// ordinary visit to the payment page.
func (h *Handler) ReturnFromRedirect(w http.ResponseWriter, r *http.Request) {
	sig, ok := domain.ParseRedirectReturn(r.URL.Query())
	if !ok {
		h.showPayment(w, r)
		return
	}

	attempt, err := h.payments.ReturnFromRedirect(r.Context(), SessionID(r.Context()), sig)
	if errors.Is(err, domain.ErrSnapshotNotFound) {
		redirectToCart(w, r)
		return
	}
	if attempt == nil {
		respondDomainError(w, r, err, nil)
		return
	}

	respondSignal(w, r, attempt, nil, err)
}

// showPayment renders the session's current attempt, or enters the payment
// page afresh when there is none.
func (h *Handler) showPayment(w http.ResponseWriter, r *http.Request) {
	if attempt, err := h.payments.Attempt(SessionID(r.Context())); err == nil {
		respondJSON(w, http.StatusOK, newAttemptDTO(attempt.View()))
		return
	}
	h.StartPayment(w, r)
}

func (h *Handler) CancelPayment(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.payments.Attempt(SessionID(r.Context()))
	if errors.Is(err, domain.ErrNoAttempt) {
		redirectToCart(w, r)
		return
	}
	if err == nil {
		err = attempt.ReportPaymentError("cancelled by buyer", nil)
	}
	if err != nil {
		respondDomainError(w, r, err, nil)
		return
	}

	respondJSON(w, http.StatusOK, newAttemptDTO(attempt.View()))
}

// ReportPaymentError is the embedded widget's error callback.
func (h *Handler) ReportPaymentError(w http.ResponseWriter, r *http.Request) {
	var req paymentErrorRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = "processor error"
	}

	attempt, err := h.payments.Attempt(SessionID(r.Context()))
	if err == nil {
		err = attempt.ReportPaymentError(reason, nil)
	}
	if err != nil {
		respondDomainError(w, r, err, nil)
		return
	}

	respondJSON(w, http.StatusOK, newAttemptDTO(attempt.View()))
}

func (h *Handler) RetryPayment(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.payments.Attempt(SessionID(r.Context()))
	if err == nil {
		err = attempt.Retry()
	}
	if err != nil {
		respondDomainError(w, r, err, nil)
		return
	}

	respondJSON(w, http.StatusOK, newAttemptDTO(attempt.View()))
}

// respondSignal renders the outcome of a reconciliation. Failures carry the
// attempt so the caller can show the retry affordance.
func respondSignal(w http.ResponseWriter, r *http.Request, attempt *services.PaymentAttempt, res *domain.BookingResult, err error) {
	if err != nil {
		var recErr *domain.ReconciliationError
		if errors.As(err, &recErr) {
			dto := newAttemptDTO(attempt.View())
			respondJSON(w, http.StatusBadGateway, dto)
			return
		}
		respondDomainError(w, r, err, nil)
		return
	}

	dto := newAttemptDTO(attempt.View())
	dto.AlreadyConfirmed = res != nil && res.AlreadyConfirmed
	respondJSON(w, http.StatusOK, dto)
}
