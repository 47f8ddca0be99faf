package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/srgjo27/rental_checkout/internal/core/domain"
	"github.com/srgjo27/rental_checkout/internal/core/services"
)

type ErrorResponse struct {
	Error    string   `json:"error"`
	Code     string   `json:"code,omitempty"`
	Details  string   `json:"details,omitempty"`
	Cart     *cartDTO `json:"cart,omitempty"`
	RetryURL string   `json:"retry_url,omitempty"`
	Redirect string   `json:"redirect,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: http.StatusText(status), Code: code, Details: message})
}

// respondDomainError maps the error taxonomy onto HTTP. store is optional;
// when present, cart failures carry the re-fetched cart.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error, store *services.CartStore) {
	var (
		recErr   *domain.ReconciliationError
		writeErr *domain.WriteError
		fetchErr *domain.FetchError
		payErr   *domain.PaymentError
	)

	resp := ErrorResponse{Details: err.Error()}
	status := http.StatusInternalServerError

	switch {
	case domain.IsValidation(err):
		status, resp.Code = http.StatusBadRequest, "validation_error"
	case errors.As(err, &recErr):
		status, resp.Code = http.StatusBadGateway, "reconciliation_failed"
		resp.RetryURL = apiPrefix + "/payment/retry"
	case errors.As(err, &writeErr), errors.As(err, &fetchErr):
		status, resp.Code = http.StatusBadGateway, "cart_unavailable"
		if store != nil {
			dto := newCartDTO(store.List(), nil)
			resp.Cart = &dto
		}
	case errors.As(err, &payErr):
		status, resp.Code = http.StatusPaymentRequired, "payment_failed"
	case errors.Is(err, domain.ErrPathMismatch),
		errors.Is(err, domain.ErrIllegalTransition),
		errors.Is(err, domain.ErrSignalAlreadyFired):
		status, resp.Code = http.StatusConflict, "payment_conflict"
	case errors.Is(err, domain.ErrSnapshotNotFound):
		status, resp.Code = http.StatusNotFound, "no_checkout"
		resp.Redirect = apiPrefix + "/cart"
	case errors.Is(err, domain.ErrLineNotFound),
		errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, domain.ErrBookingNotFound),
		errors.Is(err, domain.ErrNoAttempt):
		status, resp.Code = http.StatusNotFound, "not_found"
	}

	if status >= http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Int("status", status).Msg("request failed")
	}
	if status == http.StatusInternalServerError {
		resp.Details = "internal server error"
	}
	resp.Error = http.StatusText(status)
	respondJSON(w, status, resp)
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
