package handler

import (
	"net/http"

	"github.com/srgjo27/rental_checkout/internal/core/domain"
)

// BeginCheckout freezes the session's cart under the customer's name and
// points the caller at the payment entry.
func (h *Handler) BeginCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	sessionID := SessionID(r.Context())
	store, err := h.carts.Open(r.Context(), sessionID)
	if err != nil {
		respondDomainError(w, r, err, store)
		return
	}

	snapshot, err := h.handoff.BeginCheckout(r.Context(), sessionID, req.CustomerName, store.List())
	if err != nil {
		respondDomainError(w, r, err, nil)
		return
	}

	w.Header().Set("Location", apiPrefix+"/payment/start")
	respondJSON(w, http.StatusCreated, newSnapshotDTO(snapshot))
}

func (h *Handler) ResumeCheckout(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.handoff.ResumeCheckout(r.Context(), SessionID(r.Context()))
	if err != nil {
		respondDomainError(w, r, err, nil)
		return
	}

	respondJSON(w, http.StatusOK, newSnapshotDTO(snapshot))
}

func redirectToCart(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Location", apiPrefix+"/cart")
	respondJSON(w, http.StatusSeeOther, ErrorResponse{
		Error:    http.StatusText(http.StatusSeeOther),
		Code:     "no_checkout",
		Details:  domain.ErrSnapshotNotFound.Error(),
		Redirect: apiPrefix + "/cart",
	})
}
