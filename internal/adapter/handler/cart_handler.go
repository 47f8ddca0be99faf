package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/srgjo27/rental_checkout/internal/core/domain"
	"github.com/srgjo27/rental_checkout/internal/core/duration"
)

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	store, err := h.carts.Open(r.Context(), SessionID(r.Context()))
	if err != nil {
		respondDomainError(w, r, err, store)
		return
	}

	respondJSON(w, http.StatusOK, newCartDTO(store.List(), store.Err()))
}

func (h *Handler) RefreshCart(w http.ResponseWriter, r *http.Request) {
	store, err := h.carts.Open(r.Context(), SessionID(r.Context()))
	if err == nil {
		err = store.Refresh(r.Context())
	}
	if err != nil {
		respondDomainError(w, r, err, store)
		return
	}

	respondJSON(w, http.StatusOK, newCartDTO(store.List(), nil))
}

func (h *Handler) UpsertCartItem(w http.ResponseWriter, r *http.Request) {
	var req upsertLineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	d, err := parseDuration(req.StartDate, req.EndDate)
	if err != nil {
		respondDomainError(w, r, err, nil)
		return
	}

	store, err := h.carts.Open(r.Context(), SessionID(r.Context()))
	if err == nil {
		err = store.UpsertLine(r.Context(), chi.URLParam(r, "itemID"), req.Quantity, d)
	}
	if err != nil {
		respondDomainError(w, r, err, store)
		return
	}

	respondJSON(w, http.StatusOK, newCartDTO(store.List(), nil))
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	store, err := h.carts.Open(r.Context(), SessionID(r.Context()))
	if err == nil {
		err = store.RemoveLine(r.Context(), chi.URLParam(r, "itemID"))
	}
	if err != nil {
		respondDomainError(w, r, err, store)
		return
	}

	respondJSON(w, http.StatusOK, newCartDTO(store.List(), nil))
}

// UpdateCartItemDuration only reprices the session's copy of the line. The
// new range is persisted by the next upsert of the item.
func (h *Handler) UpdateCartItemDuration(w http.ResponseWriter, r *http.Request) {
	var req durationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	d, err := parseDuration(req.StartDate, req.EndDate)
	if err != nil {
		respondDomainError(w, r, err, nil)
		return
	}

	store, err := h.carts.Open(r.Context(), SessionID(r.Context()))
	if err == nil {
		err = store.UpdateDuration(chi.URLParam(r, "itemID"), d.Start, d.End)
	}
	if err != nil {
		respondDomainError(w, r, err, store)
		return
	}

	respondJSON(w, http.StatusOK, newCartDTO(store.List(), nil))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	store, err := h.carts.Open(r.Context(), SessionID(r.Context()))
	if err == nil {
		err = store.Clear(r.Context())
	}
	if err != nil {
		respondDomainError(w, r, err, store)
		return
	}

	respondJSON(w, http.StatusOK, newCartDTO(store.List(), nil))
}

func parseDuration(start, end string) (domain.Duration, error) {
	s, err := duration.ParseDate(start)
	if err != nil {
		return domain.Duration{}, domain.NewValidationError("start_date", "expected YYYY-MM-DD")
	}
	e, err := duration.ParseDate(end)
	if err != nil {
		return domain.Duration{}, domain.NewValidationError("end_date", "expected YYYY-MM-DD")
	}
	return domain.Duration{Start: s, End: e}, nil
}
