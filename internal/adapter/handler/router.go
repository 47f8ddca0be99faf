package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/srgjo27/rental_checkout/internal/core/services"
)

const apiPrefix = "/api/v1"

// Handler serves the cart, checkout and payment endpoints of one process.
// Per session state lives in the injected registries.
type Handler struct {
	carts    *services.CartStores
	handoff  *services.CheckoutHandoff
	payments *services.PaymentOrchestrator
}

func NewHandler(carts *services.CartStores, handoff *services.CheckoutHandoff, payments *services.PaymentOrchestrator) *Handler {
	return &Handler{
		carts:    carts,
		handoff:  handoff,
		payments: payments,
	}
}

func NewRouter(h *Handler, logger zerolog.Logger, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(logger))
	r.Use(requestIDLogger)
	r.Use(hlog.AccessHandler(accessLog))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", h.Health)

	r.Route(apiPrefix, func(r chi.Router) {
		r.Use(RequireSession)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Post("/refresh", h.RefreshCart)
			r.Put("/items/{itemID}", h.UpsertCartItem)
			r.Delete("/items/{itemID}", h.RemoveCartItem)
			r.Patch("/items/{itemID}/duration", h.UpdateCartItemDuration)
		})

		r.Post("/checkout", h.BeginCheckout)
		r.Get("/checkout", h.ResumeCheckout)

		r.Route("/payment", func(r chi.Router) {
			r.Get("/", h.GetPayment)
			r.Post("/start", h.StartPayment)
			r.Post("/orders", h.CreateOrder)
			r.Post("/approve", h.ApprovePayment)
			r.Get("/return", h.ReturnFromRedirect)
			r.Get("/cancel", h.CancelPayment)
			r.Post("/error", h.ReportPaymentError)
			r.Post("/retry", h.RetryPayment)
		})

		r.Delete("/session", h.EndSession)
	})

	return r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// EndSession drops the in-memory cart and payment attempt of the session.
// The durable checkout snapshot is left alone.
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	sessionID := SessionID(r.Context())
	h.carts.Dispose(sessionID)
	h.payments.Dispose(sessionID)
	w.WriteHeader(http.StatusNoContent)
}
