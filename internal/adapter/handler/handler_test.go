package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/rental_checkout/internal/adapter/session"
	"github.com/srgjo27/rental_checkout/internal/core/domain"
	"github.com/srgjo27/rental_checkout/internal/core/ports"
	"github.com/srgjo27/rental_checkout/internal/core/ports/mocks"
	"github.com/srgjo27/rental_checkout/internal/core/services"
)

const testSession = "sess-1"

type testEnv struct {
	server   *httptest.Server
	carts    *mocks.CartBackend
	bookings *mocks.BookingBackend
	gateway  *mocks.PaymentGateway
	redis    *miniredis.Miniredis
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	env := &testEnv{
		carts:    mocks.NewCartBackend(t),
		bookings: mocks.NewBookingBackend(t),
		gateway:  mocks.NewPaymentGateway(t),
		redis:    mr,
	}

	handoff := services.NewCheckoutHandoff(session.NewRedisStore(client), 0)
	carts := services.NewCartStores(env.carts)
	payments := services.NewPaymentOrchestrator(handoff, carts, services.NewBookingConfirmation(env.bookings), env.gateway,
		services.PaymentConfig{ReturnURL: "http://app/return", CancelURL: "http://app/cancel", ReconcileTimeout: time.Second})
	h := NewHandler(carts, handoff, payments)

	env.server = httptest.NewServer(NewRouter(h, zerolog.Nop(), 5*time.Second))
	t.Cleanup(env.server.Close)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set(SessionHeader, testSession)

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &out))
	}
	return resp, out
}

func drillCart() *domain.Cart {
	return &domain.Cart{Lines: []domain.CartLine{{
		ItemID:          "drill",
		Quantity:        2,
		StartDate:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		UnitPricePerDay: decimal.NewFromInt(10),
	}}}
}

// checkedOut loads the cart and begins a checkout for the test session.
func (e *testEnv) checkedOut(t *testing.T) {
	t.Helper()
	e.carts.On("GetCart", mock.Anything, testSession).Return(drillCart(), nil).Once()
	resp, _ := e.do(t, http.MethodPost, "/api/v1/checkout", `{"customer_name":"A. Renter"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestRequireSession(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + "/api/v1/cart")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestGetCart(t *testing.T) {
	env := newTestEnv(t)
	env.carts.On("GetCart", mock.Anything, testSession).Return(drillCart(), nil).Once()

	resp, body := env.do(t, http.MethodGet, "/api/v1/cart", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "60.00", body["subtotal"])
	lines := body["lines"].([]interface{})
	require.Len(t, lines, 1)
	line := lines[0].(map[string]interface{})
	assert.Equal(t, float64(3), line["billable_days"])
	assert.Equal(t, float64(1), line["months"])
	assert.Equal(t, "2024-03-01", line["start_date"])
}

func TestGetCart_FetchFailureShowsEmptyCart(t *testing.T) {
	env := newTestEnv(t)
	env.carts.On("GetCart", mock.Anything, testSession).Return(nil, errors.New("db down")).Once()

	resp, body := env.do(t, http.MethodGet, "/api/v1/cart", "")

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "cart_unavailable", body["code"])
	cart := body["cart"].(map[string]interface{})
	assert.Empty(t, cart["lines"])
}

func TestUpsertCartItem(t *testing.T) {
	env := newTestEnv(t)
	env.carts.On("GetCart", mock.Anything, testSession).Return(&domain.Cart{}, nil).Once()
	line := drillCart().Lines[0]
	env.carts.On("UpsertCartLine", mock.Anything, testSession, "drill", 2, line.Duration()).Return(&line, nil).Once()

	resp, body := env.do(t, http.MethodPut, "/api/v1/cart/items/drill",
		`{"quantity":2,"start_date":"2024-03-01","end_date":"2024-03-04"}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "60.00", body["total"])
}

func TestUpsertCartItem_BadDate(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPut, "/api/v1/cart/items/drill", `{"quantity":1,"start_date":"03/01/2024"}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation_error", body["code"])
}

func TestUpsertCartItem_WriteFailureReturnsRefetchedCart(t *testing.T) {
	env := newTestEnv(t)
	env.carts.On("GetCart", mock.Anything, testSession).Return(drillCart(), nil).Twice()
	env.carts.On("UpsertCartLine", mock.Anything, testSession, "drill", 5, mock.Anything).Return(nil, errors.New("timeout")).Once()

	resp, body := env.do(t, http.MethodPut, "/api/v1/cart/items/drill",
		`{"quantity":5,"start_date":"2024-03-01","end_date":"2024-03-04"}`)

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	cart := body["cart"].(map[string]interface{})
	line := cart["lines"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, float64(2), line["quantity"])
}

func TestUpdateDuration_UnknownLine(t *testing.T) {
	env := newTestEnv(t)
	env.carts.On("GetCart", mock.Anything, testSession).Return(&domain.Cart{}, nil).Once()

	resp, _ := env.do(t, http.MethodPatch, "/api/v1/cart/items/ghost/duration", `{"start_date":"2024-03-01","end_date":"2024-03-02"}`)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBeginCheckout_EmptyNameIsRejected(t *testing.T) {
	env := newTestEnv(t)
	env.carts.On("GetCart", mock.Anything, testSession).Return(drillCart(), nil).Once()

	resp, body := env.do(t, http.MethodPost, "/api/v1/checkout", `{"customer_name":"  "}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation_error", body["code"])
	assert.Empty(t, env.redis.Keys())
}

func TestBeginCheckout_ThenResume(t *testing.T) {
	env := newTestEnv(t)
	env.carts.On("GetCart", mock.Anything, testSession).Return(drillCart(), nil).Once()

	resp, body := env.do(t, http.MethodPost, "/api/v1/checkout", `{"customer_name":"A. Renter"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "/api/v1/payment/start", resp.Header.Get("Location"))
	assert.Equal(t, "60.00", body["total"])

	resp, body = env.do(t, http.MethodGet, "/api/v1/checkout", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "A. Renter", body["customer_name"])
}

func TestStartPayment_WithoutCheckoutRedirectsToCart(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodPost, "/api/v1/payment/start", "")

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/api/v1/cart", resp.Header.Get("Location"))
}

func TestRedirectReturn_ConfirmsBooking(t *testing.T) {
	env := newTestEnv(t)
	env.checkedOut(t)

	booking := &domain.Booking{CustomerName: "A. Renter", Total: decimal.NewFromInt(60), PaymentReference: "EC-1", Status: domain.BookingConfirmed}
	env.bookings.On("ApproveBooking", mock.Anything, mock.MatchedBy(func(r domain.BookingRequest) bool {
		return r.PaymentReference == "EC-1" && r.PayerID == "PAYER" && r.Total.Equal(decimal.NewFromInt(60))
	})).Return(&domain.BookingResult{Booking: booking}, nil).Once()

	resp, body := env.do(t, http.MethodGet, "/api/v1/payment/return?token=EC-1&PayerID=PAYER", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "CONFIRMED", body["state"])
	assert.Equal(t, "60.00", body["booking"].(map[string]interface{})["total"])

	resp, body = env.do(t, http.MethodGet, "/api/v1/checkout", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "/api/v1/cart", body["redirect"])
}

func TestRedirectReturn_IncompleteParamsWithoutCheckoutGoesToCart(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/v1/payment/return?token=EC-1", "/api/v1/payment/return"} {
		resp, body := env.do(t, http.MethodGet, path, "")

		assert.Equal(t, http.StatusSeeOther, resp.StatusCode, path)
		assert.Equal(t, "/api/v1/cart", resp.Header.Get("Location"), path)
		assert.Equal(t, "no_checkout", body["code"], path)
	}
}

func TestRedirectReturn_IncompleteParamsIsPlainPaymentVisit(t *testing.T) {
	env := newTestEnv(t)
	env.checkedOut(t)

	resp, body := env.do(t, http.MethodGet, "/api/v1/payment/return?PayerID=PAYER", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "IDLE", body["state"])
	assert.Equal(t, "fresh", body["mode"])
	assert.Equal(t, "60.00", body["total"])

	resp, body = env.do(t, http.MethodGet, "/api/v1/payment/return?token=EC-1", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "IDLE", body["state"])
	env.bookings.AssertNotCalled(t, "ApproveBooking", mock.Anything, mock.Anything)
}

func TestRedirectReturn_ConfirmedCartIsEmptyAndCannotBeCheckedOutAgain(t *testing.T) {
	env := newTestEnv(t)
	env.checkedOut(t)

	booking := &domain.Booking{CustomerName: "A. Renter", Total: decimal.NewFromInt(60), PaymentReference: "EC-1", Status: domain.BookingConfirmed}
	env.bookings.On("ApproveBooking", mock.Anything, mock.Anything).Return(&domain.BookingResult{Booking: booking}, nil).Once()

	resp, _ := env.do(t, http.MethodGet, "/api/v1/payment/return?token=EC-1&PayerID=PAYER", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	env.carts.On("GetCart", mock.Anything, testSession).Return(&domain.Cart{}, nil).Once()

	resp, body := env.do(t, http.MethodGet, "/api/v1/cart", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["lines"])
	assert.Equal(t, "0.00", body["total"])

	resp, body = env.do(t, http.MethodPost, "/api/v1/checkout", `{"customer_name":"A. Renter"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation_error", body["code"])
}

func TestRedirectReturn_ReloadAfterLogoutShowsConfirmed(t *testing.T) {
	env := newTestEnv(t)
	env.checkedOut(t)

	booking := &domain.Booking{CustomerName: "A. Renter", Total: decimal.NewFromInt(60), PaymentReference: "EC-1", Status: domain.BookingConfirmed}
	env.bookings.On("ApproveBooking", mock.Anything, mock.MatchedBy(func(r domain.BookingRequest) bool {
		return r.CustomerName == "A. Renter"
	})).Return(&domain.BookingResult{Booking: booking}, nil).Once()
	env.bookings.On("ApproveBooking", mock.Anything, mock.MatchedBy(func(r domain.BookingRequest) bool {
		return r.PaymentReference == "EC-1" && r.CustomerName == ""
	})).Return(&domain.BookingResult{Booking: booking, AlreadyConfirmed: true}, nil).Once()

	resp, _ := env.do(t, http.MethodGet, "/api/v1/payment/return?token=EC-1&PayerID=PAYER", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, http.MethodDelete, "/api/v1/session", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body := env.do(t, http.MethodGet, "/api/v1/payment/return?token=EC-1&PayerID=PAYER", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "CONFIRMED", body["state"])
	assert.Equal(t, "60.00", body["total"])
	assert.Equal(t, "A. Renter", body["customer_name"])
}

func TestRedirectReturn_FailureOffersRetry(t *testing.T) {
	env := newTestEnv(t)
	env.checkedOut(t)

	env.bookings.On("ApproveBooking", mock.Anything, mock.Anything).
		Return(nil, &domain.RejectedError{Reason: "capture status DECLINED"}).Once()

	resp, body := env.do(t, http.MethodGet, "/api/v1/payment/return?token=EC-1&PayerID=PAYER", "")

	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "FAILED", body["state"])
	assert.Equal(t, "/api/v1/payment/retry", body["retry_url"])

	resp, body = env.do(t, http.MethodPost, "/api/v1/payment/retry", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "IDLE", body["state"])

	resp, _ = env.do(t, http.MethodGet, "/api/v1/checkout", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestEmbeddedApproval(t *testing.T) {
	env := newTestEnv(t)
	env.checkedOut(t)

	env.gateway.On("CreateOrder", mock.Anything, mock.Anything, "USD", "http://app/return", "http://app/cancel").
		Return(&ports.Order{ID: "ORDER-1", ApprovalURL: "https://processor/approve"}, nil).Once()
	env.bookings.On("CreateBooking", mock.Anything, mock.MatchedBy(func(r domain.BookingRequest) bool {
		return r.PaymentReference == "ORDER-1" && r.CustomerName == "A. Renter"
	})).Return(&domain.BookingResult{Booking: &domain.Booking{PaymentReference: "ORDER-1"}}, nil).Once()

	resp, body := env.do(t, http.MethodPost, "/api/v1/payment/start", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["payment_available"])

	resp, body = env.do(t, http.MethodPost, "/api/v1/payment/orders", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "ORDER-1", body["order_id"])
	assert.Equal(t, true, body["payment_available"])

	resp, _ = env.do(t, http.MethodPost, "/api/v1/payment/approve", `{"order_id":"ORDER-9"}`)
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)

	resp, body = env.do(t, http.MethodPost, "/api/v1/payment/approve", `{"order_id":"ORDER-1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "CONFIRMED", body["state"])
}

func TestEmbeddedApproval_WrongPathConflicts(t *testing.T) {
	env := newTestEnv(t)
	env.checkedOut(t)

	resp, _ := env.do(t, http.MethodPost, "/api/v1/payment/start", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := env.do(t, http.MethodPost, "/api/v1/payment/approve", `{"order_id":"ORDER-1"}`)

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "payment_conflict", body["code"])
}

func TestCancelPayment(t *testing.T) {
	env := newTestEnv(t)
	env.checkedOut(t)

	resp, _ := env.do(t, http.MethodPost, "/api/v1/payment/start", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := env.do(t, http.MethodGet, "/api/v1/payment/cancel", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "FAILED", body["state"])
	assert.Contains(t, body["error"], "cancelled by buyer")
}

func TestEndSession(t *testing.T) {
	env := newTestEnv(t)
	env.checkedOut(t)

	resp, _ := env.do(t, http.MethodPost, "/api/v1/payment/start", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, http.MethodDelete, "/api/v1/session", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/api/v1/payment", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.NotEmpty(t, env.redis.Keys())
}
