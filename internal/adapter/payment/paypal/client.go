package paypal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	sdk "github.com/plutov/paypal/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"

	"github.com/srgjo27/rental_checkout/internal/core/domain"
	"github.com/srgjo27/rental_checkout/internal/core/ports"
)

const issueAlreadyCaptured = "ORDER_ALREADY_CAPTURED"

type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// Client adapts the PayPal SDK to ports.PaymentGateway. All calls share one
// circuit breaker; client errors (4xx) do not count towards tripping it.
type Client struct {
	api *sdk.Client
	cb  *gobreaker.CircuitBreaker[struct{}]
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = sdk.APIBaseSandBox
	}

	api, err := sdk.NewClient(cfg.ClientID, cfg.ClientSecret, strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("paypal client: %w", err)
	}
	api.SetHTTPClient(&http.Client{Timeout: cfg.Timeout})

	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "paypal",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			status := StatusCode(err)
			return err == nil || (status > 0 && status < http.StatusInternalServerError)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})

	return &Client{api: api, cb: cb}, nil
}

// StatusCode returns the HTTP status of a processor error response, or 0
// when err did not come from one.
func StatusCode(err error) int {
	var resp *sdk.ErrorResponse
	if errors.As(err, &resp) && resp.Response != nil {
		return resp.Response.StatusCode
	}
	return 0
}

func hasIssue(err error, issue string) bool {
	var resp *sdk.ErrorResponse
	if !errors.As(err, &resp) {
		return false
	}
	for _, d := range resp.Details {
		if d.Issue == issue {
			return true
		}
	}
	return false
}

func (c *Client) CreateOrder(ctx context.Context, total decimal.Decimal, currency, returnURL, cancelURL string) (*ports.Order, error) {
	units := []sdk.PurchaseUnitRequest{{
		Amount: &sdk.PurchaseUnitAmount{Currency: currency, Value: total.StringFixed(2)},
	}}
	appCtx := &sdk.ApplicationContext{ReturnURL: returnURL, CancelURL: cancelURL}

	var order *sdk.Order
	_, err := c.cb.Execute(func() (struct{}, error) {
		var err error
		order, err = c.api.CreateOrder(ctx, sdk.OrderIntentCapture, units, nil, appCtx)
		return struct{}{}, err
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	out := &ports.Order{ID: order.ID, Status: order.Status}
	for _, l := range order.Links {
		if l.Rel == "approve" || l.Rel == "payer-action" {
			out.ApprovalURL = l.Href
			break
		}
	}
	return out, nil
}

// orderResource is the part of an order or capture response the booking
// needs.
type orderResource struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Payer  struct {
		PayerID string `json:"payer_id"`
	} `json:"payer"`
}

// CaptureOrder is safe to repeat: the request id is derived from the order
// and an already captured order is read back instead of failing.
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (*ports.Capture, error) {
	orderURL := c.api.APIBase + "/v2/checkout/orders/" + url.PathEscape(orderID)

	var resp orderResource
	err := c.send(ctx, http.MethodPost, orderURL+"/capture", struct{}{}, map[string]string{
		"PayPal-Request-Id": "capture-" + orderID,
	}, &resp)

	switch {
	case err == nil:
	case hasIssue(err, issueAlreadyCaptured):
		resp = orderResource{}
		if err := c.send(ctx, http.MethodGet, orderURL, nil, nil, &resp); err != nil {
			return nil, fmt.Errorf("read captured order: %w", err)
		}
	case StatusCode(err) >= http.StatusBadRequest && StatusCode(err) < http.StatusInternalServerError:
		return nil, &domain.RejectedError{Reason: err.Error()}
	default:
		return nil, fmt.Errorf("capture order: %w", err)
	}

	return &ports.Capture{OrderID: resp.ID, Status: resp.Status, PayerID: resp.Payer.PayerID}, nil
}

// send issues an authenticated request the SDK has no typed call for.
func (c *Client) send(ctx context.Context, method, u string, payload interface{}, headers map[string]string, out interface{}) error {
	_, err := c.cb.Execute(func() (struct{}, error) {
		req, err := c.api.NewRequest(ctx, method, u, payload)
		if err != nil {
			return struct{}{}, err
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return struct{}{}, c.api.SendWithAuth(req, out)
	})
	return err
}
