package handler

import (
	"time"

	"github.com/srgjo27/rental_checkout/internal/core/domain"
	"github.com/srgjo27/rental_checkout/internal/core/duration"
	"github.com/srgjo27/rental_checkout/internal/core/services"
)

type upsertLineRequest struct {
	Quantity  int    `json:"quantity"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type durationRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type checkoutRequest struct {
	CustomerName string `json:"customer_name"`
}

type approveRequest struct {
	OrderID string `json:"order_id"`
}

type paymentErrorRequest struct {
	Reason string `json:"reason"`
}

type cartLineDTO struct {
	ItemID          string `json:"item_id"`
	Quantity        int    `json:"quantity"`
	StartDate       string `json:"start_date,omitempty"`
	EndDate         string `json:"end_date,omitempty"`
	BillableDays    int    `json:"billable_days"`
	Months          int    `json:"months"`
	UnitPricePerDay string `json:"unit_price_per_day"`
	LineTotal       string `json:"line_total"`
}

type cartDTO struct {
	Lines    []cartLineDTO `json:"lines"`
	Subtotal string        `json:"subtotal"`
	Discount string        `json:"discount"`
	Total    string        `json:"total"`
	Notice   string        `json:"notice,omitempty"`
}

func newCartLineDTOs(lines []domain.CartLine) []cartLineDTO {
	out := make([]cartLineDTO, 0, len(lines))
	for _, l := range lines {
		out = append(out, cartLineDTO{
			ItemID:          l.ItemID,
			Quantity:        l.Quantity,
			StartDate:       duration.FormatDate(l.StartDate),
			EndDate:         duration.FormatDate(l.EndDate),
			BillableDays:    l.BillableDays(),
			Months:          l.Months(),
			UnitPricePerDay: domain.FormatMoney(l.UnitPricePerDay),
			LineTotal:       domain.FormatMoney(l.LineTotal()),
		})
	}
	return out
}

// newCartDTO renders the cart; notice carries the last transient failure
// of the store, if any.
func newCartDTO(cart domain.Cart, notice error) cartDTO {
	dto := cartDTO{
		Lines:    newCartLineDTOs(cart.Lines),
		Subtotal: domain.FormatMoney(cart.Subtotal()),
		Discount: domain.FormatMoney(cart.Discount),
		Total:    domain.FormatMoney(cart.Total()),
	}
	if notice != nil {
		dto.Notice = notice.Error()
	}
	return dto
}

type snapshotDTO struct {
	CustomerName string        `json:"customer_name"`
	Lines        []cartLineDTO `json:"lines"`
	Discount     string        `json:"discount"`
	Total        string        `json:"total"`
	CreatedAt    time.Time     `json:"created_at"`
}

func newSnapshotDTO(s *domain.CheckoutSnapshot) snapshotDTO {
	return snapshotDTO{
		CustomerName: s.CustomerName,
		Lines:        newCartLineDTOs(s.Lines),
		Discount:     domain.FormatMoney(s.Discount),
		Total:        domain.FormatMoney(s.Total),
		CreatedAt:    s.CreatedAt,
	}
}

type bookingDTO struct {
	ID               string    `json:"id"`
	CustomerName     string    `json:"customer_name"`
	Total            string    `json:"total"`
	Status           string    `json:"status"`
	PaymentReference string    `json:"payment_reference"`
	CreatedAt        time.Time `json:"created_at"`
}

type attemptDTO struct {
	Mode             string      `json:"mode"`
	State            string      `json:"state"`
	CustomerName     string      `json:"customer_name"`
	Total            string      `json:"total"`
	OrderID          string      `json:"order_id,omitempty"`
	ApprovalURL      string      `json:"approval_url,omitempty"`
	PaymentAvailable bool        `json:"payment_available"`
	AlreadyConfirmed bool        `json:"already_confirmed,omitempty"`
	Booking          *bookingDTO `json:"booking,omitempty"`
	Error            string      `json:"error,omitempty"`
	RetryURL         string      `json:"retry_url,omitempty"`
}

func newAttemptDTO(v services.AttemptView) attemptDTO {
	dto := attemptDTO{
		Mode:             v.Mode.String(),
		State:            v.State.String(),
		CustomerName:     v.CustomerName,
		Total:            domain.FormatMoney(v.Total),
		OrderID:          v.OrderID,
		ApprovalURL:      v.ApprovalURL,
		PaymentAvailable: v.PaymentAvailable,
	}
	if v.Booking != nil {
		dto.Booking = &bookingDTO{
			ID:               v.Booking.ID.String(),
			CustomerName:     v.Booking.CustomerName,
			Total:            domain.FormatMoney(v.Booking.Total),
			Status:           string(v.Booking.Status),
			PaymentReference: v.Booking.PaymentReference,
			CreatedAt:        v.Booking.CreatedAt,
		}
	}
	if v.Err != nil {
		dto.Error = v.Err.Error()
	}
	if v.State == domain.PaymentFailed {
		dto.RetryURL = apiPrefix + "/payment/retry"
	}
	return dto
}
