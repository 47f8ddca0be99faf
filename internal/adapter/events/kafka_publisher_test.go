package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/rental_checkout/internal/core/domain"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func testBooking() *domain.Booking {
	return &domain.Booking{
		ID:               uuid.New(),
		SessionID:        "s1",
		CustomerName:     "A. Renter",
		Total:            decimal.RequireFromString("20.646"),
		PaymentReference: "ORDER-1",
		CreatedAt:        time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Lines:            []domain.BookingLine{{ItemID: "drill"}, {ItemID: "tent"}},
	}
}

func TestBookingConfirmed_WritesKeyedMessage(t *testing.T) {
	w := &recordingWriter{}
	p := &KafkaPublisher{writer: w}
	booking := testBooking()

	require.NoError(t, p.BookingConfirmed(context.Background(), booking))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "ORDER-1", string(msg.Key))
	assert.Equal(t, "booking.confirmed", string(msg.Headers[0].Value))

	var evt BookingConfirmedEvent
	require.NoError(t, json.Unmarshal(msg.Value, &evt))
	assert.Equal(t, booking.ID.String(), evt.BookingID)
	assert.Equal(t, "20.65", evt.Total)
	assert.Equal(t, []string{"drill", "tent"}, evt.ItemIDs)
}

func TestBookingConfirmed_WriteError(t *testing.T) {
	p := &KafkaPublisher{writer: &recordingWriter{err: errors.New("leader not available")}}

	err := p.BookingConfirmed(context.Background(), testBooking())

	assert.ErrorContains(t, err, "leader not available")
}
