package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/srgjo27/rental_checkout/internal/core/domain"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// BookingConfirmedEvent is the payload published for every new booking.
type BookingConfirmedEvent struct {
	BookingID        string    `json:"booking_id"`
	SessionID        string    `json:"session_id"`
	CustomerName     string    `json:"customer_name"`
	Total            string    `json:"total"`
	PaymentReference string    `json:"payment_reference"`
	ItemIDs          []string  `json:"item_ids"`
	CreatedAt        time.Time `json:"created_at"`
}

type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
	}
}

// BookingConfirmed keys the message by payment reference so redeliveries of
// the same booking land on one partition.
func (p *KafkaPublisher) BookingConfirmed(ctx context.Context, booking *domain.Booking) error {
	evt := BookingConfirmedEvent{
		BookingID:        booking.ID.String(),
		SessionID:        booking.SessionID,
		CustomerName:     booking.CustomerName,
		Total:            domain.FormatMoney(booking.Total),
		PaymentReference: booking.PaymentReference,
		CreatedAt:        booking.CreatedAt,
	}
	for _, l := range booking.Lines {
		evt.ItemIDs = append(evt.ItemIDs, l.ItemID)
	}

	value, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal booking event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(booking.PaymentReference),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("booking.confirmed")},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write booking event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher is used when no brokers are configured.
type LogPublisher struct{}

func (LogPublisher) BookingConfirmed(_ context.Context, booking *domain.Booking) error {
	log.Info().Str("booking_id", booking.ID.String()).Str("payment_reference", booking.PaymentReference).
		Msg("booking confirmed event (no broker configured)")
	return nil
}
