package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// BidEvent is the payload for every bid lifecycle topic message.
type BidEvent struct {
	Type             string          `json:"type"`
	BidID            int64           `json:"bid_id"`
	RetailBidID      int64           `json:"retail_bid_id,omitempty"`
	UserID           int64           `json:"user_id,omitempty"`
	SeatBooked       int             `json:"seat_booked,omitempty"`
	Amount           decimal.Decimal `json:"amount,omitempty"`
	PaymentReference string          `json:"payment_reference,omitempty"`
	StatusCode       string          `json:"status_code,omitempty"`
	OccurredAt       time.Time       `json:"occurred_at"`
}

type Producer struct {
	brokers []string
	writer  *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return &Producer{
		brokers: brokers,
		writer:  writer,
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
