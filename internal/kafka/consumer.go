package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// Consumer reads the bid lifecycle topic and hands decoded events to a
// handler. An undecodable message is logged and skipped so a single bad
// payload cannot wedge the consumer group.
type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, groupID, topic string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume blocks, delivering bid events until the context is canceled or the
// handler fails.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, BidEvent) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return fmt.Errorf("read message: %w", err)
		}

		event, err := decodeBidEvent(msg.Value)
		if err != nil {
			log.Printf("skip undecodable message at offset %d: %v", msg.Offset, err)
			continue
		}

		if err := handler(ctx, event); err != nil {
			return err
		}
	}
}

func decodeBidEvent(payload []byte) (BidEvent, error) {
	var event BidEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return BidEvent{}, err
	}
	return event, nil
}
