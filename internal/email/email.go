package email

import (
	"context"
	"log"

	"github.com/avialine/groupfare/internal/kafka"
)

// Sender turns bid lifecycle events into user notifications. Delivery is
// simulated; the worker feeds it from the notifications topic.
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.BidEvent) error {
	log.Printf("notify user %d: %s for bid %d (retail bid %d)", event.UserID, event.Type, event.BidID, event.RetailBidID)
	return nil
}
