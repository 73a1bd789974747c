package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BidPayment is a deposit record tied to one retail submission. The reference
// is generated at creation and globally unique; collision is a correctness bug.
type BidPayment struct {
	ID               int64
	UserID           int64
	RetailBidID      int64
	PaymentReference string
	Amount           decimal.Decimal
	Currency         string
	PaymentMethod    string
	StatusID         int64
	CreatedAt        time.Time
}
