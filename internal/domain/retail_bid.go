package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RetailBid is one user's seat request against a Bid. Rows are never
// physically deleted; lifecycle is carried entirely by StatusID.
type RetailBid struct {
	ID              int64
	BidID           int64
	UserID          int64
	SubmittedAmount decimal.Decimal
	SeatBooked      int
	StatusID        int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RetailBidView enriches a submission with the registry row and, where
// available, the submitting user. User may be nil when the account lives in
// the shared user store only.
type RetailBidView struct {
	RetailBid
	StatusInfo *Status
	User       *User
}

// UserBidView is the my-bids read model: a submission plus its parent bid.
type UserBidView struct {
	RetailBid
	StatusInfo *Status
	BidDetails *Bid
}
