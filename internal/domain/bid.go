package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Bid is an operator-published fare offer retail users submit seat requests
// against. Descriptive route/fare attributes live in the Notes JSON document;
// readers must tolerate absent or malformed Notes and fall back to defaults.
type Bid struct {
	ID                  int64
	BidAmount           decimal.Decimal
	ValidUntil          time.Time
	Notes               string
	TotalSeatsAvailable int
	MinSeatsPerBid      int
	MaxSeatsPerBid      int
	StatusID            int64
	FlightID            *int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// BidConfig is the typed view of the Notes document.
type BidConfig struct {
	Origin      string          `json:"origin,omitempty"`
	Destination string          `json:"destination,omitempty"`
	FareType    string          `json:"fareType,omitempty"`
	AutoAward   bool            `json:"autoAward,omitempty"`
	PaymentInfo *BidPaymentInfo `json:"paymentInfo,omitempty"`
}

type BidPaymentInfo struct {
	PaymentStatus string     `json:"paymentStatus,omitempty"`
	ExpiredAt     *time.Time `json:"expiredAt,omitempty"`
	Reason        string     `json:"reason,omitempty"`
}

// ParseBidConfig decodes raw Notes. Malformed or empty input yields a zero
// config, never an error.
func ParseBidConfig(raw string) BidConfig {
	var cfg BidConfig
	if raw == "" {
		return cfg
	}
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return BidConfig{}
	}
	return cfg
}

// ExpireNotes merges the expiry stamp into raw Notes, preserving every key it
// does not own. Unparseable input is replaced with a fresh document.
func ExpireNotes(raw string, now time.Time) string {
	doc := map[string]any{}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			doc = map[string]any{}
		}
	}

	payInfo, _ := doc["paymentInfo"].(map[string]any)
	if payInfo == nil {
		payInfo = map[string]any{}
	}
	payInfo["paymentStatus"] = "expired"
	payInfo["expiredAt"] = now.UTC().Format(time.RFC3339)
	payInfo["reason"] = "flight_departed"
	doc["paymentInfo"] = payInfo

	out, err := json.Marshal(doc)
	if err != nil {
		return raw
	}
	return string(out)
}

// BidDetails is the central read model for a single bid: the seat math is
// computed here once so no display surface recomputes it.
type BidDetails struct {
	Bid                 Bid
	Config              BidConfig
	TotalSeatsAvailable int
	BookedSeats         int
	AvailableSeats      int
	RetailBids          []RetailBidView
	Payments            []BidPayment
}

// SweepResult aggregates one expiry sweep run.
type SweepResult struct {
	Success      bool
	Message      string
	UpdatedCount int
}
