package api

import (
	"time"

	"github.com/avialine/groupfare/internal/domain"
	"github.com/shopspring/decimal"
)

type bidResponse struct {
	ID                  int64           `json:"id"`
	BidAmount           decimal.Decimal `json:"bidAmount"`
	ValidUntil          time.Time       `json:"validUntil"`
	Notes               string          `json:"notes"`
	TotalSeatsAvailable int             `json:"totalSeatsAvailable"`
	MinSeatsPerBid      int             `json:"minSeatsPerBid"`
	MaxSeatsPerBid      int             `json:"maxSeatsPerBid"`
	StatusID            int64           `json:"statusId"`
	FlightID            *int64          `json:"flightId,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

func newBidResponse(b domain.Bid) bidResponse {
	return bidResponse{
		ID:                  b.ID,
		BidAmount:           b.BidAmount,
		ValidUntil:          b.ValidUntil,
		Notes:               b.Notes,
		TotalSeatsAvailable: b.TotalSeatsAvailable,
		MinSeatsPerBid:      b.MinSeatsPerBid,
		MaxSeatsPerBid:      b.MaxSeatsPerBid,
		StatusID:            b.StatusID,
		FlightID:            b.FlightID,
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           b.UpdatedAt,
	}
}

// bidListItem spreads the bid fields at the top level of each list entry and
// attaches the parsed notes document under "details".
type bidListItem struct {
	bidResponse
	Details domain.BidConfig `json:"details"`
}

type statusResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

func newStatusResponse(s domain.Status) statusResponse {
	return statusResponse{ID: s.ID, Name: s.Name, Code: s.Code, Description: s.Description}
}

type retailBidResponse struct {
	ID              int64           `json:"id"`
	BidID           int64           `json:"bidId"`
	UserID          int64           `json:"userId"`
	SubmittedAmount decimal.Decimal `json:"submittedAmount"`
	SeatBooked      int             `json:"seatBooked"`
	StatusID        int64           `json:"statusId"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	StatusInfo      *statusResponse `json:"statusInfo,omitempty"`
	User            *userResponse   `json:"user,omitempty"`
	BidDetails      *bidResponse    `json:"bidDetails,omitempty"`
}

func newRetailBidResponse(rb domain.RetailBid) retailBidResponse {
	return retailBidResponse{
		ID:              rb.ID,
		BidID:           rb.BidID,
		UserID:          rb.UserID,
		SubmittedAmount: rb.SubmittedAmount,
		SeatBooked:      rb.SeatBooked,
		StatusID:        rb.StatusID,
		CreatedAt:       rb.CreatedAt,
		UpdatedAt:       rb.UpdatedAt,
	}
}

type userResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type paymentResponse struct {
	ID               int64           `json:"id"`
	UserID           int64           `json:"userId"`
	RetailBidID      int64           `json:"retailBidId"`
	PaymentReference string          `json:"paymentReference"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	PaymentMethod    string          `json:"paymentMethod"`
	StatusID         int64           `json:"statusId"`
	CreatedAt        time.Time       `json:"createdAt"`
}

func newPaymentResponse(p domain.BidPayment) paymentResponse {
	return paymentResponse{
		ID:               p.ID,
		UserID:           p.UserID,
		RetailBidID:      p.RetailBidID,
		PaymentReference: p.PaymentReference,
		Amount:           p.Amount,
		Currency:         p.Currency,
		PaymentMethod:    p.PaymentMethod,
		StatusID:         p.StatusID,
		CreatedAt:        p.CreatedAt,
	}
}

func newRetailBidViews(views []domain.RetailBidView) []retailBidResponse {
	out := make([]retailBidResponse, 0, len(views))
	for _, v := range views {
		resp := newRetailBidResponse(v.RetailBid)
		if v.StatusInfo != nil {
			s := newStatusResponse(*v.StatusInfo)
			resp.StatusInfo = &s
		}
		if v.User != nil {
			resp.User = &userResponse{ID: v.User.ID, Name: v.User.Name, Email: v.User.Email}
		}
		out = append(out, resp)
	}
	return out
}

func newPaymentResponses(payments []domain.BidPayment) []paymentResponse {
	out := make([]paymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, newPaymentResponse(p))
	}
	return out
}
