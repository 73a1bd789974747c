package bids

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/avialine/groupfare/internal/domain"
	"github.com/avialine/groupfare/internal/kafka"
	"github.com/avialine/groupfare/internal/repository"
	"github.com/shopspring/decimal"
)

type BidUseCase interface {
	CreateBid(ctx context.Context, input CreateBidInput) (*domain.Bid, error)
	GetBidWithDetails(ctx context.Context, bidID int64) (*domain.BidDetails, error)
	ListBids(ctx context.Context) ([]domain.Bid, error)
	ExpireOldBids(ctx context.Context) (domain.SweepResult, error)
}

type Cache interface {
	GetBids(ctx context.Context) ([]domain.Bid, error)
	SetBids(ctx context.Context, bids []domain.Bid) error
	InvalidateBids(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type StatusResolver interface {
	ByCode(ctx context.Context, code string) (int64, error)
	ByID(ctx context.Context, id int64) (*domain.Status, error)
}

const (
	defaultTotalSeats = 100
	defaultMinSeats   = 1
	defaultMaxSeats   = 10
)

type BidService struct {
	bids      repository.BidRepository
	retail    repository.RetailBidRepository
	payments  repository.PaymentRepository
	users     repository.UserRepository
	statuses  StatusResolver
	cache     Cache
	producer  Producer
	bidsTopic string
}

type CreateBidInput struct {
	BidAmount           decimal.Decimal
	ValidUntil          time.Time
	Notes               string
	TotalSeatsAvailable int
	MinSeatsPerBid      int
	MaxSeatsPerBid      int
	FlightID            *int64
}

type BidServiceOption func(*BidService)

func WithCache(cache Cache) BidServiceOption {
	return func(s *BidService) { s.cache = cache }
}

func WithProducer(producer Producer, topic string) BidServiceOption {
	return func(s *BidService) {
		s.producer = producer
		s.bidsTopic = topic
	}
}

func NewBidService(
	bids repository.BidRepository,
	retail repository.RetailBidRepository,
	payments repository.PaymentRepository,
	users repository.UserRepository,
	statuses StatusResolver,
	opts ...BidServiceOption,
) *BidService {
	service := &BidService{
		bids:     bids,
		retail:   retail,
		payments: payments,
		users:    users,
		statuses: statuses,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BidService) CreateBid(ctx context.Context, input CreateBidInput) (*domain.Bid, error) {
	if input.BidAmount.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("bid amount must be positive")
	}
	if input.ValidUntil.IsZero() {
		return nil, errors.New("valid until is required")
	}

	// New bids go through the registry like every other status consumer;
	// nothing assumes a fixed numeric ID.
	activeID, err := s.statuses.ByCode(ctx, domain.StatusCodeActive)
	if err != nil {
		return nil, err
	}

	bid := &domain.Bid{
		BidAmount:           input.BidAmount,
		ValidUntil:          input.ValidUntil,
		Notes:               input.Notes,
		TotalSeatsAvailable: input.TotalSeatsAvailable,
		MinSeatsPerBid:      input.MinSeatsPerBid,
		MaxSeatsPerBid:      input.MaxSeatsPerBid,
		StatusID:            activeID,
		FlightID:            input.FlightID,
	}
	if bid.TotalSeatsAvailable <= 0 {
		bid.TotalSeatsAvailable = defaultTotalSeats
	}
	if bid.MinSeatsPerBid <= 0 {
		bid.MinSeatsPerBid = defaultMinSeats
	}
	if bid.MaxSeatsPerBid <= 0 {
		bid.MaxSeatsPerBid = defaultMaxSeats
	}

	if err := s.bids.Create(ctx, bid); err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.InvalidateBids(ctx)
	}
	s.publish(ctx, kafka.BidEvent{Type: "bid_created", BidID: bid.ID, Amount: bid.BidAmount, OccurredAt: time.Now()})
	return bid, nil
}

// GetBidWithDetails is the central read for every display surface. Seat math
// is computed here once: available = max(0, total - booked), where booked
// sums seatBooked over submissions that still hold seats.
func (s *BidService) GetBidWithDetails(ctx context.Context, bidID int64) (*domain.BidDetails, error) {
	bid, err := s.bids.GetByID(ctx, bidID)
	if err != nil {
		return nil, err
	}

	exclude, err := s.nonHoldingStatusIDs(ctx)
	if err != nil {
		return nil, err
	}

	booked, err := s.bids.SumBookedSeats(ctx, bidID, exclude)
	if err != nil {
		return nil, err
	}
	available := bid.TotalSeatsAvailable - booked
	if available < 0 {
		available = 0
	}

	submissions, err := s.retail.ListByBid(ctx, bidID)
	if err != nil {
		return nil, err
	}

	views, err := s.enrichSubmissions(ctx, submissions)
	if err != nil {
		return nil, err
	}

	payments, err := s.payments.ListByBid(ctx, bidID)
	if err != nil {
		return nil, err
	}

	return &domain.BidDetails{
		Bid:                 *bid,
		Config:              domain.ParseBidConfig(bid.Notes),
		TotalSeatsAvailable: bid.TotalSeatsAvailable,
		BookedSeats:         booked,
		AvailableSeats:      available,
		RetailBids:          views,
		Payments:            payments,
	}, nil
}

func (s *BidService) ListBids(ctx context.Context) ([]domain.Bid, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetBids(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	bids, err := s.bids.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetBids(ctx, bids)
	}
	return bids, nil
}

// ExpireOldBids transitions every active bid whose flight has departed to
// Expired, stamping the reason into the notes document. One row's failure is
// logged and skipped; the aggregate counts successes only. Re-running is a
// no-op for already expired rows because of the status filter.
func (s *BidService) ExpireOldBids(ctx context.Context) (domain.SweepResult, error) {
	activeID, err := s.statuses.ByCode(ctx, domain.StatusCodeActive)
	if err != nil {
		return domain.SweepResult{}, err
	}
	expiredID, err := s.statuses.ByCode(ctx, domain.StatusCodeExpired)
	if err != nil {
		return domain.SweepResult{}, err
	}

	now := time.Now()
	departed, err := s.bids.ListActiveDeparted(ctx, activeID, now)
	if err != nil {
		return domain.SweepResult{}, err
	}

	updated := 0
	for _, bid := range departed {
		notes := domain.ExpireNotes(bid.Notes, now)
		if err := s.bids.MarkExpired(ctx, bid.ID, expiredID, notes); err != nil {
			log.Printf("expire bid %d: %v", bid.ID, err)
			continue
		}
		updated++
		s.publish(ctx, kafka.BidEvent{Type: "bid_expired", BidID: bid.ID, StatusCode: domain.StatusCodeExpired, OccurredAt: now})
	}

	if updated > 0 && s.cache != nil {
		_ = s.cache.InvalidateBids(ctx)
	}

	return domain.SweepResult{
		Success:      true,
		Message:      fmt.Sprintf("expired %d of %d departed bids", updated, len(departed)),
		UpdatedCount: updated,
	}, nil
}

// nonHoldingStatusIDs resolves the submission statuses that release seats:
// rejected requests and expired leftovers.
func (s *BidService) nonHoldingStatusIDs(ctx context.Context) ([]int64, error) {
	rejectedID, err := s.statuses.ByCode(ctx, domain.StatusCodeRejected)
	if err != nil {
		return nil, err
	}
	expiredID, err := s.statuses.ByCode(ctx, domain.StatusCodeExpired)
	if err != nil {
		return nil, err
	}
	return []int64{rejectedID, expiredID}, nil
}

func (s *BidService) enrichSubmissions(ctx context.Context, submissions []domain.RetailBid) ([]domain.RetailBidView, error) {
	userIDs := make([]int64, 0, len(submissions))
	for _, rb := range submissions {
		userIDs = append(userIDs, rb.UserID)
	}
	users, err := s.users.ListByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	views := make([]domain.RetailBidView, 0, len(submissions))
	for _, rb := range submissions {
		view := domain.RetailBidView{RetailBid: rb}
		if info, err := s.statuses.ByID(ctx, rb.StatusID); err == nil {
			view.StatusInfo = info
		}
		if u, ok := users[rb.UserID]; ok {
			user := u
			view.User = &user
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *BidService) publish(ctx context.Context, event kafka.BidEvent) {
	if s.producer == nil || s.bidsTopic == "" {
		return
	}
	if err := s.producer.Publish(ctx, s.bidsTopic, strconv.FormatInt(event.BidID, 10), event); err != nil {
		log.Printf("publish %s event for bid %d: %v", event.Type, event.BidID, err)
	}
}

var _ BidUseCase = (*BidService)(nil)
