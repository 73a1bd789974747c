package retail

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/avialine/groupfare/internal/domain"
	"github.com/avialine/groupfare/internal/kafka"
	"github.com/avialine/groupfare/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RetailUseCase interface {
	Submit(ctx context.Context, input SubmitInput) (*domain.RetailBid, error)
	MyBids(ctx context.Context, userID int64) ([]domain.UserBidView, error)
	CreatePayment(ctx context.Context, input PaymentInput) (*domain.BidPayment, error)
	Decide(ctx context.Context, retailBidID int64, decision, adminNote string) (*domain.RetailBid, *domain.Status, error)
}

type Cache interface {
	AcquireBidLock(ctx context.Context, bidID, userID int64, ttl time.Duration) (bool, error)
	ReleaseBidLock(ctx context.Context, bidID, userID int64) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type StatusResolver interface {
	ByCode(ctx context.Context, code string) (int64, error)
	ByID(ctx context.Context, id int64) (*domain.Status, error)
}

type SubmitInput struct {
	BidID           int64
	UserID          int64
	SubmittedAmount decimal.Decimal
	SeatBooked      int
}

type PaymentInput struct {
	BidID         int64
	UserID        int64
	Amount        decimal.Decimal
	Currency      string
	PaymentMethod string
}

type RetailService struct {
	bids     repository.BidRepository
	retail   repository.RetailBidRepository
	payments repository.PaymentRepository
	statuses StatusResolver

	cache       Cache
	producer    Producer
	eventsTopic string
	lockTTL     time.Duration

	// Status code payments cascade to when the owning submission is approved.
	approvedPaymentCode string
}

type RetailServiceOption func(*RetailService)

func WithCache(cache Cache, lockTTL time.Duration) RetailServiceOption {
	return func(s *RetailService) {
		s.cache = cache
		s.lockTTL = lockTTL
	}
}

func WithProducer(producer Producer, topic string) RetailServiceOption {
	return func(s *RetailService) {
		s.producer = producer
		s.eventsTopic = topic
	}
}

func WithApprovedPaymentCode(code string) RetailServiceOption {
	return func(s *RetailService) { s.approvedPaymentCode = code }
}

func NewRetailService(
	bids repository.BidRepository,
	retail repository.RetailBidRepository,
	payments repository.PaymentRepository,
	statuses StatusResolver,
	opts ...RetailServiceOption,
) *RetailService {
	service := &RetailService{
		bids:                bids,
		retail:              retail,
		payments:            payments,
		statuses:            statuses,
		lockTTL:             30 * time.Second,
		approvedPaymentCode: domain.StatusCodeCompleted,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Submit records a seat request against a bid. Capacity is re-checked under a
// row lock inside the insert transaction; the redis lock only stops one user
// double-submitting against the same bid.
func (s *RetailService) Submit(ctx context.Context, input SubmitInput) (*domain.RetailBid, error) {
	if input.UserID == 0 {
		return nil, errors.New("user id is required")
	}
	if input.SubmittedAmount.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("submitted amount must be positive")
	}
	if input.SeatBooked <= 0 {
		return nil, errors.New("seat count must be positive")
	}

	bid, err := s.bids.GetByID(ctx, input.BidID)
	if err != nil {
		return nil, err
	}

	expiredID, err := s.statuses.ByCode(ctx, domain.StatusCodeExpired)
	if err != nil {
		return nil, err
	}
	if bid.StatusID == expiredID || bid.ValidUntil.Before(time.Now()) {
		return nil, domain.ErrBidExpired
	}
	if input.SeatBooked < bid.MinSeatsPerBid || input.SeatBooked > bid.MaxSeatsPerBid {
		return nil, domain.ErrSeatsOutOfRange
	}

	submittedID, err := s.statuses.ByCode(ctx, domain.StatusCodeSubmitted)
	if err != nil {
		return nil, err
	}
	exclude, err := s.nonHoldingStatusIDs(ctx, expiredID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		ok, err := s.cache.AcquireBidLock(ctx, input.BidID, input.UserID, s.lockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.New("a submission for this bid is already in progress")
		}
		defer func() { _ = s.cache.ReleaseBidLock(ctx, input.BidID, input.UserID) }()
	}

	rb := &domain.RetailBid{
		BidID:           input.BidID,
		UserID:          input.UserID,
		SubmittedAmount: input.SubmittedAmount,
		SeatBooked:      input.SeatBooked,
		StatusID:        submittedID,
	}
	if err := s.retail.CreateChecked(ctx, rb, exclude); err != nil {
		return nil, err
	}

	s.publish(ctx, kafka.BidEvent{
		Type:        "retail_bid_submitted",
		BidID:       rb.BidID,
		RetailBidID: rb.ID,
		UserID:      rb.UserID,
		SeatBooked:  rb.SeatBooked,
		Amount:      rb.SubmittedAmount,
		OccurredAt:  time.Now(),
	})
	return rb, nil
}

func (s *RetailService) MyBids(ctx context.Context, userID int64) ([]domain.UserBidView, error) {
	submissions, err := s.retail.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]domain.UserBidView, 0, len(submissions))
	for _, rb := range submissions {
		view := domain.UserBidView{RetailBid: rb}
		if info, err := s.statuses.ByID(ctx, rb.StatusID); err == nil {
			view.StatusInfo = info
		}
		if bid, err := s.bids.GetByID(ctx, rb.BidID); err == nil {
			view.BidDetails = bid
		}
		views = append(views, view)
	}
	return views, nil
}

// CreatePayment records a deposit for the user's latest submission against
// the bid and advances that submission to Under Review in one transaction.
func (s *RetailService) CreatePayment(ctx context.Context, input PaymentInput) (*domain.BidPayment, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("amount must be positive")
	}
	if input.PaymentMethod == "" {
		return nil, errors.New("payment method is required")
	}

	sub, err := s.retail.LatestByBidAndUser(ctx, input.BidID, input.UserID)
	if err != nil {
		return nil, err
	}

	processingID, err := s.statuses.ByCode(ctx, domain.StatusCodeProcessing)
	if err != nil {
		return nil, err
	}
	underReviewID, err := s.statuses.ByCode(ctx, domain.StatusCodeUnderReview)
	if err != nil {
		return nil, err
	}

	currency := input.Currency
	if currency == "" {
		currency = "USD"
	}

	payment := &domain.BidPayment{
		UserID:        input.UserID,
		RetailBidID:   sub.ID,
		Amount:        input.Amount,
		Currency:      currency,
		PaymentMethod: input.PaymentMethod,
		StatusID:      processingID,
	}
	// Reference uniqueness is enforced by the database; on the rare collision
	// a fresh suffix is drawn and the insert retried.
	for attempt := 0; ; attempt++ {
		payment.PaymentReference = newPaymentReference(input.BidID, input.UserID)
		err = s.payments.CreateWithStatusAdvance(ctx, payment, underReviewID)
		if !errors.Is(err, domain.ErrDuplicateReference) || attempt == maxReferenceAttempts-1 {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	s.publish(ctx, kafka.BidEvent{
		Type:             "payment_recorded",
		BidID:            input.BidID,
		RetailBidID:      sub.ID,
		UserID:           input.UserID,
		Amount:           payment.Amount,
		PaymentReference: payment.PaymentReference,
		OccurredAt:       time.Now(),
	})
	return payment, nil
}

// Decide applies an admin decision to a submission. Approving also cascades
// the submission's payments to the configured target status, in the same
// transaction as the submission update.
func (s *RetailService) Decide(ctx context.Context, retailBidID int64, decision, adminNote string) (*domain.RetailBid, *domain.Status, error) {
	code, ok := decisionCode(decision)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", domain.ErrInvalidDecision, decision)
	}

	statusID, err := s.statuses.ByCode(ctx, code)
	if err != nil {
		return nil, nil, err
	}

	var cascadeID *int64
	if code == domain.StatusCodeApproved {
		id, err := s.statuses.ByCode(ctx, s.approvedPaymentCode)
		if err != nil {
			return nil, nil, err
		}
		cascadeID = &id
	}

	rb, err := s.retail.SetDecisionWithCascade(ctx, retailBidID, statusID, cascadeID)
	if err != nil {
		return nil, nil, err
	}

	info, err := s.statuses.ByID(ctx, rb.StatusID)
	if err != nil {
		return nil, nil, err
	}

	if adminNote != "" {
		log.Printf("decision %s on retail bid %d: %s", decision, retailBidID, adminNote)
	}
	s.publish(ctx, kafka.BidEvent{
		Type:        "retail_bid_" + decision,
		BidID:       rb.BidID,
		RetailBidID: rb.ID,
		UserID:      rb.UserID,
		StatusCode:  code,
		OccurredAt:  time.Now(),
	})
	return rb, info, nil
}

func decisionCode(decision string) (string, bool) {
	switch decision {
	case "approved":
		return domain.StatusCodeApproved, true
	case "rejected":
		return domain.StatusCodeRejected, true
	case "under_review":
		return domain.StatusCodeUnderReview, true
	default:
		return "", false
	}
}

// maxReferenceAttempts bounds the regenerate-and-retry loop when a payment
// reference collides with an existing row.
const maxReferenceAttempts = 3

// newPaymentReference builds PAY-<bidID>-USER<userID>-<suffix> with a random
// uppercase 8-hex-char suffix. The 32 bits of v4 UUID entropy make collisions
// within one (bid, user) pair practically impossible; the database unique
// constraint plus the retry in CreatePayment catch the rest.
func newPaymentReference(bidID, userID int64) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("PAY-%d-USER%d-%s", bidID, userID, suffix)
}

func (s *RetailService) nonHoldingStatusIDs(ctx context.Context, expiredID int64) ([]int64, error) {
	rejectedID, err := s.statuses.ByCode(ctx, domain.StatusCodeRejected)
	if err != nil {
		return nil, err
	}
	return []int64{rejectedID, expiredID}, nil
}

func (s *RetailService) publish(ctx context.Context, event kafka.BidEvent) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	if err := s.producer.Publish(ctx, s.eventsTopic, strconv.FormatInt(event.RetailBidID, 10), event); err != nil {
		log.Printf("publish %s event for retail bid %d: %v", event.Type, event.RetailBidID, err)
	}
}

var _ RetailUseCase = (*RetailService)(nil)
