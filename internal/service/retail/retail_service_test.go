package retail

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/avialine/groupfare/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockBidRepository struct {
	mock.Mock
}

func (m *MockBidRepository) Create(ctx context.Context, bid *domain.Bid) error {
	args := m.Called(ctx, bid)
	return args.Error(0)
}

func (m *MockBidRepository) GetByID(ctx context.Context, id int64) (*domain.Bid, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bid), args.Error(1)
}

func (m *MockBidRepository) List(ctx context.Context) ([]domain.Bid, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Bid), args.Error(1)
}

func (m *MockBidRepository) SumBookedSeats(ctx context.Context, bidID int64, excludeStatusIDs []int64) (int, error) {
	args := m.Called(ctx, bidID, excludeStatusIDs)
	return args.Int(0), args.Error(1)
}

func (m *MockBidRepository) ListActiveDeparted(ctx context.Context, activeStatusID int64, deadline time.Time) ([]domain.Bid, error) {
	args := m.Called(ctx, activeStatusID, deadline)
	return args.Get(0).([]domain.Bid), args.Error(1)
}

func (m *MockBidRepository) MarkExpired(ctx context.Context, bidID, expiredStatusID int64, notes string) error {
	args := m.Called(ctx, bidID, expiredStatusID, notes)
	return args.Error(0)
}

type MockRetailBidRepository struct {
	mock.Mock
}

func (m *MockRetailBidRepository) CreateChecked(ctx context.Context, rb *domain.RetailBid, excludeStatusIDs []int64) error {
	args := m.Called(ctx, rb, excludeStatusIDs)
	return args.Error(0)
}

func (m *MockRetailBidRepository) GetByID(ctx context.Context, id int64) (*domain.RetailBid, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RetailBid), args.Error(1)
}

func (m *MockRetailBidRepository) ListByBid(ctx context.Context, bidID int64) ([]domain.RetailBid, error) {
	args := m.Called(ctx, bidID)
	return args.Get(0).([]domain.RetailBid), args.Error(1)
}

func (m *MockRetailBidRepository) ListByUser(ctx context.Context, userID int64) ([]domain.RetailBid, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.RetailBid), args.Error(1)
}

func (m *MockRetailBidRepository) LatestByBidAndUser(ctx context.Context, bidID, userID int64) (*domain.RetailBid, error) {
	args := m.Called(ctx, bidID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RetailBid), args.Error(1)
}

func (m *MockRetailBidRepository) UpdateStatus(ctx context.Context, id, statusID int64) (*domain.RetailBid, error) {
	args := m.Called(ctx, id, statusID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RetailBid), args.Error(1)
}

func (m *MockRetailBidRepository) SetDecisionWithCascade(ctx context.Context, id, statusID int64, cascadePaymentStatusID *int64) (*domain.RetailBid, error) {
	args := m.Called(ctx, id, statusID, cascadePaymentStatusID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RetailBid), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) CreateWithStatusAdvance(ctx context.Context, p *domain.BidPayment, submissionStatusID int64) error {
	args := m.Called(ctx, p, submissionStatusID)
	return args.Error(0)
}

func (m *MockPaymentRepository) ListByRetailBid(ctx context.Context, retailBidID int64) ([]domain.BidPayment, error) {
	args := m.Called(ctx, retailBidID)
	return args.Get(0).([]domain.BidPayment), args.Error(1)
}

func (m *MockPaymentRepository) ListByBid(ctx context.Context, bidID int64) ([]domain.BidPayment, error) {
	args := m.Called(ctx, bidID)
	return args.Get(0).([]domain.BidPayment), args.Error(1)
}

type stubStatuses struct {
	byCode map[string]int64
}

func testStatuses() stubStatuses {
	return stubStatuses{byCode: map[string]int64{
		domain.StatusCodeSubmitted:   1,
		domain.StatusCodeUnderReview: 2,
		domain.StatusCodeApproved:    3,
		domain.StatusCodeRejected:    4,
		domain.StatusCodeCompleted:   5,
		domain.StatusCodeActive:      6,
		domain.StatusCodeExpired:     7,
		domain.StatusCodeProcessing:  8,
	}}
}

func (s stubStatuses) ByCode(ctx context.Context, code string) (int64, error) {
	id, ok := s.byCode[code]
	if !ok {
		return 0, domain.ErrStatusConfigMissing
	}
	return id, nil
}

func (s stubStatuses) ByID(ctx context.Context, id int64) (*domain.Status, error) {
	for code, sid := range s.byCode {
		if sid == id {
			return &domain.Status{ID: id, Code: code, Name: code}, nil
		}
	}
	return nil, domain.ErrStatusNotFound
}

func activeBid() *domain.Bid {
	return &domain.Bid{
		ID:                  1,
		TotalSeatsAvailable: 10,
		MinSeatsPerBid:      1,
		MaxSeatsPerBid:      10,
		StatusID:            6,
		ValidUntil:          time.Now().Add(24 * time.Hour),
	}
}

func newTestService(bidRepo *MockBidRepository, retailRepo *MockRetailBidRepository, paymentRepo *MockPaymentRepository, opts ...RetailServiceOption) *RetailService {
	return NewRetailService(bidRepo, retailRepo, paymentRepo, testStatuses(), opts...)
}

func TestRetailService_Submit_Success(t *testing.T) {
	bidRepo := &MockBidRepository{}
	retailRepo := &MockRetailBidRepository{}
	service := newTestService(bidRepo, retailRepo, &MockPaymentRepository{})

	bidRepo.On("GetByID", mock.Anything, int64(1)).Return(activeBid(), nil)
	retailRepo.On("CreateChecked", mock.Anything, mock.AnythingOfType("*domain.RetailBid"), []int64{4, 7}).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.RetailBid).ID = 11
		}).Return(nil)

	rb, err := service.Submit(context.Background(), SubmitInput{
		BidID:           1,
		UserID:          7,
		SubmittedAmount: decimal.NewFromInt(450),
		SeatBooked:      4,
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(11), rb.ID)
	assert.Equal(t, int64(1), rb.StatusID)
	retailRepo.AssertExpectations(t)
}

func TestRetailService_Submit_NotEnoughSeats(t *testing.T) {
	bidRepo := &MockBidRepository{}
	retailRepo := &MockRetailBidRepository{}
	service := newTestService(bidRepo, retailRepo, &MockPaymentRepository{})

	bidRepo.On("GetByID", mock.Anything, int64(1)).Return(activeBid(), nil)
	retailRepo.On("CreateChecked", mock.Anything, mock.Anything, mock.Anything).Return(domain.ErrNotEnoughSeats)

	_, err := service.Submit(context.Background(), SubmitInput{
		BidID:           1,
		UserID:          7,
		SubmittedAmount: decimal.NewFromInt(450),
		SeatBooked:      7,
	})

	assert.ErrorIs(t, err, domain.ErrNotEnoughSeats)
}

func TestRetailService_Submit_BidNotFound(t *testing.T) {
	bidRepo := &MockBidRepository{}
	retailRepo := &MockRetailBidRepository{}
	service := newTestService(bidRepo, retailRepo, &MockPaymentRepository{})

	bidRepo.On("GetByID", mock.Anything, int64(99)).Return(nil, domain.ErrBidNotFound)

	_, err := service.Submit(context.Background(), SubmitInput{
		BidID:           99,
		UserID:          7,
		SubmittedAmount: decimal.NewFromInt(450),
		SeatBooked:      1,
	})

	assert.ErrorIs(t, err, domain.ErrBidNotFound)
	retailRepo.AssertNotCalled(t, "CreateChecked")
}

func TestRetailService_Submit_ExpiredBid(t *testing.T) {
	bidRepo := &MockBidRepository{}
	retailRepo := &MockRetailBidRepository{}
	service := newTestService(bidRepo, retailRepo, &MockPaymentRepository{})

	expired := activeBid()
	expired.StatusID = 7
	bidRepo.On("GetByID", mock.Anything, int64(1)).Return(expired, nil)

	_, err := service.Submit(context.Background(), SubmitInput{
		BidID:           1,
		UserID:          7,
		SubmittedAmount: decimal.NewFromInt(450),
		SeatBooked:      1,
	})

	assert.ErrorIs(t, err, domain.ErrBidExpired)
	retailRepo.AssertNotCalled(t, "CreateChecked")
}

func TestRetailService_Submit_PastValidUntil(t *testing.T) {
	bidRepo := &MockBidRepository{}
	retailRepo := &MockRetailBidRepository{}
	service := newTestService(bidRepo, retailRepo, &MockPaymentRepository{})

	stale := activeBid()
	stale.ValidUntil = time.Now().Add(-time.Hour)
	bidRepo.On("GetByID", mock.Anything, int64(1)).Return(stale, nil)

	_, err := service.Submit(context.Background(), SubmitInput{
		BidID:           1,
		UserID:          7,
		SubmittedAmount: decimal.NewFromInt(450),
		SeatBooked:      1,
	})

	assert.ErrorIs(t, err, domain.ErrBidExpired)
}

func TestRetailService_Submit_SeatsOutOfRange(t *testing.T) {
	bidRepo := &MockBidRepository{}
	retailRepo := &MockRetailBidRepository{}
	service := newTestService(bidRepo, retailRepo, &MockPaymentRepository{})

	bid := activeBid()
	bid.MaxSeatsPerBid = 5
	bidRepo.On("GetByID", mock.Anything, int64(1)).Return(bid, nil)

	_, err := service.Submit(context.Background(), SubmitInput{
		BidID:           1,
		UserID:          7,
		SubmittedAmount: decimal.NewFromInt(450),
		SeatBooked:      6,
	})

	assert.ErrorIs(t, err, domain.ErrSeatsOutOfRange)
}

func TestRetailService_CreatePayment_AdvancesSubmission(t *testing.T) {
	bidRepo := &MockBidRepository{}
	retailRepo := &MockRetailBidRepository{}
	paymentRepo := &MockPaymentRepository{}
	service := newTestService(bidRepo, retailRepo, paymentRepo)

	retailRepo.On("LatestByBidAndUser", mock.Anything, int64(1), int64(7)).Return(&domain.RetailBid{ID: 11, BidID: 1, UserID: 7}, nil)
	paymentRepo.On("CreateWithStatusAdvance", mock.Anything, mock.AnythingOfType("*domain.BidPayment"), int64(2)).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.BidPayment).ID = 21
		}).Return(nil)

	payment, err := service.CreatePayment(context.Background(), PaymentInput{
		BidID:         1,
		UserID:        7,
		Amount:        decimal.NewFromInt(50),
		PaymentMethod: "creditCard",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(21), payment.ID)
	assert.Equal(t, int64(11), payment.RetailBidID)
	assert.Equal(t, int64(8), payment.StatusID)
	assert.Equal(t, "USD", payment.Currency)
	assert.Regexp(t, regexp.MustCompile(`^PAY-1-USER7-[0-9A-F]{8}$`), payment.PaymentReference)
	paymentRepo.AssertExpectations(t)
}

func TestRetailService_CreatePayment_NoSubmission(t *testing.T) {
	bidRepo := &MockBidRepository{}
	retailRepo := &MockRetailBidRepository{}
	paymentRepo := &MockPaymentRepository{}
	service := newTestService(bidRepo, retailRepo, paymentRepo)

	retailRepo.On("LatestByBidAndUser", mock.Anything, int64(1), int64(7)).Return(nil, domain.ErrSubmissionNotFound)

	_, err := service.CreatePayment(context.Background(), PaymentInput{
		BidID:         1,
		UserID:        7,
		Amount:        decimal.NewFromInt(50),
		PaymentMethod: "creditCard",
	})

	assert.ErrorIs(t, err, domain.ErrSubmissionNotFound)
	paymentRepo.AssertNotCalled(t, "CreateWithStatusAdvance")
}

func TestNewPaymentReference_Unique(t *testing.T) {
	pattern := regexp.MustCompile(`^PAY-1-USER7-[0-9A-F]{8}$`)
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		ref := newPaymentReference(1, 7)
		assert.Regexp(t, pattern, ref)
		assert.False(t, seen[ref], "duplicate reference %s", ref)
		seen[ref] = true
	}
}

func TestRetailService_CreatePayment_RetriesOnDuplicateReference(t *testing.T) {
	bidRepo := &MockBidRepository{}
	retailRepo := &MockRetailBidRepository{}
	paymentRepo := &MockPaymentRepository{}
	service := newTestService(bidRepo, retailRepo, paymentRepo)

	retailRepo.On("LatestByBidAndUser", mock.Anything, int64(1), int64(7)).Return(&domain.RetailBid{ID: 11, BidID: 1, UserID: 7}, nil)

	var refs []string
	record := func(args mock.Arguments) {
		refs = append(refs, args.Get(1).(*domain.BidPayment).PaymentReference)
	}
	paymentRepo.On("CreateWithStatusAdvance", mock.Anything, mock.AnythingOfType("*domain.BidPayment"), int64(2)).
		Run(record).Return(domain.ErrDuplicateReference).Once()
	paymentRepo.On("CreateWithStatusAdvance", mock.Anything, mock.AnythingOfType("*domain.BidPayment"), int64(2)).
		Run(record).Return(nil).Once()

	payment, err := service.CreatePayment(context.Background(), PaymentInput{
		BidID:         1,
		UserID:        7,
		Amount:        decimal.NewFromInt(50),
		PaymentMethod: "creditCard",
	})

	assert.NoError(t, err)
	assert.Len(t, refs, 2)
	assert.NotEqual(t, refs[0], refs[1], "retry must draw a fresh reference")
	assert.Equal(t, refs[1], payment.PaymentReference)
	paymentRepo.AssertExpectations(t)
}

func TestRetailService_CreatePayment_GivesUpAfterRepeatedCollisions(t *testing.T) {
	bidRepo := &MockBidRepository{}
	retailRepo := &MockRetailBidRepository{}
	paymentRepo := &MockPaymentRepository{}
	service := newTestService(bidRepo, retailRepo, paymentRepo)

	retailRepo.On("LatestByBidAndUser", mock.Anything, int64(1), int64(7)).Return(&domain.RetailBid{ID: 11, BidID: 1, UserID: 7}, nil)
	paymentRepo.On("CreateWithStatusAdvance", mock.Anything, mock.Anything, int64(2)).Return(domain.ErrDuplicateReference)

	_, err := service.CreatePayment(context.Background(), PaymentInput{
		BidID:         1,
		UserID:        7,
		Amount:        decimal.NewFromInt(50),
		PaymentMethod: "creditCard",
	})

	assert.ErrorIs(t, err, domain.ErrDuplicateReference)
	paymentRepo.AssertNumberOfCalls(t, "CreateWithStatusAdvance", 3)
}

func TestRetailService_Decide_ApprovedCascadesPayments(t *testing.T) {
	bidRepo := &MockBidRepository{}
	retailRepo := &MockRetailBidRepository{}
	service := newTestService(bidRepo, retailRepo, &MockPaymentRepository{})

	completedID := int64(5)
	retailRepo.On("SetDecisionWithCascade", mock.Anything, int64(11), int64(3), &completedID).
		Return(&domain.RetailBid{ID: 11, BidID: 1, UserID: 7, StatusID: 3}, nil)

	rb, info, err := service.Decide(context.Background(), 11, "approved", "looks good")

	assert.NoError(t, err)
	assert.Equal(t, int64(3), rb.StatusID)
	assert.Equal(t, domain.StatusCodeApproved, info.Code)
	retailRepo.AssertExpectations(t)
}

func TestRetailService_Decide_RejectedSkipsCascade(t *testing.T) {
	bidRepo := &MockBidRepository{}
	retailRepo := &MockRetailBidRepository{}
	service := newTestService(bidRepo, retailRepo, &MockPaymentRepository{})

	retailRepo.On("SetDecisionWithCascade", mock.Anything, int64(11), int64(4), (*int64)(nil)).
		Return(&domain.RetailBid{ID: 11, StatusID: 4}, nil)

	rb, info, err := service.Decide(context.Background(), 11, "rejected", "")

	assert.NoError(t, err)
	assert.Equal(t, int64(4), rb.StatusID)
	assert.Equal(t, domain.StatusCodeRejected, info.Code)
}

func TestRetailService_Decide_InvalidDecision(t *testing.T) {
	bidRepo := &MockBidRepository{}
	retailRepo := &MockRetailBidRepository{}
	service := newTestService(bidRepo, retailRepo, &MockPaymentRepository{})

	_, _, err := service.Decide(context.Background(), 11, "bogus", "")

	assert.ErrorIs(t, err, domain.ErrInvalidDecision)
	retailRepo.AssertNotCalled(t, "SetDecisionWithCascade")
}

func TestRetailService_Decide_SubmissionNotFound(t *testing.T) {
	bidRepo := &MockBidRepository{}
	retailRepo := &MockRetailBidRepository{}
	service := newTestService(bidRepo, retailRepo, &MockPaymentRepository{})

	retailRepo.On("SetDecisionWithCascade", mock.Anything, int64(404), int64(2), (*int64)(nil)).
		Return(nil, domain.ErrSubmissionNotFound)

	_, _, err := service.Decide(context.Background(), 404, "under_review", "")

	assert.ErrorIs(t, err, domain.ErrSubmissionNotFound)
}

func TestRetailService_MyBids(t *testing.T) {
	bidRepo := &MockBidRepository{}
	retailRepo := &MockRetailBidRepository{}
	service := newTestService(bidRepo, retailRepo, &MockPaymentRepository{})

	retailRepo.On("ListByUser", mock.Anything, int64(7)).Return([]domain.RetailBid{
		{ID: 11, BidID: 1, UserID: 7, StatusID: 2},
	}, nil)
	bidRepo.On("GetByID", mock.Anything, int64(1)).Return(activeBid(), nil)

	views, err := service.MyBids(context.Background(), 7)

	assert.NoError(t, err)
	assert.Len(t, views, 1)
	assert.Equal(t, domain.StatusCodeUnderReview, views[0].StatusInfo.Code)
	assert.Equal(t, int64(1), views[0].BidDetails.ID)
}
