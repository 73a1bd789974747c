package repository

import (
	"context"
	"errors"

	"github.com/avialine/groupfare/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RetailBidRepository interface {
	// CreateChecked inserts the submission after re-validating seat capacity
	// under a row lock on the parent bid.
	CreateChecked(ctx context.Context, rb *domain.RetailBid, excludeStatusIDs []int64) error
	GetByID(ctx context.Context, id int64) (*domain.RetailBid, error)
	ListByBid(ctx context.Context, bidID int64) ([]domain.RetailBid, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.RetailBid, error)
	LatestByBidAndUser(ctx context.Context, bidID, userID int64) (*domain.RetailBid, error)
	UpdateStatus(ctx context.Context, id, statusID int64) (*domain.RetailBid, error)
	// SetDecisionWithCascade updates the submission status and, when
	// cascadePaymentStatusID is non-nil, every payment of the submission in
	// the same transaction.
	SetDecisionWithCascade(ctx context.Context, id, statusID int64, cascadePaymentStatusID *int64) (*domain.RetailBid, error)
}

type PGRetailBidRepository struct {
	db *pgxpool.Pool
}

func NewRetailBidRepository(db *pgxpool.Pool) RetailBidRepository {
	return &PGRetailBidRepository{db: db}
}

const retailBidColumns = `id, bid_id, user_id, submitted_amount, seat_booked, status_id, created_at, updated_at`

func scanRetailBid(row pgx.Row) (*domain.RetailBid, error) {
	var rb domain.RetailBid
	if err := row.Scan(&rb.ID, &rb.BidID, &rb.UserID, &rb.SubmittedAmount, &rb.SeatBooked,
		&rb.StatusID, &rb.CreatedAt, &rb.UpdatedAt); err != nil {
		return nil, err
	}
	return &rb, nil
}

func (r *PGRetailBidRepository) CreateChecked(ctx context.Context, rb *domain.RetailBid, excludeStatusIDs []int64) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var total int
	if err := tx.QueryRow(ctx,
		`SELECT total_seats_available FROM bids WHERE id=$1 FOR UPDATE`, rb.BidID).Scan(&total); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrBidNotFound
		}
		return err
	}

	if excludeStatusIDs == nil {
		excludeStatusIDs = []int64{}
	}
	var booked int
	if err := tx.QueryRow(ctx,
		`SELECT COALESCE(SUM(seat_booked), 0) FROM retail_bids WHERE bid_id=$1 AND NOT (status_id = ANY($2))`,
		rb.BidID, excludeStatusIDs).Scan(&booked); err != nil {
		return err
	}
	if total-booked < rb.SeatBooked {
		return domain.ErrNotEnoughSeats
	}

	if err := tx.QueryRow(ctx,
		`INSERT INTO retail_bids (bid_id, user_id, submitted_amount, seat_booked, status_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		rb.BidID, rb.UserID, rb.SubmittedAmount, rb.SeatBooked, rb.StatusID).
		Scan(&rb.ID, &rb.CreatedAt, &rb.UpdatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGRetailBidRepository) GetByID(ctx context.Context, id int64) (*domain.RetailBid, error) {
	rb, err := scanRetailBid(r.db.QueryRow(ctx, `SELECT `+retailBidColumns+` FROM retail_bids WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSubmissionNotFound
	}
	return rb, err
}

func (r *PGRetailBidRepository) ListByBid(ctx context.Context, bidID int64) ([]domain.RetailBid, error) {
	return r.list(ctx, `SELECT `+retailBidColumns+` FROM retail_bids WHERE bid_id=$1 ORDER BY created_at`, bidID)
}

func (r *PGRetailBidRepository) ListByUser(ctx context.Context, userID int64) ([]domain.RetailBid, error) {
	return r.list(ctx, `SELECT `+retailBidColumns+` FROM retail_bids WHERE user_id=$1 ORDER BY created_at DESC`, userID)
}

func (r *PGRetailBidRepository) list(ctx context.Context, query string, arg any) ([]domain.RetailBid, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.RetailBid, 0)
	for rows.Next() {
		rb, err := scanRetailBid(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rb)
	}
	return out, rows.Err()
}

func (r *PGRetailBidRepository) LatestByBidAndUser(ctx context.Context, bidID, userID int64) (*domain.RetailBid, error) {
	rb, err := scanRetailBid(r.db.QueryRow(ctx,
		`SELECT `+retailBidColumns+` FROM retail_bids WHERE bid_id=$1 AND user_id=$2 ORDER BY created_at DESC LIMIT 1`,
		bidID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSubmissionNotFound
	}
	return rb, err
}

func (r *PGRetailBidRepository) UpdateStatus(ctx context.Context, id, statusID int64) (*domain.RetailBid, error) {
	rb, err := scanRetailBid(r.db.QueryRow(ctx,
		`UPDATE retail_bids SET status_id=$1, updated_at=now() WHERE id=$2 RETURNING `+retailBidColumns,
		statusID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSubmissionNotFound
	}
	return rb, err
}

func (r *PGRetailBidRepository) SetDecisionWithCascade(ctx context.Context, id, statusID int64, cascadePaymentStatusID *int64) (*domain.RetailBid, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	rb, err := scanRetailBid(tx.QueryRow(ctx,
		`UPDATE retail_bids SET status_id=$1, updated_at=now() WHERE id=$2 RETURNING `+retailBidColumns,
		statusID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSubmissionNotFound
		}
		return nil, err
	}

	if cascadePaymentStatusID != nil {
		if _, err := tx.Exec(ctx,
			`UPDATE bid_payments SET status_id=$1 WHERE retail_bid_id=$2`,
			*cascadePaymentStatusID, id); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return rb, nil
}

var _ RetailBidRepository = (*PGRetailBidRepository)(nil)
