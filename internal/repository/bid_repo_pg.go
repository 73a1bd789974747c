package repository

import (
	"context"
	"errors"
	"time"

	"github.com/avialine/groupfare/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BidRepository interface {
	Create(ctx context.Context, bid *domain.Bid) error
	GetByID(ctx context.Context, id int64) (*domain.Bid, error)
	List(ctx context.Context) ([]domain.Bid, error)
	SumBookedSeats(ctx context.Context, bidID int64, excludeStatusIDs []int64) (int, error)
	ListActiveDeparted(ctx context.Context, activeStatusID int64, deadline time.Time) ([]domain.Bid, error)
	MarkExpired(ctx context.Context, bidID, expiredStatusID int64, notes string) error
}

type PGBidRepository struct {
	db *pgxpool.Pool
}

func NewBidRepository(db *pgxpool.Pool) BidRepository {
	return &PGBidRepository{db: db}
}

const bidColumns = `id, bid_amount, valid_until, notes, total_seats_available, min_seats_per_bid, max_seats_per_bid, status_id, flight_id, created_at, updated_at`

func scanBid(row pgx.Row) (*domain.Bid, error) {
	var b domain.Bid
	if err := row.Scan(&b.ID, &b.BidAmount, &b.ValidUntil, &b.Notes, &b.TotalSeatsAvailable,
		&b.MinSeatsPerBid, &b.MaxSeatsPerBid, &b.StatusID, &b.FlightID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PGBidRepository) Create(ctx context.Context, bid *domain.Bid) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO bids (bid_amount, valid_until, notes, total_seats_available, min_seats_per_bid, max_seats_per_bid, status_id, flight_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		bid.BidAmount, bid.ValidUntil, bid.Notes, bid.TotalSeatsAvailable,
		bid.MinSeatsPerBid, bid.MaxSeatsPerBid, bid.StatusID, bid.FlightID).
		Scan(&bid.ID, &bid.CreatedAt, &bid.UpdatedAt)
}

func (r *PGBidRepository) GetByID(ctx context.Context, id int64) (*domain.Bid, error) {
	b, err := scanBid(r.db.QueryRow(ctx, `SELECT `+bidColumns+` FROM bids WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBidNotFound
	}
	return b, err
}

func (r *PGBidRepository) List(ctx context.Context) ([]domain.Bid, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bidColumns+` FROM bids ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bids := make([]domain.Bid, 0)
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		bids = append(bids, *b)
	}
	return bids, rows.Err()
}

// SumBookedSeats totals seat_booked over the bid's submissions, excluding the
// given status IDs (rejected and expired requests do not hold seats).
func (r *PGBidRepository) SumBookedSeats(ctx context.Context, bidID int64, excludeStatusIDs []int64) (int, error) {
	if excludeStatusIDs == nil {
		excludeStatusIDs = []int64{}
	}
	var sum int
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(seat_booked), 0) FROM retail_bids WHERE bid_id=$1 AND NOT (status_id = ANY($2))`,
		bidID, excludeStatusIDs).Scan(&sum)
	return sum, err
}

func (r *PGBidRepository) ListActiveDeparted(ctx context.Context, activeStatusID int64, deadline time.Time) ([]domain.Bid, error) {
	rows, err := r.db.Query(ctx,
		`SELECT b.id, b.bid_amount, b.valid_until, b.notes, b.total_seats_available, b.min_seats_per_bid, b.max_seats_per_bid, b.status_id, b.flight_id, b.created_at, b.updated_at
		 FROM bids b
		 JOIN flights f ON f.id = b.flight_id
		 WHERE b.status_id = $1 AND f.departure_time < $2`,
		activeStatusID, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bids := make([]domain.Bid, 0)
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		bids = append(bids, *b)
	}
	return bids, rows.Err()
}

func (r *PGBidRepository) MarkExpired(ctx context.Context, bidID, expiredStatusID int64, notes string) error {
	cmd, err := r.db.Exec(ctx,
		`UPDATE bids SET status_id=$1, notes=$2, updated_at=now() WHERE id=$3`,
		expiredStatusID, notes, bidID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrBidNotFound
	}
	return nil
}

var _ BidRepository = (*PGBidRepository)(nil)
