package repository

import (
	"context"
	"errors"

	"github.com/avialine/groupfare/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRepository interface {
	// CreateWithStatusAdvance inserts the payment and moves the owning
	// submission to the given status in one transaction, so a half-written
	// pair can never be observed.
	CreateWithStatusAdvance(ctx context.Context, p *domain.BidPayment, submissionStatusID int64) error
	ListByRetailBid(ctx context.Context, retailBidID int64) ([]domain.BidPayment, error)
	ListByBid(ctx context.Context, bidID int64) ([]domain.BidPayment, error)
}

type PGPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) PaymentRepository {
	return &PGPaymentRepository{db: db}
}

const paymentColumns = `id, user_id, retail_bid_id, payment_reference, amount, currency, payment_method, status_id, created_at`

func scanPayment(row pgx.Row) (*domain.BidPayment, error) {
	var p domain.BidPayment
	if err := row.Scan(&p.ID, &p.UserID, &p.RetailBidID, &p.PaymentReference, &p.Amount,
		&p.Currency, &p.PaymentMethod, &p.StatusID, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PGPaymentRepository) CreateWithStatusAdvance(ctx context.Context, p *domain.BidPayment, submissionStatusID int64) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx,
		`INSERT INTO bid_payments (user_id, retail_bid_id, payment_reference, amount, currency, payment_method, status_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		p.UserID, p.RetailBidID, p.PaymentReference, p.Amount, p.Currency, p.PaymentMethod, p.StatusID).
		Scan(&p.ID, &p.CreatedAt); err != nil {
		// payment_reference is the only unique constraint this insert can hit;
		// the caller regenerates the reference and retries.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrDuplicateReference
		}
		return err
	}

	cmd, err := tx.Exec(ctx,
		`UPDATE retail_bids SET status_id=$1, updated_at=now() WHERE id=$2`,
		submissionStatusID, p.RetailBidID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrSubmissionNotFound
	}

	return tx.Commit(ctx)
}

func (r *PGPaymentRepository) ListByRetailBid(ctx context.Context, retailBidID int64) ([]domain.BidPayment, error) {
	return r.list(ctx, `SELECT `+paymentColumns+` FROM bid_payments WHERE retail_bid_id=$1 ORDER BY created_at`, retailBidID)
}

func (r *PGPaymentRepository) ListByBid(ctx context.Context, bidID int64) ([]domain.BidPayment, error) {
	return r.list(ctx,
		`SELECT p.id, p.user_id, p.retail_bid_id, p.payment_reference, p.amount, p.currency, p.payment_method, p.status_id, p.created_at
		 FROM bid_payments p
		 JOIN retail_bids rb ON rb.id = p.retail_bid_id
		 WHERE rb.bid_id=$1 ORDER BY p.created_at`, bidID)
}

func (r *PGPaymentRepository) list(ctx context.Context, query string, arg any) ([]domain.BidPayment, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.BidPayment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

var _ PaymentRepository = (*PGPaymentRepository)(nil)
