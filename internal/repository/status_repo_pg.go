package repository

import (
	"context"

	"github.com/avialine/groupfare/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StatusRepository interface {
	List(ctx context.Context) ([]domain.Status, error)
	Count(ctx context.Context) (int, error)
	Insert(ctx context.Context, status *domain.Status) error
}

type PGStatusRepository struct {
	db *pgxpool.Pool
}

func NewStatusRepository(db *pgxpool.Pool) StatusRepository {
	return &PGStatusRepository{db: db}
}

func (r *PGStatusRepository) List(ctx context.Context) ([]domain.Status, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, code, description FROM statuses ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	statuses := make([]domain.Status, 0)
	for rows.Next() {
		var s domain.Status
		if err := rows.Scan(&s.ID, &s.Name, &s.Code, &s.Description); err != nil {
			return nil, err
		}
		statuses = append(statuses, s)
	}
	return statuses, rows.Err()
}

func (r *PGStatusRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM statuses`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *PGStatusRepository) Insert(ctx context.Context, status *domain.Status) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO statuses (name, code, description) VALUES ($1, $2, $3)
		 ON CONFLICT (code) DO UPDATE SET code = EXCLUDED.code
		 RETURNING id`,
		status.Name, status.Code, status.Description).Scan(&status.ID)
}

var _ StatusRepository = (*PGStatusRepository)(nil)
