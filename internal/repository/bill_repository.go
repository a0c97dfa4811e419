package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/rental-service/internal/domain"
)

// BillRepository encapsulates bill persistence.
type BillRepository interface {
	Create(ctx context.Context, bill *domain.Bill) error
	Update(ctx context.Context, bill *domain.Bill) error
	GetByID(ctx context.Context, id string) (*domain.Bill, error)
	ListByRenter(ctx context.Context, renterID string) ([]domain.Bill, error)
	ListByProperty(ctx context.Context, propertyID string) ([]domain.Bill, error)
}

type billRepository struct {
	db Querier
}

// NewBillRepository instantiates repository.
func NewBillRepository(db Querier) BillRepository {
	return &billRepository{db: db}
}

const billColumns = `id, property_id, renter_id, type, status, amount, due_date, paid_at, created_at, updated_at`

func (r *billRepository) Create(ctx context.Context, bill *domain.Bill) error {
	const query = `
        INSERT INTO bills (property_id, renter_id, type, status, amount, due_date)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		bill.PropertyID,
		bill.RenterID,
		bill.Type,
		bill.Status,
		bill.Amount,
		bill.DueDate,
	).Scan(&bill.ID, &bill.CreatedAt, &bill.UpdatedAt)
}

func (r *billRepository) Update(ctx context.Context, bill *domain.Bill) error {
	const query = `
        UPDATE bills SET type=$1, status=$2, amount=$3, due_date=$4, paid_at=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.db.Exec(ctx, query,
		bill.Type,
		bill.Status,
		bill.Amount,
		bill.DueDate,
		bill.PaidAt,
		bill.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *billRepository) GetByID(ctx context.Context, id string) (*domain.Bill, error) {
	const query = `SELECT ` + billColumns + ` FROM bills WHERE id=$1`
	return scanBill(r.db.QueryRow(ctx, query, id))
}

func (r *billRepository) ListByRenter(ctx context.Context, renterID string) ([]domain.Bill, error) {
	const query = `SELECT ` + billColumns + ` FROM bills WHERE renter_id=$1 ORDER BY due_date`
	return r.list(ctx, query, renterID)
}

func (r *billRepository) ListByProperty(ctx context.Context, propertyID string) ([]domain.Bill, error) {
	const query = `SELECT ` + billColumns + ` FROM bills WHERE property_id=$1 ORDER BY due_date`
	return r.list(ctx, query, propertyID)
}

func (r *billRepository) list(ctx context.Context, query string, args ...any) ([]domain.Bill, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Bill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *bill)
	}
	return result, rows.Err()
}

func scanBill(row pgx.Row) (*domain.Bill, error) {
	var bill domain.Bill
	if err := row.Scan(
		&bill.ID,
		&bill.PropertyID,
		&bill.RenterID,
		&bill.Type,
		&bill.Status,
		&bill.Amount,
		&bill.DueDate,
		&bill.PaidAt,
		&bill.CreatedAt,
		&bill.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &bill, nil
}
