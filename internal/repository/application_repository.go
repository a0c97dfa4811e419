package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/rental-service/internal/domain"
)

// ApplicationRepository encapsulates rental application persistence.
type ApplicationRepository interface {
	Create(ctx context.Context, application *domain.Application) error
	Update(ctx context.Context, application *domain.Application) error
	GetByID(ctx context.Context, id string) (*domain.Application, error)
	ListByRenter(ctx context.Context, renterID string) ([]domain.Application, error)
	ListByProperty(ctx context.Context, propertyID string) ([]domain.Application, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Application, error)
	// FindPending returns the open PENDING application for a
	// (property, renter) pair, or pgx.ErrNoRows. Backs the idempotent
	// re-submission guard.
	FindPending(ctx context.Context, propertyID, renterID string) (*domain.Application, error)
}

type applicationRepository struct {
	db Querier
}

// NewApplicationRepository instantiates repository.
func NewApplicationRepository(db Querier) ApplicationRepository {
	return &applicationRepository{db: db}
}

const applicationColumns = `id, property_id, renter_id, status, message, owner_notes, lease_start_date, created_at, updated_at`

func (r *applicationRepository) Create(ctx context.Context, application *domain.Application) error {
	const query = `
        INSERT INTO applications (property_id, renter_id, status, message)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		application.PropertyID,
		application.RenterID,
		application.Status,
		application.Message,
	).Scan(&application.ID, &application.CreatedAt, &application.UpdatedAt)
}

func (r *applicationRepository) Update(ctx context.Context, application *domain.Application) error {
	const query = `
        UPDATE applications SET status=$1, message=$2, owner_notes=$3, lease_start_date=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.db.Exec(ctx, query,
		application.Status,
		application.Message,
		application.OwnerNotes,
		application.LeaseStartDate,
		application.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *applicationRepository) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	const query = `SELECT ` + applicationColumns + ` FROM applications WHERE id=$1`
	return scanApplication(r.db.QueryRow(ctx, query, id))
}

func (r *applicationRepository) FindPending(ctx context.Context, propertyID, renterID string) (*domain.Application, error) {
	const query = `SELECT ` + applicationColumns + ` FROM applications
        WHERE property_id=$1 AND renter_id=$2 AND status='PENDING'
        ORDER BY created_at LIMIT 1`
	return scanApplication(r.db.QueryRow(ctx, query, propertyID, renterID))
}

func (r *applicationRepository) ListByRenter(ctx context.Context, renterID string) ([]domain.Application, error) {
	const query = `SELECT ` + applicationColumns + ` FROM applications WHERE renter_id=$1 ORDER BY created_at DESC`
	return r.list(ctx, query, renterID)
}

func (r *applicationRepository) ListByProperty(ctx context.Context, propertyID string) ([]domain.Application, error) {
	const query = `SELECT ` + applicationColumns + ` FROM applications WHERE property_id=$1 ORDER BY created_at DESC`
	return r.list(ctx, query, propertyID)
}

func (r *applicationRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Application, error) {
	const query = `
        SELECT a.id, a.property_id, a.renter_id, a.status, a.message, a.owner_notes, a.lease_start_date, a.created_at, a.updated_at
        FROM applications a
        JOIN properties p ON p.id = a.property_id
        WHERE p.owner_id=$1
        ORDER BY a.created_at DESC`
	return r.list(ctx, query, ownerID)
}

func (r *applicationRepository) list(ctx context.Context, query string, args ...any) ([]domain.Application, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Application
	for rows.Next() {
		application, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *application)
	}
	return result, rows.Err()
}

func scanApplication(row pgx.Row) (*domain.Application, error) {
	var application domain.Application
	if err := row.Scan(
		&application.ID,
		&application.PropertyID,
		&application.RenterID,
		&application.Status,
		&application.Message,
		&application.OwnerNotes,
		&application.LeaseStartDate,
		&application.CreatedAt,
		&application.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &application, nil
}
