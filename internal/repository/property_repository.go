package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/rental-service/internal/domain"
)

// PropertyFilter captures listing search parameters.
type PropertyFilter struct {
	OwnerID  *string
	Statuses []domain.PropertyStatus
	City     *string
	Limit    int
	Offset   int
}

// PropertyRepository encapsulates property persistence.
type PropertyRepository interface {
	Create(ctx context.Context, property *domain.Property) error
	Update(ctx context.Context, property *domain.Property) error
	GetByID(ctx context.Context, id string) (*domain.Property, error)
	Delete(ctx context.Context, id string) error
	ListWithFilter(ctx context.Context, filter PropertyFilter) ([]domain.Property, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Property, error)
}

type propertyRepository struct {
	db Querier
}

// NewPropertyRepository instantiates repository.
func NewPropertyRepository(db Querier) PropertyRepository {
	return &propertyRepository{db: db}
}

const propertyColumns = `id, owner_id, title, description, address, city, bedrooms, rent_amount,
        status, reserved_until, current_renter_id, lease_start, lease_end, created_at, updated_at`

func (r *propertyRepository) Create(ctx context.Context, property *domain.Property) error {
	const query = `
        INSERT INTO properties (owner_id, title, description, address, city, bedrooms, rent_amount, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		property.OwnerID,
		property.Title,
		property.Description,
		property.Address,
		property.City,
		property.Bedrooms,
		property.RentAmount,
		property.Status,
	).Scan(&property.ID, &property.CreatedAt, &property.UpdatedAt)
}

func (r *propertyRepository) Update(ctx context.Context, property *domain.Property) error {
	const query = `
        UPDATE properties SET title=$1, description=$2, address=$3, city=$4, bedrooms=$5, rent_amount=$6,
            status=$7, reserved_until=$8, current_renter_id=$9, lease_start=$10, lease_end=$11, updated_at=NOW()
        WHERE id=$12`
	cmd, err := r.db.Exec(ctx, query,
		property.Title,
		property.Description,
		property.Address,
		property.City,
		property.Bedrooms,
		property.RentAmount,
		property.Status,
		property.ReservedUntil,
		property.CurrentRenterID,
		property.LeaseStart,
		property.LeaseEnd,
		property.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *propertyRepository) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	const query = `SELECT ` + propertyColumns + ` FROM properties WHERE id=$1`
	return scanProperty(r.db.QueryRow(ctx, query, id))
}

func (r *propertyRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM properties WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *propertyRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Property, error) {
	return r.ListWithFilter(ctx, PropertyFilter{OwnerID: &ownerID})
}

func (r *propertyRepository) ListWithFilter(ctx context.Context, filter PropertyFilter) ([]domain.Property, error) {
	base := `SELECT ` + propertyColumns + ` FROM properties`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		clauses = append(clauses, fmt.Sprintf("owner_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.City != nil && strings.TrimSpace(*filter.City) != "" {
		args = append(args, strings.ToLower(strings.TrimSpace(*filter.City)))
		clauses = append(clauses, fmt.Sprintf("LOWER(city)=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Property
	for rows.Next() {
		property, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *property)
	}
	return result, rows.Err()
}

func scanProperty(row pgx.Row) (*domain.Property, error) {
	var property domain.Property
	var rawStatus string
	if err := row.Scan(
		&property.ID,
		&property.OwnerID,
		&property.Title,
		&property.Description,
		&property.Address,
		&property.City,
		&property.Bedrooms,
		&property.RentAmount,
		&rawStatus,
		&property.ReservedUntil,
		&property.CurrentRenterID,
		&property.LeaseStart,
		&property.LeaseEnd,
		&property.CreatedAt,
		&property.UpdatedAt,
	); err != nil {
		return nil, err
	}
	property.Status = NormalizePropertyStatus(rawStatus)
	return &property, nil
}
