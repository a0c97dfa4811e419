package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/rental-service/internal/domain"
)

// BookingRepository encapsulates booking persistence. Bookings are
// deactivated, never deleted.
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	Update(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	ListByProperty(ctx context.Context, propertyID string) ([]domain.Booking, error)
	ListByRenter(ctx context.Context, renterID string) ([]domain.Booking, error)
	// ActiveByProperty returns the single active booking for a property,
	// or pgx.ErrNoRows.
	ActiveByProperty(ctx context.Context, propertyID string) (*domain.Booking, error)
	// FindForPair returns the most recent booking for a (property, renter)
	// pair regardless of active flag, or pgx.ErrNoRows.
	FindForPair(ctx context.Context, propertyID, renterID string) (*domain.Booking, error)
	ListActiveByOwner(ctx context.Context, ownerID string) ([]domain.Booking, error)
}

type bookingRepository struct {
	db Querier
}

// NewBookingRepository instantiates repository.
func NewBookingRepository(db Querier) BookingRepository {
	return &bookingRepository{db: db}
}

const bookingColumns = `id, property_id, renter_id, start_date, end_date, is_active, occupants, created_at, updated_at`

func (r *bookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	const query = `
        INSERT INTO bookings (property_id, renter_id, start_date, end_date, is_active, occupants)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	occupants := booking.Occupants
	if occupants == nil {
		occupants = []domain.Occupant{}
	}
	return r.db.QueryRow(ctx, query,
		booking.PropertyID,
		booking.RenterID,
		booking.StartDate,
		booking.EndDate,
		booking.IsActive,
		occupants,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
}

func (r *bookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	const query = `
        UPDATE bookings SET start_date=$1, end_date=$2, is_active=$3, occupants=$4, updated_at=NOW()
        WHERE id=$5`
	occupants := booking.Occupants
	if occupants == nil {
		occupants = []domain.Occupant{}
	}
	cmd, err := r.db.Exec(ctx, query,
		booking.StartDate,
		booking.EndDate,
		booking.IsActive,
		occupants,
		booking.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	const query = `SELECT ` + bookingColumns + ` FROM bookings WHERE id=$1`
	return scanBooking(r.db.QueryRow(ctx, query, id))
}

func (r *bookingRepository) ActiveByProperty(ctx context.Context, propertyID string) (*domain.Booking, error) {
	const query = `SELECT ` + bookingColumns + ` FROM bookings
        WHERE property_id=$1 AND is_active ORDER BY created_at DESC LIMIT 1`
	return scanBooking(r.db.QueryRow(ctx, query, propertyID))
}

func (r *bookingRepository) FindForPair(ctx context.Context, propertyID, renterID string) (*domain.Booking, error) {
	const query = `SELECT ` + bookingColumns + ` FROM bookings
        WHERE property_id=$1 AND renter_id=$2 ORDER BY created_at DESC LIMIT 1`
	return scanBooking(r.db.QueryRow(ctx, query, propertyID, renterID))
}

func (r *bookingRepository) ListByProperty(ctx context.Context, propertyID string) ([]domain.Booking, error) {
	const query = `SELECT ` + bookingColumns + ` FROM bookings WHERE property_id=$1 ORDER BY created_at DESC`
	return r.list(ctx, query, propertyID)
}

func (r *bookingRepository) ListByRenter(ctx context.Context, renterID string) ([]domain.Booking, error) {
	const query = `SELECT ` + bookingColumns + ` FROM bookings WHERE renter_id=$1 ORDER BY created_at DESC`
	return r.list(ctx, query, renterID)
}

func (r *bookingRepository) ListActiveByOwner(ctx context.Context, ownerID string) ([]domain.Booking, error) {
	const query = `
        SELECT b.id, b.property_id, b.renter_id, b.start_date, b.end_date, b.is_active, b.occupants, b.created_at, b.updated_at
        FROM bookings b
        JOIN properties p ON p.id = b.property_id
        WHERE p.owner_id=$1 AND b.is_active
        ORDER BY b.created_at DESC`
	return r.list(ctx, query, ownerID)
}

func (r *bookingRepository) list(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *booking)
	}
	return result, rows.Err()
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var booking domain.Booking
	if err := row.Scan(
		&booking.ID,
		&booking.PropertyID,
		&booking.RenterID,
		&booking.StartDate,
		&booking.EndDate,
		&booking.IsActive,
		&booking.Occupants,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &booking, nil
}
