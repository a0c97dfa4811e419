package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgx satisfied by both *pgxpool.Pool and pgx.Tx,
// letting repositories run inside or outside a transaction scope.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store aggregates the entity repositories behind one handle and provides a
// transactional scope for cross-entity lifecycle transitions.
type Store interface {
	Users() UserRepository
	Properties() PropertyRepository
	Applications() ApplicationRepository
	Bookings() BookingRepository
	Bills() BillRepository
	Notifications() NotificationRepository

	// WithinTx runs fn against a store whose repositories share one
	// transaction; fn returning an error rolls everything back.
	WithinTx(ctx context.Context, fn func(Store) error) error
}

type pgStore struct {
	pool *pgxpool.Pool
	db   Querier
}

// NewStore returns a Postgres-backed store.
func NewStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool, db: pool}
}

func (s *pgStore) Users() UserRepository                 { return &userRepository{db: s.db} }
func (s *pgStore) Properties() PropertyRepository        { return &propertyRepository{db: s.db} }
func (s *pgStore) Applications() ApplicationRepository   { return &applicationRepository{db: s.db} }
func (s *pgStore) Bookings() BookingRepository           { return &bookingRepository{db: s.db} }
func (s *pgStore) Bills() BillRepository                 { return &billRepository{db: s.db} }
func (s *pgStore) Notifications() NotificationRepository { return &notificationRepository{db: s.db} }

func (s *pgStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	if s.pool == nil {
		return errors.New("nested transactions are not supported")
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&pgStore{db: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// isUniqueViolation reports a Postgres unique-constraint failure.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
