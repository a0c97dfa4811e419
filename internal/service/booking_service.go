package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/rental-service/internal/domain"
	"github.com/spec-kit/rental-service/internal/repository"
	"github.com/spec-kit/rental-service/pkg/util"
)

// BookingService manages tenancy records. Most bookings are created by
// application approval; this service covers the owner's manual paths and
// closing out a tenancy.
type BookingService struct {
	store  repository.Store
	logger *zap.Logger
}

// BookingDependencies bundles requirements for the service.
type BookingDependencies struct {
	Store  repository.Store
	Logger *zap.Logger
}

// NewBookingService constructs the service.
func NewBookingService(deps BookingDependencies) *BookingService {
	return &BookingService{store: deps.Store, logger: deps.Logger}
}

// BookingInput carries the owner-editable fields of a tenancy.
type BookingInput struct {
	StartDate time.Time
	EndDate   *time.Time
	Occupants []domain.Occupant
}

// Add records a tenancy directly, for move-ins arranged outside the
// application flow. A property holds at most one active booking.
func (s *BookingService) Add(ctx context.Context, actor *domain.User, propertyID, renterID string, input BookingInput) (*domain.Booking, error) {
	property, err := s.store.Properties().GetByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("property", map[string]any{"id": propertyID})
		}
		return nil, err
	}
	if actor != nil && actor.Role != domain.RoleAdmin && property.OwnerID != actor.ID {
		return nil, util.NewForbidden("property belongs to another owner")
	}

	if existing, err := s.store.Bookings().ActiveByProperty(ctx, propertyID); err == nil {
		return nil, util.NewConflict("property already has an active booking", map[string]any{
			"booking_id": existing.ID,
		})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	booking := &domain.Booking{
		PropertyID: propertyID,
		RenterID:   renterID,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		IsActive:   true,
		Occupants:  input.Occupants,
	}

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Bookings().Create(ctx, booking); err != nil {
			return err
		}
		renter := renterID
		property.Status = domain.PropertyStatusOccupied
		property.CurrentRenterID = &renter
		property.LeaseStart = &booking.StartDate
		property.LeaseEnd = booking.EndDate
		return tx.Properties().Update(ctx, property)
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// Update edits the tenancy window and occupant roster.
func (s *BookingService) Update(ctx context.Context, actor *domain.User, bookingID string, input BookingInput) (*domain.Booking, error) {
	booking, err := s.getManaged(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}

	booking.StartDate = input.StartDate
	booking.EndDate = input.EndDate
	booking.Occupants = input.Occupants
	if err := s.store.Bookings().Update(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// Close ends a tenancy: the booking is deactivated, never deleted, and the
// property returns to AVAILABLE.
func (s *BookingService) Close(ctx context.Context, actor *domain.User, bookingID string) (*domain.Booking, error) {
	booking, err := s.getManaged(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.IsActive {
		return booking, nil
	}

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		booking.IsActive = false
		if err := tx.Bookings().Update(ctx, booking); err != nil {
			return err
		}
		property, err := tx.Properties().GetByID(ctx, booking.PropertyID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}
		property.Status = domain.PropertyStatusAvailable
		property.CurrentRenterID = nil
		property.LeaseStart = nil
		property.LeaseEnd = nil
		return tx.Properties().Update(ctx, property)
	})
	if err != nil {
		booking.IsActive = true
		return nil, err
	}
	return booking, nil
}

// ListForRenter returns the renter's bookings, newest first.
func (s *BookingService) ListForRenter(ctx context.Context, renterID string) ([]domain.Booking, error) {
	return s.store.Bookings().ListByRenter(ctx, renterID)
}

// ListActiveForOwner returns live tenancies across the owner's properties.
func (s *BookingService) ListActiveForOwner(ctx context.Context, ownerID string) ([]domain.Booking, error) {
	return s.store.Bookings().ListActiveByOwner(ctx, ownerID)
}

func (s *BookingService) getManaged(ctx context.Context, actor *domain.User, bookingID string) (*domain.Booking, error) {
	booking, err := s.store.Bookings().GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("booking", map[string]any{"id": bookingID})
		}
		return nil, err
	}
	if actor == nil || actor.Role == domain.RoleAdmin {
		return booking, nil
	}
	property, err := s.store.Properties().GetByID(ctx, booking.PropertyID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if property != nil && property.OwnerID != actor.ID {
		return nil, util.NewForbidden("booking belongs to another owner's property")
	}
	return booking, nil
}
