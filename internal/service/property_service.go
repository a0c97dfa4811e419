package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/rental-service/internal/domain"
	"github.com/spec-kit/rental-service/internal/repository"
	"github.com/spec-kit/rental-service/pkg/util"
)

// PropertyService manages listing CRUD and the delete guard.
type PropertyService struct {
	store  repository.Store
	logger *zap.Logger
}

// PropertyDependencies bundles requirements for the service.
type PropertyDependencies struct {
	Store  repository.Store
	Logger *zap.Logger
}

// NewPropertyService constructs the service.
func NewPropertyService(deps PropertyDependencies) *PropertyService {
	return &PropertyService{store: deps.Store, logger: deps.Logger}
}

// PropertyInput carries fields the owner controls. Status is absent on
// purpose: occupancy is owned by the application lifecycle.
type PropertyInput struct {
	Title       string
	Description string
	Address     string
	City        string
	Bedrooms    int
	RentAmount  float64
}

// Create publishes a new listing for a verified owner.
func (s *PropertyService) Create(ctx context.Context, owner *domain.User, input PropertyInput) (*domain.Property, error) {
	if decision := domain.CanPerform(owner, domain.ActionPostProperty); !decision.Allowed {
		return nil, util.NewVerificationGateError(decision.Reason)
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, util.NewValidationError("title is required", nil)
	}
	if input.RentAmount <= 0 {
		return nil, util.NewValidationError("rent amount must be positive", nil)
	}

	property := &domain.Property{
		OwnerID:     owner.ID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Address:     input.Address,
		City:        input.City,
		Bedrooms:    input.Bedrooms,
		RentAmount:  input.RentAmount,
		Status:      domain.PropertyStatusAvailable,
	}
	if err := s.store.Properties().Create(ctx, property); err != nil {
		return nil, err
	}
	return property, nil
}

// Update edits the owner-controlled fields of a listing. The property's
// status, renter and lease window are untouched.
func (s *PropertyService) Update(ctx context.Context, actor *domain.User, propertyID string, input PropertyInput) (*domain.Property, error) {
	property, err := s.getOwned(ctx, actor, propertyID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, util.NewValidationError("title is required", nil)
	}
	if input.RentAmount <= 0 {
		return nil, util.NewValidationError("rent amount must be positive", nil)
	}

	property.Title = strings.TrimSpace(input.Title)
	property.Description = input.Description
	property.Address = input.Address
	property.City = input.City
	property.Bedrooms = input.Bedrooms
	property.RentAmount = input.RentAmount
	if err := s.store.Properties().Update(ctx, property); err != nil {
		return nil, err
	}
	return property, nil
}

// Delete removes a listing, but only when no dependent records reference
// it. Otherwise it fails with a breakdown of what is still attached.
func (s *PropertyService) Delete(ctx context.Context, actor *domain.User, propertyID string) error {
	property, err := s.getOwned(ctx, actor, propertyID)
	if err != nil {
		return err
	}

	bookings, err := s.store.Bookings().ListByProperty(ctx, property.ID)
	if err != nil {
		return err
	}
	bills, err := s.store.Bills().ListByProperty(ctx, property.ID)
	if err != nil {
		return err
	}
	applications, err := s.store.Applications().ListByProperty(ctx, property.ID)
	if err != nil {
		return err
	}

	if len(bookings) > 0 || len(bills) > 0 || len(applications) > 0 {
		var sampleIDs []string
		for _, booking := range bookings {
			sampleIDs = append(sampleIDs, booking.ID)
		}
		for _, bill := range bills {
			sampleIDs = append(sampleIDs, bill.ID)
		}
		for _, application := range applications {
			sampleIDs = append(sampleIDs, application.ID)
		}
		if len(sampleIDs) > 5 {
			sampleIDs = sampleIDs[:5]
		}
		return util.NewPropertyDeleteBlocked(len(bookings), len(bills), len(applications), sampleIDs)
	}

	return s.store.Properties().Delete(ctx, property.ID)
}

// Get fetches a single listing.
func (s *PropertyService) Get(ctx context.Context, propertyID string) (*domain.Property, error) {
	property, err := s.store.Properties().GetByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("property", map[string]any{"id": propertyID})
		}
		return nil, err
	}
	return property, nil
}

// Search lists properties matching the filter.
func (s *PropertyService) Search(ctx context.Context, filter repository.PropertyFilter) ([]domain.Property, error) {
	return s.store.Properties().ListWithFilter(ctx, filter)
}

// ListForOwner returns the owner's listings.
func (s *PropertyService) ListForOwner(ctx context.Context, ownerID string) ([]domain.Property, error) {
	return s.store.Properties().ListByOwner(ctx, ownerID)
}

func (s *PropertyService) getOwned(ctx context.Context, actor *domain.User, propertyID string) (*domain.Property, error) {
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
	return property, nil
}
