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

// BillService manages charges raised against renters. Bills never block
// lifecycle transitions; the feed surfaces due and overdue ones.
type BillService struct {
	store  repository.Store
	logger *zap.Logger
}

// BillDependencies bundles requirements for the service.
type BillDependencies struct {
	Store  repository.Store
	Logger *zap.Logger
}

// NewBillService constructs the service.
func NewBillService(deps BillDependencies) *BillService {
	return &BillService{store: deps.Store, logger: deps.Logger}
}

// BillInput carries fields for raising a charge.
type BillInput struct {
	PropertyID string
	RenterID   string
	Type       domain.BillType
	Amount     float64
	DueDate    time.Time
}

// Create raises a charge against a renter for one of the actor's
// properties.
func (s *BillService) Create(ctx context.Context, actor *domain.User, input BillInput) (*domain.Bill, error) {
	if input.Amount <= 0 {
		return nil, util.NewValidationError("bill amount must be positive", nil)
	}

	property, err := s.store.Properties().GetByID(ctx, input.PropertyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("property", map[string]any{"id": input.PropertyID})
		}
		return nil, err
	}
	if actor != nil && actor.Role != domain.RoleAdmin && property.OwnerID != actor.ID {
		return nil, util.NewForbidden("property belongs to another owner")
	}

	billType := input.Type
	if billType == "" {
		billType = domain.BillTypeOther
	}
	bill := &domain.Bill{
		PropertyID: input.PropertyID,
		RenterID:   input.RenterID,
		Type:       billType,
		Status:     domain.BillStatusPending,
		Amount:     input.Amount,
		DueDate:    input.DueDate,
	}
	if err := s.store.Bills().Create(ctx, bill); err != nil {
		return nil, err
	}
	return bill, nil
}

// MarkPaid settles a bill.
func (s *BillService) MarkPaid(ctx context.Context, billID string) (*domain.Bill, error) {
	bill, err := s.get(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill.Status == domain.BillStatusPaid {
		return bill, nil
	}
	now := time.Now()
	bill.Status = domain.BillStatusPaid
	bill.PaidAt = &now
	if err := s.store.Bills().Update(ctx, bill); err != nil {
		return nil, err
	}
	return bill, nil
}

// MarkOverdue flags an unpaid bill whose due date has passed.
func (s *BillService) MarkOverdue(ctx context.Context, billID string) (*domain.Bill, error) {
	bill, err := s.get(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill.Status != domain.BillStatusPending {
		return bill, nil
	}
	bill.Status = domain.BillStatusOverdue
	if err := s.store.Bills().Update(ctx, bill); err != nil {
		return nil, err
	}
	return bill, nil
}

// ListForRenter returns the renter's bills ordered by due date.
func (s *BillService) ListForRenter(ctx context.Context, renterID string) ([]domain.Bill, error) {
	return s.store.Bills().ListByRenter(ctx, renterID)
}

// ListForProperty returns a property's bills ordered by due date.
func (s *BillService) ListForProperty(ctx context.Context, propertyID string) ([]domain.Bill, error) {
	return s.store.Bills().ListByProperty(ctx, propertyID)
}

func (s *BillService) get(ctx context.Context, billID string) (*domain.Bill, error) {
	bill, err := s.store.Bills().GetByID(ctx, billID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("bill", map[string]any{"id": billID})
		}
		return nil, err
	}
	return bill, nil
}
