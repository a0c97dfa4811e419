package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/rental-service/internal/domain"
	"github.com/spec-kit/rental-service/internal/events"
	"github.com/spec-kit/rental-service/internal/repository"
	"github.com/spec-kit/rental-service/pkg/util"
)

// ApplicationService drives the rental application state machine and its
// coupled side effects on properties and bookings.
type ApplicationService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// ApplicationDependencies bundles requirements for the service.
type ApplicationDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// ProcessOptions carries optional transition inputs.
type ProcessOptions struct {
	Reason     string
	LeaseStart *time.Time
}

// NewApplicationService constructs the service.
func NewApplicationService(deps ApplicationDependencies) *ApplicationService {
	return &ApplicationService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// Submit files a renter's application for a property. Submitting while an
// application for the same (property, renter) pair is still PENDING is a
// silent no-op returning the existing application: no new row, no
// notification.
func (s *ApplicationService) Submit(ctx context.Context, renter *domain.User, propertyID, message string) (*domain.Application, error) {
	if decision := domain.CanPerform(renter, domain.ActionApply); !decision.Allowed {
		return nil, util.NewVerificationGateError(decision.Reason)
	}

	property, err := s.store.Properties().GetByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("property", map[string]any{"id": propertyID})
		}
		return nil, err
	}

	if existing, err := s.store.Applications().FindPending(ctx, propertyID, renter.ID); err == nil {
		return existing, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	application := &domain.Application{
		PropertyID: propertyID,
		RenterID:   renter.ID,
		Status:     domain.ApplicationStatusPending,
		Message:    strings.TrimSpace(message),
	}
	if err := s.store.Applications().Create(ctx, application); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:    events.EventApplicationSubmitted,
		ActorID: renter.ID,
		Payload: events.ApplicationSubmittedPayload{
			ApplicationID: application.ID,
			PropertyID:    property.ID,
			OwnerID:       property.OwnerID,
			RenterID:      renter.ID,
			PropertyTitle: property.Title,
		},
	})
	return application, nil
}

// Process moves an application to newStatus, applying the coupled property
// and booking side effects inside one transaction scope. A missing
// application id is a no-op: the caller's next refetch settles the stale
// view.
func (s *ApplicationService) Process(ctx context.Context, actor *domain.User, applicationID string, newStatus domain.ApplicationStatus, opts ProcessOptions) (*domain.Application, error) {
	application, err := s.store.Applications().GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if application.Status == newStatus {
		return application, nil
	}
	if !isValidTransition(application.Status, newStatus) {
		return nil, util.NewValidationError(
			fmt.Sprintf("cannot move application from %s to %s", application.Status, newStatus), nil)
	}
	if newStatus == domain.ApplicationStatusRejected && strings.TrimSpace(opts.Reason) == "" {
		return nil, util.NewValidationError("rejection reason required", nil)
	}
	if newStatus == domain.ApplicationStatusLeaseSigned && opts.LeaseStart == nil {
		return nil, util.NewValidationError("lease start date required", nil)
	}

	property, err := s.store.Properties().GetByID(ctx, application.PropertyID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	oldStatus := application.Status
	application.Status = newStatus
	if newStatus == domain.ApplicationStatusRejected {
		notes := strings.TrimSpace(opts.Reason)
		application.OwnerNotes = &notes
	}

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		switch {
		case newStatus == domain.ApplicationStatusApproved:
			if err := s.reserve(ctx, tx, application); err != nil {
				return err
			}
		case newStatus == domain.ApplicationStatusLeaseSigned:
			if err := s.signLease(ctx, tx, application, *opts.LeaseStart); err != nil {
				return err
			}
		case occupies(oldStatus) && !occupies(newStatus):
			if err := s.release(ctx, tx, application); err != nil {
				return err
			}
		}
		return tx.Applications().Update(ctx, application)
	})
	if err != nil {
		// no partial local state survives a failed write
		application.Status = oldStatus
		return nil, err
	}

	payload := events.ApplicationStatusChangedPayload{
		ApplicationID: application.ID,
		PropertyID:    application.PropertyID,
		RenterID:      application.RenterID,
		OldStatus:     oldStatus,
		NewStatus:     newStatus,
		Reason:        strings.TrimSpace(opts.Reason),
	}
	if property != nil {
		payload.PropertyTitle = property.Title
	}
	actorID := ""
	if actor != nil {
		actorID = actor.ID
	}
	s.publish(ctx, events.Event{
		Type:    events.EventApplicationStatusChanged,
		ActorID: actorID,
		Payload: payload,
	})
	return application, nil
}

// SetLeaseStart records the concrete lease window for an approved
// application, moving it to LEASE_SIGNED.
func (s *ApplicationService) SetLeaseStart(ctx context.Context, actor *domain.User, applicationID string, leaseStart time.Time) (*domain.Application, error) {
	return s.Process(ctx, actor, applicationID, domain.ApplicationStatusLeaseSigned, ProcessOptions{LeaseStart: &leaseStart})
}

// ListForRenter returns the renter's applications.
func (s *ApplicationService) ListForRenter(ctx context.Context, renterID string) ([]domain.Application, error) {
	return s.store.Applications().ListByRenter(ctx, renterID)
}

// ListForOwner returns applications across the owner's properties.
func (s *ApplicationService) ListForOwner(ctx context.Context, ownerID string) ([]domain.Application, error) {
	return s.store.Applications().ListByOwner(ctx, ownerID)
}

// ListForProperty returns applications for one property.
func (s *ApplicationService) ListForProperty(ctx context.Context, propertyID string) ([]domain.Application, error) {
	return s.store.Applications().ListByProperty(ctx, propertyID)
}

// reserve creates or reactivates the booking for the application's pair and
// marks the property occupied. Runs inside the transition's transaction.
func (s *ApplicationService) reserve(ctx context.Context, tx repository.Store, application *domain.Application) error {
	property, err := tx.Properties().GetByID(ctx, application.PropertyID)
	if err != nil {
		return err
	}

	start := time.Now()
	end := start.AddDate(1, 0, 0)

	booking, err := tx.Bookings().FindForPair(ctx, application.PropertyID, application.RenterID)
	switch {
	case err == nil:
		booking.StartDate = start
		booking.EndDate = &end
		booking.IsActive = true
		if err := tx.Bookings().Update(ctx, booking); err != nil {
			return err
		}
	case errors.Is(err, pgx.ErrNoRows):
		booking = &domain.Booking{
			PropertyID: application.PropertyID,
			RenterID:   application.RenterID,
			StartDate:  start,
			EndDate:    &end,
			IsActive:   true,
		}
		if err := tx.Bookings().Create(ctx, booking); err != nil {
			return err
		}
	default:
		return err
	}

	renterID := application.RenterID
	property.Status = domain.PropertyStatusOccupied
	property.CurrentRenterID = &renterID
	property.LeaseStart = &start
	property.LeaseEnd = &end
	return tx.Properties().Update(ctx, property)
}

// release deactivates the pair's active booking and returns the property to
// AVAILABLE. Supports correcting an erroneous approval.
func (s *ApplicationService) release(ctx context.Context, tx repository.Store, application *domain.Application) error {
	booking, err := tx.Bookings().FindForPair(ctx, application.PropertyID, application.RenterID)
	switch {
	case err == nil:
		if booking.IsActive {
			booking.IsActive = false
			if err := tx.Bookings().Update(ctx, booking); err != nil {
				return err
			}
		}
	case errors.Is(err, pgx.ErrNoRows):
		// nothing to deactivate
	default:
		return err
	}

	property, err := tx.Properties().GetByID(ctx, application.PropertyID)
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
}

// signLease pins the booking to the agreed lease window.
func (s *ApplicationService) signLease(ctx context.Context, tx repository.Store, application *domain.Application, leaseStart time.Time) error {
	leaseEnd := leaseStart.AddDate(1, 0, 0)
	application.LeaseStartDate = &leaseStart

	booking, err := tx.Bookings().FindForPair(ctx, application.PropertyID, application.RenterID)
	if err != nil {
		return err
	}
	booking.StartDate = leaseStart
	booking.EndDate = &leaseEnd
	booking.IsActive = true
	if err := tx.Bookings().Update(ctx, booking); err != nil {
		return err
	}

	property, err := tx.Properties().GetByID(ctx, application.PropertyID)
	if err != nil {
		return err
	}
	property.LeaseStart = &leaseStart
	property.LeaseEnd = &leaseEnd
	return tx.Properties().Update(ctx, property)
}

func (s *ApplicationService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// occupies reports whether an application status implies the unit is held
// by its renter.
func occupies(status domain.ApplicationStatus) bool {
	switch status {
	case domain.ApplicationStatusApproved, domain.ApplicationStatusLeaseSigned, domain.ApplicationStatusActive:
		return true
	default:
		return false
	}
}

// Approving one application deliberately leaves sibling PENDING
// applications for the same property untouched: the unit going OCCUPIED
// blocks new applications, while already-pending competitors await a manual
// owner decision.
var allowedTransitions = map[domain.ApplicationStatus][]domain.ApplicationStatus{
	domain.ApplicationStatusPending:     {domain.ApplicationStatusUnderReview, domain.ApplicationStatusApproved, domain.ApplicationStatusRejected, domain.ApplicationStatusCancelled},
	domain.ApplicationStatusUnderReview: {domain.ApplicationStatusApproved, domain.ApplicationStatusRejected, domain.ApplicationStatusCancelled},
	domain.ApplicationStatusApproved:    {domain.ApplicationStatusLeaseSigned, domain.ApplicationStatusActive, domain.ApplicationStatusPending, domain.ApplicationStatusUnderReview, domain.ApplicationStatusRejected, domain.ApplicationStatusCancelled},
	domain.ApplicationStatusLeaseSigned: {domain.ApplicationStatusActive, domain.ApplicationStatusRejected, domain.ApplicationStatusCancelled},
	domain.ApplicationStatusActive:      {},
	domain.ApplicationStatusRejected:    {},
	domain.ApplicationStatusCancelled:   {},
}

func isValidTransition(current, next domain.ApplicationStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
