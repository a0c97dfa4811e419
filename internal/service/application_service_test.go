package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/spec-kit/rental-service/internal/domain"
	"github.com/spec-kit/rental-service/internal/events"
	"github.com/spec-kit/rental-service/internal/repository"
	"github.com/spec-kit/rental-service/pkg/util"
)

type ApplicationServiceSuite struct {
	suite.Suite
	ctx   context.Context
	store *repository.MemoryStore
	svc   *ApplicationService

	owner  *domain.User
	renter *domain.User
}

func TestApplicationServiceSuite(t *testing.T) {
	suite.Run(t, new(ApplicationServiceSuite))
}

func (s *ApplicationServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = repository.NewMemoryStore()
	dispatcher := events.NewInMemoryDispatcher()
	notifications := NewNotificationService(NotificationDependencies{
		Store:      s.store,
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
	})
	notifications.RegisterHandlers()
	s.svc = NewApplicationService(ApplicationDependencies{
		Store:      s.store,
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
	})

	s.owner = s.seedUser(domain.RoleOwner)
	s.renter = s.seedUser(domain.RoleRenter)
}

func (s *ApplicationServiceSuite) seedUser(role domain.Role) *domain.User {
	user := &domain.User{
		Name:          "Test " + string(role),
		Email:         string(role) + "@example.com",
		Role:          role,
		EmailVerified: true,
		PhoneVerified: true,
		IDStatus:      domain.IDStatusVerified,
		FullyVerified: true,
	}
	s.Require().NoError(s.store.Users().Create(s.ctx, user))
	return user
}

func (s *ApplicationServiceSuite) seedProperty() *domain.Property {
	property := &domain.Property{
		OwnerID:    s.owner.ID,
		Title:      "Sunny Flat",
		City:       "Lisbon",
		Bedrooms:   2,
		RentAmount: 1200,
		Status:     domain.PropertyStatusAvailable,
	}
	s.Require().NoError(s.store.Properties().Create(s.ctx, property))
	return property
}

func (s *ApplicationServiceSuite) submit(property *domain.Property) *domain.Application {
	application, err := s.svc.Submit(s.ctx, s.renter, property.ID, "hello")
	s.Require().NoError(err)
	return application
}

func (s *ApplicationServiceSuite) TestSubmitCreatesPendingApplication() {
	property := s.seedProperty()
	application := s.submit(property)

	s.Equal(domain.ApplicationStatusPending, application.Status)
	s.Equal(property.ID, application.PropertyID)
	s.Equal(s.renter.ID, application.RenterID)

	ownerFeed, err := s.store.Notifications().ListByUser(s.ctx, s.owner.ID)
	s.Require().NoError(err)
	s.Len(ownerFeed, 1)
	s.Contains(ownerFeed[0].Message, "Sunny Flat")
}

func (s *ApplicationServiceSuite) TestSubmitVerificationGate() {
	property := s.seedProperty()
	unverified := &domain.User{Role: domain.RoleRenter, EmailVerified: false}
	s.Require().NoError(s.store.Users().Create(s.ctx, unverified))

	_, err := s.svc.Submit(s.ctx, unverified, property.ID, "")
	s.Require().Error(err)
	s.True(util.IsCode(err, "VERIFICATION_REQUIRED"))
}

func (s *ApplicationServiceSuite) TestResubmissionIsSilentNoOp() {
	property := s.seedProperty()
	first := s.submit(property)
	second := s.submit(property)

	s.Equal(first.ID, second.ID)

	applications, err := s.store.Applications().ListByRenter(s.ctx, s.renter.ID)
	s.Require().NoError(err)
	s.Len(applications, 1)

	// the duplicate click must not notify the owner again
	ownerFeed, err := s.store.Notifications().ListByUser(s.ctx, s.owner.ID)
	s.Require().NoError(err)
	s.Len(ownerFeed, 1)
}

func (s *ApplicationServiceSuite) TestApproveSideEffects() {
	property := s.seedProperty()
	application := s.submit(property)

	approved, err := s.svc.Process(s.ctx, s.owner, application.ID, domain.ApplicationStatusApproved, ProcessOptions{})
	s.Require().NoError(err)
	s.Equal(domain.ApplicationStatusApproved, approved.Status)

	booking, err := s.store.Bookings().ActiveByProperty(s.ctx, property.ID)
	s.Require().NoError(err)
	s.True(booking.IsActive)
	s.Equal(s.renter.ID, booking.RenterID)
	s.Require().NotNil(booking.EndDate)
	s.WithinDuration(booking.StartDate.AddDate(1, 0, 0), *booking.EndDate, time.Second)

	stored, err := s.store.Properties().GetByID(s.ctx, property.ID)
	s.Require().NoError(err)
	s.Equal(domain.PropertyStatusOccupied, stored.Status)
	s.Require().NotNil(stored.CurrentRenterID)
	s.Equal(s.renter.ID, *stored.CurrentRenterID)
	s.NotNil(stored.LeaseStart)
	s.NotNil(stored.LeaseEnd)

	renterFeed, err := s.store.Notifications().ListByUser(s.ctx, s.renter.ID)
	s.Require().NoError(err)
	s.Len(renterFeed, 1)
	s.Equal(domain.NotificationTypeSuccess, renterFeed[0].Type)
}

func (s *ApplicationServiceSuite) TestApprovalIsAtomic() {
	boom := errors.New("write refused")
	steps := []string{"bookings.create", "properties.update", "applications.update"}
	for _, step := range steps {
		s.Run(step, func() {
			store := repository.NewMemoryStore()
			s.store = store
			s.svc = NewApplicationService(ApplicationDependencies{Store: store, Logger: zap.NewNop()})
			s.owner = s.seedUser(domain.RoleOwner)
			s.renter = s.seedUser(domain.RoleRenter)
			property := s.seedProperty()
			application := s.submit(property)

			store.FailOnce(step, boom)
			_, err := s.svc.Process(s.ctx, s.owner, application.ID, domain.ApplicationStatusApproved, ProcessOptions{})
			s.Require().ErrorIs(err, boom)

			// all three writes roll back together
			stored, err := store.Applications().GetByID(s.ctx, application.ID)
			s.Require().NoError(err)
			s.Equal(domain.ApplicationStatusPending, stored.Status)

			prop, err := store.Properties().GetByID(s.ctx, property.ID)
			s.Require().NoError(err)
			s.Equal(domain.PropertyStatusAvailable, prop.Status)
			s.Nil(prop.CurrentRenterID)

			_, err = store.Bookings().ActiveByProperty(s.ctx, property.ID)
			s.Require().ErrorIs(err, pgx.ErrNoRows)
		})
	}
}

func (s *ApplicationServiceSuite) TestRejectRequiresReason() {
	property := s.seedProperty()
	application := s.submit(property)

	_, err := s.svc.Process(s.ctx, s.owner, application.ID, domain.ApplicationStatusRejected, ProcessOptions{Reason: "  "})
	s.Require().Error(err)
	s.True(util.IsCode(err, "VALIDATION_FAILED"))
}

func (s *ApplicationServiceSuite) TestRejectPersistsNotesAndNotifies() {
	property := s.seedProperty()
	application := s.submit(property)

	rejected, err := s.svc.Process(s.ctx, s.owner, application.ID, domain.ApplicationStatusRejected, ProcessOptions{Reason: "income too low"})
	s.Require().NoError(err)
	s.Equal(domain.ApplicationStatusRejected, rejected.Status)
	s.Require().NotNil(rejected.OwnerNotes)
	s.Equal("income too low", *rejected.OwnerNotes)

	renterFeed, err := s.store.Notifications().ListByUser(s.ctx, s.renter.ID)
	s.Require().NoError(err)
	s.Require().Len(renterFeed, 1)
	s.Equal("income too low", renterFeed[0].Message)
	s.Equal(domain.NotificationTypeAlert, renterFeed[0].Type)
}

func (s *ApplicationServiceSuite) TestRevertFromApproved() {
	property := s.seedProperty()
	application := s.submit(property)

	_, err := s.svc.Process(s.ctx, s.owner, application.ID, domain.ApplicationStatusApproved, ProcessOptions{})
	s.Require().NoError(err)

	reverted, err := s.svc.Process(s.ctx, s.owner, application.ID, domain.ApplicationStatusPending, ProcessOptions{})
	s.Require().NoError(err)
	s.Equal(domain.ApplicationStatusPending, reverted.Status)

	// booking deactivated, never deleted
	booking, err := s.store.Bookings().FindForPair(s.ctx, property.ID, s.renter.ID)
	s.Require().NoError(err)
	s.False(booking.IsActive)

	stored, err := s.store.Properties().GetByID(s.ctx, property.ID)
	s.Require().NoError(err)
	s.Equal(domain.PropertyStatusAvailable, stored.Status)
	s.Nil(stored.CurrentRenterID)
	s.Nil(stored.LeaseStart)
	s.Nil(stored.LeaseEnd)
}

func (s *ApplicationServiceSuite) TestReapprovalReactivatesBooking() {
	property := s.seedProperty()
	application := s.submit(property)

	_, err := s.svc.Process(s.ctx, s.owner, application.ID, domain.ApplicationStatusApproved, ProcessOptions{})
	s.Require().NoError(err)
	_, err = s.svc.Process(s.ctx, s.owner, application.ID, domain.ApplicationStatusPending, ProcessOptions{})
	s.Require().NoError(err)
	_, err = s.svc.Process(s.ctx, s.owner, application.ID, domain.ApplicationStatusApproved, ProcessOptions{})
	s.Require().NoError(err)

	bookings, err := s.store.Bookings().ListByProperty(s.ctx, property.ID)
	s.Require().NoError(err)
	s.Len(bookings, 1)
	s.True(bookings[0].IsActive)
}

func (s *ApplicationServiceSuite) TestSetLeaseStart() {
	property := s.seedProperty()
	application := s.submit(property)

	_, err := s.svc.Process(s.ctx, s.owner, application.ID, domain.ApplicationStatusApproved, ProcessOptions{})
	s.Require().NoError(err)

	leaseStart := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	signed, err := s.svc.SetLeaseStart(s.ctx, s.owner, application.ID, leaseStart)
	s.Require().NoError(err)
	s.Equal(domain.ApplicationStatusLeaseSigned, signed.Status)
	s.Require().NotNil(signed.LeaseStartDate)
	s.True(signed.LeaseStartDate.Equal(leaseStart))

	booking, err := s.store.Bookings().ActiveByProperty(s.ctx, property.ID)
	s.Require().NoError(err)
	s.True(booking.StartDate.Equal(leaseStart))
	s.Require().NotNil(booking.EndDate)
	s.True(booking.EndDate.Equal(leaseStart.AddDate(1, 0, 0)))

	stored, err := s.store.Properties().GetByID(s.ctx, property.ID)
	s.Require().NoError(err)
	s.Equal(domain.PropertyStatusOccupied, stored.Status)
}

func (s *ApplicationServiceSuite) TestTerminalStatesRefuseTransitions() {
	property := s.seedProperty()
	application := s.submit(property)

	_, err := s.svc.Process(s.ctx, s.owner, application.ID, domain.ApplicationStatusCancelled, ProcessOptions{})
	s.Require().NoError(err)

	_, err = s.svc.Process(s.ctx, s.owner, application.ID, domain.ApplicationStatusApproved, ProcessOptions{})
	s.Require().Error(err)
	s.True(util.IsCode(err, "VALIDATION_FAILED"))
}

func (s *ApplicationServiceSuite) TestCancelHasNoSideEffects() {
	property := s.seedProperty()
	application := s.submit(property)

	cancelled, err := s.svc.Process(s.ctx, s.owner, application.ID, domain.ApplicationStatusCancelled, ProcessOptions{})
	s.Require().NoError(err)
	s.Equal(domain.ApplicationStatusCancelled, cancelled.Status)

	stored, err := s.store.Properties().GetByID(s.ctx, property.ID)
	s.Require().NoError(err)
	s.Equal(domain.PropertyStatusAvailable, stored.Status)

	_, err = s.store.Bookings().FindForPair(s.ctx, property.ID, s.renter.ID)
	s.Require().ErrorIs(err, pgx.ErrNoRows)
}

func (s *ApplicationServiceSuite) TestMissingApplicationIsNoOp() {
	result, err := s.svc.Process(s.ctx, s.owner, "does-not-exist", domain.ApplicationStatusApproved, ProcessOptions{})
	s.Require().NoError(err)
	s.Nil(result)
}

func (s *ApplicationServiceSuite) TestApprovalLeavesSiblingsPending() {
	property := s.seedProperty()
	application := s.submit(property)

	rival := &domain.User{
		Name: "Rival", Email: "rival@example.com", Role: domain.RoleRenter,
		EmailVerified: true, PhoneVerified: true,
		IDStatus: domain.IDStatusVerified, FullyVerified: true,
	}
	s.Require().NoError(s.store.Users().Create(s.ctx, rival))
	sibling, err := s.svc.Submit(s.ctx, rival, property.ID, "me too")
	s.Require().NoError(err)

	_, err = s.svc.Process(s.ctx, s.owner, application.ID, domain.ApplicationStatusApproved, ProcessOptions{})
	s.Require().NoError(err)

	stored, err := s.store.Applications().GetByID(s.ctx, sibling.ID)
	s.Require().NoError(err)
	s.Equal(domain.ApplicationStatusPending, stored.Status)
}

func (s *ApplicationServiceSuite) TestRepeatedTransitionIsIdempotent() {
	property := s.seedProperty()
	application := s.submit(property)

	_, err := s.svc.Process(s.ctx, s.owner, application.ID, domain.ApplicationStatusApproved, ProcessOptions{})
	s.Require().NoError(err)
	_, err = s.svc.Process(s.ctx, s.owner, application.ID, domain.ApplicationStatusApproved, ProcessOptions{})
	s.Require().NoError(err)

	bookings, err := s.store.Bookings().ListByProperty(s.ctx, property.ID)
	s.Require().NoError(err)
	s.Len(bookings, 1)
}
