package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/spec-kit/rental-service/internal/domain"
	"github.com/spec-kit/rental-service/internal/repository"
	"github.com/spec-kit/rental-service/pkg/util"
)

type PropertyServiceSuite struct {
	suite.Suite
	ctx   context.Context
	store *repository.MemoryStore
	svc   *PropertyService
	owner *domain.User
}

func TestPropertyServiceSuite(t *testing.T) {
	suite.Run(t, new(PropertyServiceSuite))
}

func (s *PropertyServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = repository.NewMemoryStore()
	s.svc = NewPropertyService(PropertyDependencies{Store: s.store, Logger: zap.NewNop()})

	s.owner = &domain.User{
		Name: "Owner", Email: "owner@example.com", Role: domain.RoleOwner,
		EmailVerified: true, PhoneVerified: true,
		IDStatus: domain.IDStatusVerified, FullyVerified: true,
	}
	s.Require().NoError(s.store.Users().Create(s.ctx, s.owner))
}

func (s *PropertyServiceSuite) create() *domain.Property {
	property, err := s.svc.Create(s.ctx, s.owner, PropertyInput{
		Title: "Loft", City: "Berlin", Bedrooms: 1, RentAmount: 950,
	})
	s.Require().NoError(err)
	return property
}

func (s *PropertyServiceSuite) TestCreateGatedByVerification() {
	unverified := &domain.User{Role: domain.RoleOwner}
	s.Require().NoError(s.store.Users().Create(s.ctx, unverified))

	_, err := s.svc.Create(s.ctx, unverified, PropertyInput{Title: "Loft", RentAmount: 950})
	s.Require().Error(err)
	s.True(util.IsCode(err, "VERIFICATION_REQUIRED"))
}

func (s *PropertyServiceSuite) TestCreateStartsAvailable() {
	property := s.create()
	s.Equal(domain.PropertyStatusAvailable, property.Status)
	s.Equal(s.owner.ID, property.OwnerID)
}

func (s *PropertyServiceSuite) TestUpdateNeverTouchesStatus() {
	property := s.create()

	// the unit is occupied through the lifecycle, not the edit form
	renterID := "tenant-1"
	property.Status = domain.PropertyStatusOccupied
	property.CurrentRenterID = &renterID
	s.Require().NoError(s.store.Properties().Update(s.ctx, property))

	updated, err := s.svc.Update(s.ctx, s.owner, property.ID, PropertyInput{
		Title: "Bigger Loft", City: "Berlin", Bedrooms: 2, RentAmount: 1100,
	})
	s.Require().NoError(err)
	s.Equal("Bigger Loft", updated.Title)
	s.Equal(domain.PropertyStatusOccupied, updated.Status)
	s.Require().NotNil(updated.CurrentRenterID)
	s.Equal(renterID, *updated.CurrentRenterID)
}

func (s *PropertyServiceSuite) TestUpdateForeignPropertyForbidden() {
	property := s.create()
	other := &domain.User{
		Name: "Other", Email: "other@example.com", Role: domain.RoleOwner,
		EmailVerified: true, PhoneVerified: true,
		IDStatus: domain.IDStatusVerified, FullyVerified: true,
	}
	s.Require().NoError(s.store.Users().Create(s.ctx, other))

	_, err := s.svc.Update(s.ctx, other, property.ID, PropertyInput{Title: "Mine now", RentAmount: 1})
	s.Require().Error(err)
	s.True(util.IsCode(err, "FORBIDDEN"))
}

func (s *PropertyServiceSuite) TestDeleteGuardReportsBlockers() {
	property := s.create()

	booking := &domain.Booking{PropertyID: property.ID, RenterID: "tenant-1", IsActive: true}
	s.Require().NoError(s.store.Bookings().Create(s.ctx, booking))
	bill := &domain.Bill{
		PropertyID: property.ID, RenterID: "tenant-1",
		Type: domain.BillTypeRent, Status: domain.BillStatusPending, Amount: 950,
	}
	s.Require().NoError(s.store.Bills().Create(s.ctx, bill))
	application := &domain.Application{
		PropertyID: property.ID, RenterID: "tenant-1",
		Status: domain.ApplicationStatusPending,
	}
	s.Require().NoError(s.store.Applications().Create(s.ctx, application))

	err := s.svc.Delete(s.ctx, s.owner, property.ID)
	s.Require().Error(err)
	s.True(util.IsCode(err, "PROPERTY_DELETE_BLOCKED"))

	domainErr := util.ToDomainError(err)
	s.Equal(1, domainErr.Details["bookings"])
	s.Equal(1, domainErr.Details["bills"])
	s.Equal(1, domainErr.Details["applications"])
	s.NotEmpty(domainErr.Details["sample_ids"])

	// nothing was removed
	_, err = s.store.Properties().GetByID(s.ctx, property.ID)
	s.Require().NoError(err)
}

func (s *PropertyServiceSuite) TestDeleteSucceedsWhenUnreferenced() {
	property := s.create()
	s.Require().NoError(s.svc.Delete(s.ctx, s.owner, property.ID))

	_, err := s.svc.Get(s.ctx, property.ID)
	s.Require().Error(err)
	s.True(util.IsCode(err, "NOT_FOUND"))
}
