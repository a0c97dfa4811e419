package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/spec-kit/rental-service/internal/domain"
	"github.com/spec-kit/rental-service/internal/repository"
	"github.com/spec-kit/rental-service/pkg/util"
)

type BookingServiceSuite struct {
	suite.Suite
	ctx      context.Context
	store    *repository.MemoryStore
	svc      *BookingService
	owner    *domain.User
	renter   *domain.User
	property *domain.Property
}

func TestBookingServiceSuite(t *testing.T) {
	suite.Run(t, new(BookingServiceSuite))
}

func (s *BookingServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = repository.NewMemoryStore()
	s.svc = NewBookingService(BookingDependencies{Store: s.store, Logger: zap.NewNop()})

	s.owner = &domain.User{Name: "Owner", Email: "owner@example.com", Role: domain.RoleOwner}
	s.Require().NoError(s.store.Users().Create(s.ctx, s.owner))
	s.renter = &domain.User{Name: "Renter", Email: "renter@example.com", Role: domain.RoleRenter}
	s.Require().NoError(s.store.Users().Create(s.ctx, s.renter))

	s.property = &domain.Property{
		OwnerID: s.owner.ID, Title: "Cottage", RentAmount: 800,
		Status: domain.PropertyStatusAvailable,
	}
	s.Require().NoError(s.store.Properties().Create(s.ctx, s.property))
}

func (s *BookingServiceSuite) TestAddMarksPropertyOccupied() {
	booking, err := s.svc.Add(s.ctx, s.owner, s.property.ID, s.renter.ID, BookingInput{
		StartDate: time.Now(),
		Occupants: []domain.Occupant{{Name: "Sam", Age: 34, Relationship: "self"}},
	})
	s.Require().NoError(err)
	s.True(booking.IsActive)

	stored, err := s.store.Properties().GetByID(s.ctx, s.property.ID)
	s.Require().NoError(err)
	s.Equal(domain.PropertyStatusOccupied, stored.Status)
	s.Require().NotNil(stored.CurrentRenterID)
	s.Equal(s.renter.ID, *stored.CurrentRenterID)
}

func (s *BookingServiceSuite) TestSecondActiveBookingRefused() {
	_, err := s.svc.Add(s.ctx, s.owner, s.property.ID, s.renter.ID, BookingInput{StartDate: time.Now()})
	s.Require().NoError(err)

	_, err = s.svc.Add(s.ctx, s.owner, s.property.ID, "someone-else", BookingInput{StartDate: time.Now()})
	s.Require().Error(err)
	s.True(util.IsCode(err, "CONFLICT"))
}

func (s *BookingServiceSuite) TestCloseReleasesProperty() {
	booking, err := s.svc.Add(s.ctx, s.owner, s.property.ID, s.renter.ID, BookingInput{StartDate: time.Now()})
	s.Require().NoError(err)

	closed, err := s.svc.Close(s.ctx, s.owner, booking.ID)
	s.Require().NoError(err)
	s.False(closed.IsActive)

	stored, err := s.store.Properties().GetByID(s.ctx, s.property.ID)
	s.Require().NoError(err)
	s.Equal(domain.PropertyStatusAvailable, stored.Status)
	s.Nil(stored.CurrentRenterID)

	// the record survives as history
	kept, err := s.store.Bookings().GetByID(s.ctx, booking.ID)
	s.Require().NoError(err)
	s.False(kept.IsActive)
}

func (s *BookingServiceSuite) TestCloseIsIdempotent() {
	booking, err := s.svc.Add(s.ctx, s.owner, s.property.ID, s.renter.ID, BookingInput{StartDate: time.Now()})
	s.Require().NoError(err)

	_, err = s.svc.Close(s.ctx, s.owner, booking.ID)
	s.Require().NoError(err)
	again, err := s.svc.Close(s.ctx, s.owner, booking.ID)
	s.Require().NoError(err)
	s.False(again.IsActive)
}

func (s *BookingServiceSuite) TestUpdateEditsWindowAndOccupants() {
	booking, err := s.svc.Add(s.ctx, s.owner, s.property.ID, s.renter.ID, BookingInput{StartDate: time.Now()})
	s.Require().NoError(err)

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 6, 0)
	updated, err := s.svc.Update(s.ctx, s.owner, booking.ID, BookingInput{
		StartDate: start,
		EndDate:   &end,
		Occupants: []domain.Occupant{{Name: "Sam", Age: 34, Relationship: "self"}, {Name: "Ava", Age: 5, Relationship: "child"}},
	})
	s.Require().NoError(err)
	s.True(updated.StartDate.Equal(start))
	s.Require().NotNil(updated.EndDate)
	s.True(updated.EndDate.Equal(end))
	s.Len(updated.Occupants, 2)
}

func (s *BookingServiceSuite) TestForeignOwnerForbidden() {
	booking, err := s.svc.Add(s.ctx, s.owner, s.property.ID, s.renter.ID, BookingInput{StartDate: time.Now()})
	s.Require().NoError(err)

	other := &domain.User{Name: "Other", Email: "o2@example.com", Role: domain.RoleOwner}
	s.Require().NoError(s.store.Users().Create(s.ctx, other))

	_, err = s.svc.Close(s.ctx, other, booking.ID)
	s.Require().Error(err)
	s.True(util.IsCode(err, "FORBIDDEN"))
}
