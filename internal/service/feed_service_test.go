package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/spec-kit/rental-service/internal/domain"
	"github.com/spec-kit/rental-service/internal/repository"
)

type FeedServiceSuite struct {
	suite.Suite
	ctx     context.Context
	store   *repository.MemoryStore
	markers *MemoryFeedMarkers
	svc     *FeedService
	now     time.Time

	owner  *domain.User
	renter *domain.User
}

func TestFeedServiceSuite(t *testing.T) {
	suite.Run(t, new(FeedServiceSuite))
}

func (s *FeedServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = repository.NewMemoryStore()
	s.markers = NewMemoryFeedMarkers()
	s.now = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	s.svc = NewFeedService(FeedDependencies{
		Store:                 s.store,
		Markers:               s.markers,
		Logger:                zap.NewNop(),
		LeaseExpiryWindowDays: 30,
	})
	s.svc.now = func() time.Time { return s.now }

	s.owner = &domain.User{Name: "Owner", Email: "owner@example.com", Role: domain.RoleOwner}
	s.Require().NoError(s.store.Users().Create(s.ctx, s.owner))
	s.renter = &domain.User{Name: "Renter", Email: "renter@example.com", Role: domain.RoleRenter}
	s.Require().NoError(s.store.Users().Create(s.ctx, s.renter))
}

func (s *FeedServiceSuite) seedProperty() *domain.Property {
	property := &domain.Property{
		OwnerID: s.owner.ID, Title: "Canal House", City: "Utrecht",
		RentAmount: 1500, Status: domain.PropertyStatusAvailable,
	}
	s.Require().NoError(s.store.Properties().Create(s.ctx, property))
	return property
}

func (s *FeedServiceSuite) seedBill(property *domain.Property, status domain.BillStatus, due time.Time) *domain.Bill {
	bill := &domain.Bill{
		PropertyID: property.ID, RenterID: s.renter.ID,
		Type: domain.BillTypeRent, Status: status, Amount: 900, DueDate: due,
	}
	s.Require().NoError(s.store.Bills().Create(s.ctx, bill))
	return bill
}

func (s *FeedServiceSuite) feedIDs(user *domain.User) []string {
	items, err := s.svc.BuildFeed(s.ctx, user)
	s.Require().NoError(err)
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

func (s *FeedServiceSuite) TestOverdueSuppressesPending() {
	property := s.seedProperty()
	s.seedBill(property, domain.BillStatusPending, s.now.AddDate(0, 0, 5))
	s.seedBill(property, domain.BillStatusOverdue, s.now.AddDate(0, 0, -5))

	ids := s.feedIDs(s.renter)
	s.Contains(ids, "overdue-bills")
	for _, id := range ids {
		s.NotContains(id, "pending-")
	}
}

func (s *FeedServiceSuite) TestPendingBillUsesEarliestID() {
	property := s.seedProperty()
	later := s.seedBill(property, domain.BillStatusPending, s.now.AddDate(0, 0, 20))
	earliest := s.seedBill(property, domain.BillStatusPending, s.now.AddDate(0, 0, 3))

	ids := s.feedIDs(s.renter)
	s.Contains(ids, "pending-"+earliest.ID)
	s.NotContains(ids, "pending-"+later.ID)
}

func (s *FeedServiceSuite) TestPaidBillsAreQuiet() {
	property := s.seedProperty()
	s.seedBill(property, domain.BillStatusPaid, s.now)

	s.Empty(s.feedIDs(s.renter))
}

func (s *FeedServiceSuite) TestRenterSeesApplicationUpdates() {
	property := s.seedProperty()
	application := &domain.Application{
		PropertyID: property.ID, RenterID: s.renter.ID,
		Status: domain.ApplicationStatusApproved,
	}
	s.Require().NoError(s.store.Applications().Create(s.ctx, application))
	pendingApp := &domain.Application{
		PropertyID: property.ID, RenterID: s.renter.ID,
		Status: domain.ApplicationStatusPending,
	}
	s.Require().NoError(s.store.Applications().Create(s.ctx, pendingApp))

	ids := s.feedIDs(s.renter)
	s.Contains(ids, "app-"+application.ID)
	// a still-pending application is not an update
	s.NotContains(ids, "app-"+pendingApp.ID)
}

func (s *FeedServiceSuite) TestOwnerSeesNewApplications() {
	property := s.seedProperty()
	application := &domain.Application{
		PropertyID: property.ID, RenterID: s.renter.ID,
		Status: domain.ApplicationStatusPending,
	}
	s.Require().NoError(s.store.Applications().Create(s.ctx, application))

	ids := s.feedIDs(s.owner)
	s.Contains(ids, "new-app-"+application.ID)
}

func (s *FeedServiceSuite) TestExpiringLeaseWindow() {
	property := s.seedProperty()
	cases := []struct {
		name    string
		endIn   time.Duration
		visible bool
	}{
		{"ends today", 2 * time.Hour, true},
		{"ends in 29 days", 29 * 24 * time.Hour, true},
		{"ends in 45 days", 45 * 24 * time.Hour, false},
		{"already ended", -24 * time.Hour, false},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			end := s.now.Add(tc.endIn)
			booking := &domain.Booking{
				PropertyID: property.ID, RenterID: s.renter.ID,
				StartDate: s.now.AddDate(-1, 0, 0), EndDate: &end, IsActive: true,
			}
			s.Require().NoError(s.store.Bookings().Create(s.ctx, booking))

			ids := s.feedIDs(s.owner)
			if tc.visible {
				s.Contains(ids, "expiring-lease")
			} else {
				s.NotContains(ids, "expiring-lease")
			}

			booking.IsActive = false
			s.Require().NoError(s.store.Bookings().Update(s.ctx, booking))
		})
	}
}

func (s *FeedServiceSuite) TestMarkersSurviveRecomputation() {
	property := s.seedProperty()
	s.seedBill(property, domain.BillStatusOverdue, s.now.AddDate(0, 0, -1))

	items, err := s.svc.BuildFeed(s.ctx, s.renter)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.False(items[0].IsRead)

	s.Require().NoError(s.svc.MarkRead(s.ctx, s.renter, "overdue-bills"))

	items, err = s.svc.BuildFeed(s.ctx, s.renter)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.True(items[0].IsRead)
}

func (s *FeedServiceSuite) TestDismissalHidesSyntheticItems() {
	property := s.seedProperty()
	s.seedBill(property, domain.BillStatusOverdue, s.now.AddDate(0, 0, -1))

	s.Require().NoError(s.svc.ClearAll(s.ctx, s.renter))

	s.Empty(s.feedIDs(s.renter))
}

func (s *FeedServiceSuite) TestClearAllDeletesPersistedRows() {
	s.Require().NoError(s.store.Notifications().Create(s.ctx, &domain.Notification{
		UserID: s.renter.ID, Title: "Welcome", Type: domain.NotificationTypeInfo,
	}))

	s.Require().NoError(s.svc.ClearAll(s.ctx, s.renter))

	rows, err := s.store.Notifications().ListByUser(s.ctx, s.renter.ID)
	s.Require().NoError(err)
	s.Empty(rows)
}

func (s *FeedServiceSuite) TestMarkReadWritesThroughForPersistedRows() {
	notification := &domain.Notification{
		UserID: s.renter.ID, Title: "Welcome", Type: domain.NotificationTypeInfo,
	}
	s.Require().NoError(s.store.Notifications().Create(s.ctx, notification))

	s.Require().NoError(s.svc.MarkRead(s.ctx, s.renter, notification.ID))

	rows, err := s.store.Notifications().ListByUser(s.ctx, s.renter.ID)
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.True(rows[0].IsRead)
}

func (s *FeedServiceSuite) TestUnreadSortBeforeRead() {
	property := s.seedProperty()
	s.seedBill(property, domain.BillStatusOverdue, s.now.AddDate(0, 0, -1))
	s.Require().NoError(s.store.Notifications().Create(s.ctx, &domain.Notification{
		UserID: s.renter.ID, Title: "Old news", Type: domain.NotificationTypeInfo, IsRead: true,
	}))

	items, err := s.svc.BuildFeed(s.ctx, s.renter)
	s.Require().NoError(err)
	s.Require().Len(items, 2)
	s.False(items[0].IsRead)
	s.True(items[1].IsRead)
}

func (s *FeedServiceSuite) TestMarkersAreScopedPerUser() {
	property := s.seedProperty()
	s.seedBill(property, domain.BillStatusOverdue, s.now.AddDate(0, 0, -1))

	otherRenter := &domain.User{Name: "Other", Email: "other@example.com", Role: domain.RoleRenter}
	s.Require().NoError(s.store.Users().Create(s.ctx, otherRenter))
	bill := &domain.Bill{
		PropertyID: property.ID, RenterID: otherRenter.ID,
		Type: domain.BillTypeRent, Status: domain.BillStatusOverdue,
		Amount: 700, DueDate: s.now.AddDate(0, 0, -2),
	}
	s.Require().NoError(s.store.Bills().Create(s.ctx, bill))

	s.Require().NoError(s.svc.ClearAll(s.ctx, s.renter))

	s.Empty(s.feedIDs(s.renter))
	s.Contains(s.feedIDs(otherRenter), "overdue-bills")
}
