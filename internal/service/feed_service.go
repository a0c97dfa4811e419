package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/rental-service/internal/domain"
	"github.com/spec-kit/rental-service/internal/repository"
)

// Synthetic feed item id prefixes. Ids are deterministic from the source
// entity so read/dismiss markers survive recomputation.
const (
	feedIDOverdueBills  = "overdue-bills"
	feedIDExpiringLease = "expiring-lease"
	feedIDPendingPrefix = "pending-"
	feedIDAppPrefix     = "app-"
	feedIDNewAppPrefix  = "new-app-"
)

// FeedService assembles the per-user notification feed: persisted rows
// merged with items derived on the fly from bills, applications and
// bookings. The feed is recomputed in full on every read.
type FeedService struct {
	store   repository.Store
	markers FeedMarkers
	logger  *zap.Logger

	leaseWindow time.Duration
	now         func() time.Time
}

// FeedDependencies bundles requirements for the service.
type FeedDependencies struct {
	Store                 repository.Store
	Markers               FeedMarkers
	Logger                *zap.Logger
	LeaseExpiryWindowDays int
}

// NewFeedService constructs the service.
func NewFeedService(deps FeedDependencies) *FeedService {
	windowDays := deps.LeaseExpiryWindowDays
	if windowDays <= 0 {
		windowDays = 30
	}
	return &FeedService{
		store:       deps.Store,
		markers:     deps.Markers,
		logger:      deps.Logger,
		leaseWindow: time.Duration(windowDays) * 24 * time.Hour,
		now:         time.Now,
	}
}

// BuildFeed returns the user's current feed: dismissed items filtered out,
// unread items first, otherwise in source order. Marker and synthetic
// source failures degrade the feed instead of failing the read.
func (s *FeedService) BuildFeed(ctx context.Context, user *domain.User) ([]domain.FeedItem, error) {
	persisted, err := s.store.Notifications().ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	readIDs := s.readSet(ctx, user.ID)
	dismissedIDs := s.dismissedSet(ctx, user.ID)

	items := make([]domain.FeedItem, 0, len(persisted))
	for _, row := range persisted {
		items = append(items, domain.FeedItem{
			ID:        row.ID,
			Kind:      domain.FeedItemPersisted,
			Title:     row.Title,
			Message:   row.Message,
			Type:      row.Type,
			Link:      row.Link,
			IsRead:    row.IsRead,
			CreatedAt: row.CreatedAt,
		})
	}

	switch user.Role {
	case domain.RoleRenter:
		items = append(items, s.renterItems(ctx, user)...)
	case domain.RoleOwner:
		items = append(items, s.ownerItems(ctx, user)...)
	}

	visible := items[:0]
	for _, item := range items {
		if _, gone := dismissedIDs[item.ID]; gone {
			continue
		}
		if _, read := readIDs[item.ID]; read {
			item.IsRead = true
		}
		visible = append(visible, item)
	}

	sort.SliceStable(visible, func(i, j int) bool {
		return !visible[i].IsRead && visible[j].IsRead
	})
	return visible, nil
}

// MarkRead records a single item as read. Persisted rows get the flag
// written through to the store; synthetic ids live in markers only.
func (s *FeedService) MarkRead(ctx context.Context, user *domain.User, itemID string) error {
	if err := s.markers.MarkRead(ctx, user.ID, itemID); err != nil {
		return err
	}
	if isSyntheticFeedID(itemID) {
		return nil
	}
	return s.store.Notifications().MarkRead(ctx, itemID)
}

// MarkAllRead marks every currently visible item as read.
func (s *FeedService) MarkAllRead(ctx context.Context, user *domain.User) error {
	items, err := s.BuildFeed(ctx, user)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	if err := s.markers.MarkRead(ctx, user.ID, ids...); err != nil {
		return err
	}
	return s.store.Notifications().MarkAllRead(ctx, user.ID)
}

// ClearAll dismisses every visible item and deletes the user's persisted
// rows. Synthetic items only gain a dismissal marker; they reappear if the
// marker set is cleared while the underlying condition persists.
func (s *FeedService) ClearAll(ctx context.Context, user *domain.User) error {
	items, err := s.BuildFeed(ctx, user)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	if err := s.markers.Dismiss(ctx, user.ID, ids...); err != nil {
		return err
	}
	return s.store.Notifications().DeleteByUser(ctx, user.ID)
}

// renterItems derives bill and application items for a renter. Overdue
// bills take priority over pending ones; the two are never shown together.
func (s *FeedService) renterItems(ctx context.Context, user *domain.User) []domain.FeedItem {
	var items []domain.FeedItem
	now := s.now()

	bills, err := s.store.Bills().ListByRenter(ctx, user.ID)
	if err != nil {
		s.warn("bill lookup failed during feed build", user.ID, err)
	} else {
		var overdue, pending []domain.Bill
		for _, bill := range bills {
			switch bill.Status {
			case domain.BillStatusOverdue:
				overdue = append(overdue, bill)
			case domain.BillStatusPending:
				pending = append(pending, bill)
			}
		}
		switch {
		case len(overdue) > 0:
			items = append(items, domain.FeedItem{
				ID:        feedIDOverdueBills,
				Kind:      domain.FeedItemSynthetic,
				Title:     "Overdue bills",
				Message:   fmt.Sprintf("You have %d overdue bill(s). Please settle them as soon as possible.", len(overdue)),
				Type:      domain.NotificationTypeAlert,
				Link:      "/bills",
				CreatedAt: now,
			})
		case len(pending) > 0:
			earliest := pending[0]
			for _, bill := range pending[1:] {
				if bill.DueDate.Before(earliest.DueDate) {
					earliest = bill
				}
			}
			items = append(items, domain.FeedItem{
				ID:        feedIDPendingPrefix + earliest.ID,
				Kind:      domain.FeedItemSynthetic,
				Title:     "Upcoming bill",
				Message:   fmt.Sprintf("A bill of %.2f is due on %s.", earliest.Amount, earliest.DueDate.Format("2006-01-02")),
				Type:      domain.NotificationTypeInfo,
				Link:      "/bills",
				CreatedAt: now,
			})
		}
	}

	applications, err := s.store.Applications().ListByRenter(ctx, user.ID)
	if err != nil {
		s.warn("application lookup failed during feed build", user.ID, err)
		return items
	}
	titles := s.propertyTitles(ctx, applications)
	for _, application := range applications {
		if application.Status == domain.ApplicationStatusPending {
			continue
		}
		items = append(items, domain.FeedItem{
			ID:        feedIDAppPrefix + application.ID,
			Kind:      domain.FeedItemSynthetic,
			Title:     "Application update",
			Message:   fmt.Sprintf("Your application for %s is %s.", titles[application.PropertyID], strings.ToLower(string(application.Status))),
			Type:      applicationFeedType(application.Status),
			Link:      "/applications/" + application.ID,
			CreatedAt: application.UpdatedAt,
		})
	}
	return items
}

// ownerItems derives new-application and lease-expiry items for an owner.
func (s *FeedService) ownerItems(ctx context.Context, user *domain.User) []domain.FeedItem {
	var items []domain.FeedItem

	applications, err := s.store.Applications().ListByOwner(ctx, user.ID)
	if err != nil {
		s.warn("application lookup failed during feed build", user.ID, err)
	} else {
		titles := s.propertyTitles(ctx, applications)
		for _, application := range applications {
			if application.Status != domain.ApplicationStatusPending {
				continue
			}
			items = append(items, domain.FeedItem{
				ID:        feedIDNewAppPrefix + application.ID,
				Kind:      domain.FeedItemSynthetic,
				Title:     "New application",
				Message:   fmt.Sprintf("A renter applied for %s.", titles[application.PropertyID]),
				Type:      domain.NotificationTypeInfo,
				Link:      "/applications/" + application.ID,
				CreatedAt: application.CreatedAt,
			})
		}
	}

	bookings, err := s.store.Bookings().ListActiveByOwner(ctx, user.ID)
	if err != nil {
		s.warn("booking lookup failed during feed build", user.ID, err)
		return items
	}
	now := s.now()
	var earliestEnd *time.Time
	for _, booking := range bookings {
		if booking.EndDate == nil {
			continue
		}
		until := booking.EndDate.Sub(now)
		if until < 0 || until > s.leaseWindow {
			continue
		}
		if earliestEnd == nil || booking.EndDate.Before(*earliestEnd) {
			end := *booking.EndDate
			earliestEnd = &end
		}
	}
	if earliestEnd != nil {
		items = append(items, domain.FeedItem{
			ID:        feedIDExpiringLease,
			Kind:      domain.FeedItemSynthetic,
			Title:     "Lease expiring soon",
			Message:   fmt.Sprintf("A lease on one of your properties ends on %s.", earliestEnd.Format("2006-01-02")),
			Type:      domain.NotificationTypeAlert,
			Link:      "/bookings",
			CreatedAt: now,
		})
	}
	return items
}

// propertyTitles resolves titles for the properties referenced by a batch
// of applications. Missing properties resolve to a placeholder.
func (s *FeedService) propertyTitles(ctx context.Context, applications []domain.Application) map[string]string {
	titles := make(map[string]string)
	for _, application := range applications {
		if _, seen := titles[application.PropertyID]; seen {
			continue
		}
		property, err := s.store.Properties().GetByID(ctx, application.PropertyID)
		if err != nil {
			titles[application.PropertyID] = "a property"
			continue
		}
		titles[application.PropertyID] = property.Title
	}
	return titles
}

func (s *FeedService) readSet(ctx context.Context, userID string) map[string]struct{} {
	set, err := s.markers.Read(ctx, userID)
	if err != nil {
		s.warn("read markers unavailable", userID, err)
		return map[string]struct{}{}
	}
	return set
}

func (s *FeedService) dismissedSet(ctx context.Context, userID string) map[string]struct{} {
	set, err := s.markers.Dismissed(ctx, userID)
	if err != nil {
		s.warn("dismissal markers unavailable", userID, err)
		return map[string]struct{}{}
	}
	return set
}

func (s *FeedService) warn(message, userID string, err error) {
	if s.logger != nil {
		s.logger.Warn(message, zap.String("user_id", userID), zap.Error(err))
	}
}

func applicationFeedType(status domain.ApplicationStatus) domain.NotificationType {
	switch status {
	case domain.ApplicationStatusApproved, domain.ApplicationStatusLeaseSigned, domain.ApplicationStatusActive:
		return domain.NotificationTypeSuccess
	case domain.ApplicationStatusRejected:
		return domain.NotificationTypeAlert
	default:
		return domain.NotificationTypeInfo
	}
}

func isSyntheticFeedID(id string) bool {
	return id == feedIDOverdueBills ||
		id == feedIDExpiringLease ||
		strings.HasPrefix(id, feedIDPendingPrefix) ||
		strings.HasPrefix(id, feedIDAppPrefix) ||
		strings.HasPrefix(id, feedIDNewAppPrefix)
}
