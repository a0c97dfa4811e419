package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/rental-service/internal/domain"
	"github.com/spec-kit/rental-service/internal/events"
	"github.com/spec-kit/rental-service/internal/repository"
)

// NotificationService persists per-user notification rows in reaction to
// lifecycle events. Write failures are logged, never surfaced: a missing
// notification must not fail the transition that triggered it.
type NotificationService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NotificationDependencies bundles requirements for the service.
type NotificationDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	return &NotificationService{store: deps.Store, dispatcher: deps.Dispatcher, logger: deps.Logger}
}

// RegisterHandlers subscribes to events.
func (s *NotificationService) RegisterHandlers() {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Subscribe(events.EventApplicationSubmitted, s.HandleApplicationSubmitted)
	s.dispatcher.Subscribe(events.EventApplicationStatusChanged, s.HandleApplicationStatusChanged)
	s.dispatcher.Subscribe(events.EventVerificationChanged, s.HandleVerificationChanged)
	s.dispatcher.Subscribe(events.EventReactivationRequested, s.HandleReactivationRequested)
}

// HandleApplicationSubmitted notifies the property owner.
func (s *NotificationService) HandleApplicationSubmitted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ApplicationSubmittedPayload)
	if !ok {
		return nil
	}
	return s.create(ctx, &domain.Notification{
		UserID:  payload.OwnerID,
		Title:   "New application",
		Message: fmt.Sprintf("A renter applied for %s.", payload.PropertyTitle),
		Type:    domain.NotificationTypeInfo,
		Link:    "/applications/" + payload.ApplicationID,
	})
}

// HandleApplicationStatusChanged notifies the renter about the decision.
func (s *NotificationService) HandleApplicationStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ApplicationStatusChangedPayload)
	if !ok {
		return nil
	}

	notification := &domain.Notification{
		UserID: payload.RenterID,
		Link:   "/applications/" + payload.ApplicationID,
	}
	switch payload.NewStatus {
	case domain.ApplicationStatusApproved:
		notification.Title = "Application approved"
		notification.Message = fmt.Sprintf("Your application for %s was approved.", payload.PropertyTitle)
		notification.Type = domain.NotificationTypeSuccess
	case domain.ApplicationStatusRejected:
		notification.Title = "Application rejected"
		notification.Message = payload.Reason
		notification.Type = domain.NotificationTypeAlert
	case domain.ApplicationStatusLeaseSigned:
		notification.Title = "Lease signed"
		notification.Message = fmt.Sprintf("The lease for %s has been signed.", payload.PropertyTitle)
		notification.Type = domain.NotificationTypeSuccess
	default:
		notification.Title = "Application update"
		notification.Message = fmt.Sprintf("Your application for %s is now %s.", payload.PropertyTitle, strings.ToLower(string(payload.NewStatus)))
		notification.Type = domain.NotificationTypeInfo
	}
	return s.create(ctx, notification)
}

// HandleVerificationChanged notifies the user about a channel decision.
func (s *NotificationService) HandleVerificationChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.VerificationChangedPayload)
	if !ok {
		return nil
	}

	notification := &domain.Notification{
		UserID: payload.UserID,
		Link:   "/profile/verification",
	}
	if payload.Approved {
		notification.Title = "Verification approved"
		notification.Message = fmt.Sprintf("Your %s verification was approved.", payload.Channel)
		notification.Type = domain.NotificationTypeSuccess
		if payload.FullyVerified {
			notification.Message += " Your account is now fully verified."
		}
	} else {
		notification.Title = "Verification rejected"
		notification.Message = fmt.Sprintf("Your %s verification was rejected.", payload.Channel)
		if payload.Reason != "" {
			notification.Message += " Reason: " + payload.Reason
		}
		notification.Type = domain.NotificationTypeAlert
	}
	return s.create(ctx, notification)
}

// HandleReactivationRequested notifies every admin.
func (s *NotificationService) HandleReactivationRequested(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ReactivationRequestedPayload)
	if !ok {
		return nil
	}

	admins, err := s.store.Users().ListByRole(ctx, domain.RoleAdmin)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("admin lookup failed for reactivation request", zap.Error(err))
		}
		return nil
	}
	for _, admin := range admins {
		_ = s.create(ctx, &domain.Notification{
			UserID:  admin.ID,
			Title:   "Reactivation requested",
			Message: fmt.Sprintf("%s (%s) asked to reactivate their account.", payload.UserName, payload.UserEmail),
			Type:    domain.NotificationTypeInfo,
			Link:    "/admin/users/" + payload.UserID,
		})
	}
	return nil
}

func (s *NotificationService) create(ctx context.Context, notification *domain.Notification) error {
	if err := s.store.Notifications().Create(ctx, notification); err != nil {
		if s.logger != nil {
			s.logger.Warn("notification write failed",
				zap.String("user_id", notification.UserID), zap.Error(err))
		}
		return nil
	}
	return nil
}
