package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/rental-service/internal/domain"
	"github.com/spec-kit/rental-service/internal/events"
	"github.com/spec-kit/rental-service/internal/repository"
	"github.com/spec-kit/rental-service/internal/storage"
	"github.com/spec-kit/rental-service/pkg/util"
)

// Verification channels reviewed by admins.
const (
	ChannelEmail = "email"
	ChannelPhone = "phone"
	ChannelID    = "id"
)

// SessionRevoker force-terminates a user's live sessions.
type SessionRevoker interface {
	RevokeAll(ctx context.Context, userID string) error
}

// VerificationService owns the per-channel verification state, the derived
// trust flag, and account deactivation.
type VerificationService struct {
	store      repository.Store
	documents  storage.DocumentStore
	sessions   SessionRevoker
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// VerificationDependencies bundles requirements for the service.
type VerificationDependencies struct {
	Store      repository.Store
	Documents  storage.DocumentStore
	Sessions   SessionRevoker
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewVerificationService constructs the service.
func NewVerificationService(deps VerificationDependencies) *VerificationService {
	return &VerificationService{
		store:      deps.Store,
		documents:  deps.Documents,
		sessions:   deps.Sessions,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// SubmitIDDocument records an uploaded identity document and queues the id
// channel for admin review. Re-submission after a rejection is allowed; a
// document already VERIFIED or PENDING cannot be replaced from here.
func (s *VerificationService) SubmitIDDocument(ctx context.Context, user *domain.User, documentPath string) (*domain.User, error) {
	switch user.IDStatus {
	case domain.IDStatusUnverified, domain.IDStatusRejected:
	default:
		return nil, util.NewConflict("identity document already under review or approved", map[string]any{
			"id_status": user.IDStatus,
		})
	}

	user.IDDocumentPath = &documentPath
	user.IDDocumentURL = nil
	user.IDStatus = domain.IDStatusPending
	user.FullyVerified = domain.CompositeVerified(user.EmailVerified, user.PhoneVerified, user.IDStatus)
	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ApproveChannel marks one verification channel as passed and recomputes
// the derived trust flag in the same write.
func (s *VerificationService) ApproveChannel(ctx context.Context, admin *domain.User, userID, channel string) (*domain.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch channel {
	case ChannelEmail:
		user.EmailVerified = true
	case ChannelPhone:
		user.PhoneVerified = true
	case ChannelID:
		if user.IDStatus != domain.IDStatusPending {
			return nil, util.NewValidationError("no identity document awaiting review", nil)
		}
		user.IDStatus = domain.IDStatusVerified
	default:
		return nil, util.NewValidationError(fmt.Sprintf("unknown verification channel %q", channel), nil)
	}

	user.FullyVerified = domain.CompositeVerified(user.EmailVerified, user.PhoneVerified, user.IDStatus)
	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, err
	}

	s.publish(ctx, admin, events.Event{
		Type: events.EventVerificationChanged,
		Payload: events.VerificationChangedPayload{
			UserID:        user.ID,
			Channel:       channel,
			Approved:      true,
			FullyVerified: user.FullyVerified,
		},
	})
	return user, nil
}

// RejectChannel marks a channel as failed. Rejecting the id channel also
// removes the stored document so the user can start over with a fresh
// upload.
func (s *VerificationService) RejectChannel(ctx context.Context, admin *domain.User, userID, channel, reason string) (*domain.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch channel {
	case ChannelEmail:
		user.EmailVerified = false
	case ChannelPhone:
		user.PhoneVerified = false
	case ChannelID:
		s.removeDocument(ctx, user)
		user.IDStatus = domain.IDStatusRejected
	default:
		return nil, util.NewValidationError(fmt.Sprintf("unknown verification channel %q", channel), nil)
	}

	user.FullyVerified = domain.CompositeVerified(user.EmailVerified, user.PhoneVerified, user.IDStatus)
	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, err
	}

	s.publish(ctx, admin, events.Event{
		Type: events.EventVerificationChanged,
		Payload: events.VerificationChangedPayload{
			UserID:        user.ID,
			Channel:       channel,
			Approved:      false,
			Reason:        reason,
			FullyVerified: user.FullyVerified,
		},
	})
	return user, nil
}

// DocumentURL returns a time-limited signed link to the user's pending
// identity document for admin review.
func (s *VerificationService) DocumentURL(ctx context.Context, userID string) (string, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.IDDocumentPath == nil {
		return "", util.NewNotFound("identity document", map[string]any{"user_id": userID})
	}
	return s.documents.SignedURL(ctx, *user.IDDocumentPath)
}

// Deactivate suspends an account: verification channels reset, the stored
// document is removed, and live sessions are revoked. Session revocation is
// best effort; a registry outage must not keep the account active.
func (s *VerificationService) Deactivate(ctx context.Context, admin *domain.User, userID string, allowReactivation bool) (*domain.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.removeDocument(ctx, user)
	user.Inactive = true
	user.AllowReactivationRequest = allowReactivation
	user.EmailVerified = false
	user.PhoneVerified = false
	user.IDStatus = domain.IDStatusUnverified
	user.FullyVerified = false
	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, err
	}

	if s.sessions != nil {
		if err := s.sessions.RevokeAll(ctx, user.ID); err != nil && s.logger != nil {
			s.logger.Warn("session revocation failed after deactivation",
				zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	s.publish(ctx, admin, events.Event{
		Type:    events.EventAccountDeactivated,
		Payload: events.AccountDeactivatedPayload{UserID: user.ID},
	})
	return user, nil
}

// Reactivate lifts a suspension. Verification channels stay reset: the
// user re-verifies from scratch.
func (s *VerificationService) Reactivate(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Inactive = false
	user.AllowReactivationRequest = false
	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// RequestReactivation lets a suspended user ask admins to restore the
// account, when the suspension permits it.
func (s *VerificationService) RequestReactivation(ctx context.Context, user *domain.User) error {
	if !user.Inactive {
		return util.NewValidationError("account is already active", nil)
	}
	if !user.AllowReactivationRequest {
		return util.NewForbidden("reactivation requests are not permitted for this account")
	}

	s.publish(ctx, user, events.Event{
		Type: events.EventReactivationRequested,
		Payload: events.ReactivationRequestedPayload{
			UserID:    user.ID,
			UserName:  user.Name,
			UserEmail: user.Email,
		},
	})
	return nil
}

func (s *VerificationService) getUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("user", map[string]any{"id": userID})
		}
		return nil, err
	}
	return user, nil
}

// removeDocument clears the stored identity document, tolerating storage
// failures: the authoritative state lives on the user row.
func (s *VerificationService) removeDocument(ctx context.Context, user *domain.User) {
	if user.IDDocumentPath != nil && s.documents != nil {
		if err := s.documents.Delete(ctx, *user.IDDocumentPath); err != nil && s.logger != nil {
			s.logger.Warn("identity document cleanup failed",
				zap.String("user_id", user.ID), zap.Error(err))
		}
	}
	user.IDDocumentPath = nil
	user.IDDocumentURL = nil
}

func (s *VerificationService) publish(ctx context.Context, actor *domain.User, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	if actor != nil {
		event.ActorID = actor.ID
	}
	_ = s.dispatcher.Publish(ctx, event)
}
