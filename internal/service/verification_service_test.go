package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/spec-kit/rental-service/internal/domain"
	"github.com/spec-kit/rental-service/internal/events"
	"github.com/spec-kit/rental-service/internal/repository"
	"github.com/spec-kit/rental-service/pkg/util"
)

type fakeDocumentStore struct {
	deleted []string
	signErr error
}

func (f *fakeDocumentStore) SignedURL(_ context.Context, path string) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}
	return "https://docs.test/" + path + "?signed=1", nil
}

func (f *fakeDocumentStore) Delete(_ context.Context, path string) error {
	f.deleted = append(f.deleted, path)
	return nil
}

type fakeSessionRevoker struct {
	revoked []string
	err     error
}

func (f *fakeSessionRevoker) RevokeAll(_ context.Context, userID string) error {
	if f.err != nil {
		return f.err
	}
	f.revoked = append(f.revoked, userID)
	return nil
}

type VerificationServiceSuite struct {
	suite.Suite
	ctx       context.Context
	store     *repository.MemoryStore
	documents *fakeDocumentStore
	sessions  *fakeSessionRevoker
	svc       *VerificationService

	admin *domain.User
	user  *domain.User
}

func TestVerificationServiceSuite(t *testing.T) {
	suite.Run(t, new(VerificationServiceSuite))
}

func (s *VerificationServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = repository.NewMemoryStore()
	s.documents = &fakeDocumentStore{}
	s.sessions = &fakeSessionRevoker{}
	dispatcher := events.NewInMemoryDispatcher()
	notifications := NewNotificationService(NotificationDependencies{
		Store: s.store, Dispatcher: dispatcher, Logger: zap.NewNop(),
	})
	notifications.RegisterHandlers()
	s.svc = NewVerificationService(VerificationDependencies{
		Store:      s.store,
		Documents:  s.documents,
		Sessions:   s.sessions,
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
	})

	s.admin = &domain.User{Name: "Admin", Email: "admin@example.com", Role: domain.RoleAdmin}
	s.Require().NoError(s.store.Users().Create(s.ctx, s.admin))
	s.user = &domain.User{Name: "Renter", Email: "renter@example.com", Role: domain.RoleRenter}
	s.Require().NoError(s.store.Users().Create(s.ctx, s.user))
}

func (s *VerificationServiceSuite) TestCompositeRecomputedOnEveryChannelWrite() {
	_, err := s.svc.ApproveChannel(s.ctx, s.admin, s.user.ID, ChannelEmail)
	s.Require().NoError(err)
	_, err = s.svc.ApproveChannel(s.ctx, s.admin, s.user.ID, ChannelPhone)
	s.Require().NoError(err)

	stored, err := s.store.Users().GetByID(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.False(stored.FullyVerified)

	_, err = s.svc.SubmitIDDocument(s.ctx, stored, "docs/renter.pdf")
	s.Require().NoError(err)
	updated, err := s.svc.ApproveChannel(s.ctx, s.admin, s.user.ID, ChannelID)
	s.Require().NoError(err)
	s.True(updated.FullyVerified)
}

func (s *VerificationServiceSuite) TestIDApprovalRequiresPendingDocument() {
	_, err := s.svc.ApproveChannel(s.ctx, s.admin, s.user.ID, ChannelID)
	s.Require().Error(err)
	s.True(util.IsCode(err, "VALIDATION_FAILED"))
}

func (s *VerificationServiceSuite) TestSubmitDocumentMovesToPending() {
	updated, err := s.svc.SubmitIDDocument(s.ctx, s.user, "docs/renter.pdf")
	s.Require().NoError(err)
	s.Equal(domain.IDStatusPending, updated.IDStatus)
	s.Require().NotNil(updated.IDDocumentPath)

	// a document under review cannot be replaced
	_, err = s.svc.SubmitIDDocument(s.ctx, updated, "docs/other.pdf")
	s.Require().Error(err)
	s.True(util.IsCode(err, "CONFLICT"))
}

func (s *VerificationServiceSuite) TestRejectIDDeletesDocument() {
	submitted, err := s.svc.SubmitIDDocument(s.ctx, s.user, "docs/renter.pdf")
	s.Require().NoError(err)
	s.Require().NotNil(submitted.IDDocumentPath)

	rejected, err := s.svc.RejectChannel(s.ctx, s.admin, s.user.ID, ChannelID, "unreadable scan")
	s.Require().NoError(err)
	s.Equal(domain.IDStatusRejected, rejected.IDStatus)
	s.Nil(rejected.IDDocumentPath)
	s.Nil(rejected.IDDocumentURL)
	s.Equal([]string{"docs/renter.pdf"}, s.documents.deleted)

	// rejection allows a fresh upload
	again, err := s.svc.SubmitIDDocument(s.ctx, rejected, "docs/renter-v2.pdf")
	s.Require().NoError(err)
	s.Equal(domain.IDStatusPending, again.IDStatus)
}

func (s *VerificationServiceSuite) TestRejectionNotifiesWithReason() {
	_, err := s.svc.RejectChannel(s.ctx, s.admin, s.user.ID, ChannelPhone, "number unreachable")
	s.Require().NoError(err)

	rows, err := s.store.Notifications().ListByUser(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Contains(rows[0].Message, "number unreachable")
}

func (s *VerificationServiceSuite) TestUnknownChannelRefused() {
	_, err := s.svc.ApproveChannel(s.ctx, s.admin, s.user.ID, "fax")
	s.Require().Error(err)
	s.True(util.IsCode(err, "VALIDATION_FAILED"))
}

func (s *VerificationServiceSuite) TestDeactivateResetsChannelsAndRevokesSessions() {
	_, err := s.svc.ApproveChannel(s.ctx, s.admin, s.user.ID, ChannelEmail)
	s.Require().NoError(err)
	_, err = s.svc.SubmitIDDocument(s.ctx, s.user, "docs/renter.pdf")
	s.Require().NoError(err)

	deactivated, err := s.svc.Deactivate(s.ctx, s.admin, s.user.ID, true)
	s.Require().NoError(err)
	s.True(deactivated.Inactive)
	s.True(deactivated.AllowReactivationRequest)
	s.False(deactivated.EmailVerified)
	s.False(deactivated.PhoneVerified)
	s.Equal(domain.IDStatusUnverified, deactivated.IDStatus)
	s.False(deactivated.FullyVerified)
	s.Nil(deactivated.IDDocumentPath)
	s.Equal([]string{s.user.ID}, s.sessions.revoked)
}

func (s *VerificationServiceSuite) TestDeactivateToleratesRevocationFailure() {
	s.sessions.err = errors.New("redis down")

	deactivated, err := s.svc.Deactivate(s.ctx, s.admin, s.user.ID, false)
	s.Require().NoError(err)
	s.True(deactivated.Inactive)
}

func (s *VerificationServiceSuite) TestReactivationRequestNotifiesAdmins() {
	_, err := s.svc.Deactivate(s.ctx, s.admin, s.user.ID, true)
	s.Require().NoError(err)

	suspended, err := s.store.Users().GetByID(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Require().NoError(s.svc.RequestReactivation(s.ctx, suspended))

	rows, err := s.store.Notifications().ListByUser(s.ctx, s.admin.ID)
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Contains(rows[0].Message, "renter@example.com")
}

func (s *VerificationServiceSuite) TestReactivationRequestNeedsPermission() {
	_, err := s.svc.Deactivate(s.ctx, s.admin, s.user.ID, false)
	s.Require().NoError(err)

	suspended, err := s.store.Users().GetByID(s.ctx, s.user.ID)
	s.Require().NoError(err)
	err = s.svc.RequestReactivation(s.ctx, suspended)
	s.Require().Error(err)
	s.True(util.IsCode(err, "FORBIDDEN"))
}

func (s *VerificationServiceSuite) TestDocumentURL() {
	_, err := s.svc.SubmitIDDocument(s.ctx, s.user, "docs/renter.pdf")
	s.Require().NoError(err)

	url, err := s.svc.DocumentURL(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Contains(url, "docs/renter.pdf")

	_, err = s.svc.DocumentURL(s.ctx, s.admin.ID)
	s.Require().Error(err)
	s.True(util.IsCode(err, "NOT_FOUND"))
}
