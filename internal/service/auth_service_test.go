package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/rental-service/internal/auth"
	"github.com/spec-kit/rental-service/internal/domain"
	"github.com/spec-kit/rental-service/internal/repository"
	"github.com/spec-kit/rental-service/pkg/util"
)

type AuthServiceSuite struct {
	suite.Suite
	ctx   context.Context
	store *repository.MemoryStore
	svc   *AuthService
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}

func (s *AuthServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = repository.NewMemoryStore()
	s.svc = NewAuthService(AuthServiceDependencies{
		Store:      s.store,
		Tokens:     auth.NewTokenManager("test-secret", 15),
		BcryptCost: bcrypt.MinCost,
		Logger:     zap.NewNop(),
	})
}

func (s *AuthServiceSuite) register(email string, role domain.Role) *domain.User {
	user, err := s.svc.Register(s.ctx, RegisterInput{
		Name: "Test User", Email: email, Password: "correct-horse", Role: role,
	})
	s.Require().NoError(err)
	return user
}

func (s *AuthServiceSuite) TestRegisterDefaultsToRenter() {
	user := s.register("new@example.com", "")
	s.Equal(domain.RoleRenter, user.Role)
	s.Equal(domain.IDStatusUnverified, user.IDStatus)
	s.False(user.FullyVerified)
	s.NotEqual("correct-horse", user.PasswordHash)
}

func (s *AuthServiceSuite) TestRegisterLowercasesEmail() {
	user := s.register("Mixed.Case@Example.COM", domain.RoleOwner)
	s.Equal("mixed.case@example.com", user.Email)

	// login with the original casing still resolves
	result, err := s.svc.Login(s.ctx, "Mixed.Case@Example.COM", "correct-horse")
	s.Require().NoError(err)
	s.Equal(user.ID, result.User.ID)
}

func (s *AuthServiceSuite) TestRegisterRejectsAdminRole() {
	_, err := s.svc.Register(s.ctx, RegisterInput{
		Email: "boss@example.com", Password: "correct-horse", Role: domain.RoleAdmin,
	})
	s.Require().Error(err)
	s.True(util.IsCode(err, "VALIDATION_FAILED"))
}

func (s *AuthServiceSuite) TestRegisterRejectsShortPassword() {
	_, err := s.svc.Register(s.ctx, RegisterInput{Email: "x@example.com", Password: "short"})
	s.Require().Error(err)
	s.True(util.IsCode(err, "VALIDATION_FAILED"))
}

func (s *AuthServiceSuite) TestDuplicateEmailConflicts() {
	s.register("dup@example.com", domain.RoleRenter)
	_, err := s.svc.Register(s.ctx, RegisterInput{Email: "dup@example.com", Password: "correct-horse"})
	s.Require().Error(err)
	s.True(util.IsCode(err, "CONFLICT"))
}

func (s *AuthServiceSuite) TestLoginIssuesToken() {
	user := s.register("login@example.com", domain.RoleRenter)

	result, err := s.svc.Login(s.ctx, "login@example.com", "correct-horse")
	s.Require().NoError(err)
	s.Equal(user.ID, result.User.ID)
	s.NotEmpty(result.Token)
	s.False(result.ExpiresAt.IsZero())
}

func (s *AuthServiceSuite) TestLoginWrongPassword() {
	s.register("login@example.com", domain.RoleRenter)
	_, err := s.svc.Login(s.ctx, "login@example.com", "wrong-password")
	s.Require().Error(err)
	s.True(util.IsCode(err, "UNAUTHORIZED"))
}

func (s *AuthServiceSuite) TestLoginRefusesInactiveAccount() {
	user := s.register("gone@example.com", domain.RoleRenter)
	user.Inactive = true
	s.Require().NoError(s.store.Users().Update(s.ctx, user))

	_, err := s.svc.Login(s.ctx, "gone@example.com", "correct-horse")
	s.Require().Error(err)
	s.True(util.IsCode(err, "FORBIDDEN"))

	// credentials still verify, so the account can ask to come back
	verified, err := s.svc.VerifyCredentials(s.ctx, "gone@example.com", "correct-horse")
	s.Require().NoError(err)
	s.Equal(user.ID, verified.ID)
}
