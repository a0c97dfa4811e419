package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/rental-service/internal/auth"
	"github.com/spec-kit/rental-service/internal/domain"
	"github.com/spec-kit/rental-service/internal/repository"
	"github.com/spec-kit/rental-service/pkg/util"
)

// AuthService handles registration, login and logout. Login refuses
// inactive accounts outright; the verification gate catches any session
// that outlives a deactivation.
type AuthService struct {
	store      repository.Store
	tokens     *auth.TokenManager
	sessions   *auth.SessionRegistry
	bcryptCost int
	logger     *zap.Logger
}

// AuthServiceDependencies bundles requirements for the service.
type AuthServiceDependencies struct {
	Store      repository.Store
	Tokens     *auth.TokenManager
	Sessions   *auth.SessionRegistry
	BcryptCost int
	Logger     *zap.Logger
}

// NewAuthService constructs the service.
func NewAuthService(deps AuthServiceDependencies) *AuthService {
	return &AuthService{
		store:      deps.Store,
		tokens:     deps.Tokens,
		sessions:   deps.Sessions,
		bcryptCost: deps.BcryptCost,
		logger:     deps.Logger,
	}
}

// RegisterInput carries sign-up fields.
type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Role     domain.Role
}

// LoginResult is a successful authentication outcome.
type LoginResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// Register creates a new account. A duplicate email surfaces as CONFLICT
// from the store's unique-violation mapping.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, util.NewValidationError("email is required", nil)
	}
	if len(input.Password) < 8 {
		return nil, util.NewValidationError("password must be at least 8 characters", nil)
	}
	role := input.Role
	switch role {
	case domain.RoleOwner, domain.RoleRenter:
	case "":
		role = domain.RoleRenter
	default:
		return nil, util.NewValidationError("role must be OWNER or RENTER", nil)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, util.NewInternalError(err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		Phone:        strings.TrimSpace(input.Phone),
		PasswordHash: hash,
		Role:         role,
		IDStatus:     domain.IDStatusUnverified,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// VerifyCredentials checks an email/password pair without issuing a token.
// Inactive accounts pass: the reactivation-request flow needs to identify
// suspended callers.
func (s *AuthService) VerifyCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.store.Users().GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewUnauthorized("invalid email or password")
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, util.NewUnauthorized("invalid email or password")
	}
	return user, nil
}

// Login authenticates credentials and issues a session-bound token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.VerifyCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if user.Inactive {
		return nil, util.NewForbidden("account is deactivated")
	}

	sessionID := uuid.NewString()
	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Role, sessionID)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	if s.sessions != nil {
		if err := s.sessions.Register(ctx, user.ID, sessionID); err != nil && s.logger != nil {
			// token still works; it just cannot be force-revoked
			s.logger.Warn("session registration failed",
				zap.String("user_id", user.ID), zap.Error(err))
		}
	}
	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Logout revokes the caller's session.
func (s *AuthService) Logout(ctx context.Context, userID, sessionID string) error {
	if s.sessions == nil {
		return nil
	}
	return s.sessions.Revoke(ctx, userID, sessionID)
}

// Profile fetches the caller's account.
func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("user", map[string]any{"id": userID})
		}
		return nil, err
	}
	return user, nil
}
