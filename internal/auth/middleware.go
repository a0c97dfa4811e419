package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/rental-service/internal/domain"
	"github.com/spec-kit/rental-service/internal/repository"
	apperrors "github.com/spec-kit/rental-service/pkg/util"
)

const (
	principalKey = "auth_principal"
	sessionIDKey = "auth_session_id"
)

// AuthMiddleware validates bearer tokens and loads the current user.
type AuthMiddleware struct {
	tokens   *TokenManager
	sessions *SessionRegistry
	users    repository.UserRepository
	logger   *zap.Logger
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, sessions *SessionRegistry, users repository.UserRepository, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, sessions: sessions, users: users, logger: logger}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	active, err := m.sessions.IsActive(c.Context(), claims.UserID, claims.SessionID)
	if err != nil {
		// session registry unavailable: fail open, the token signature
		// and expiry still hold
		m.logger.Warn("session check failed", zap.Error(err))
	} else if !active {
		return apperrors.NewUnauthorized("session revoked")
	}

	user, err := m.users.GetByID(c.Context(), claims.UserID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, user)
	c.Locals(sessionIDKey, claims.SessionID)
	return c.Next()
}

// CurrentUser retrieves the authenticated user.
func CurrentUser(c *fiber.Ctx) (*domain.User, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	user, ok := val.(*domain.User)
	return user, ok
}

// CurrentSession retrieves the caller's session id.
func CurrentSession(c *fiber.Ctx) (string, bool) {
	val := c.Locals(sessionIDKey)
	if val == nil {
		return "", false
	}
	sessionID, ok := val.(string)
	return sessionID, ok
}
