package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/platformhq/support-service/internal/domain"
	"github.com/platformhq/support-service/internal/repository"
	apperrors "github.com/platformhq/support-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller. Agent is loaded from the
// store for platform-agent tokens; tenant-admin principals carry only the
// claims from the token.
type Principal struct {
	UserType domain.UserType
	UserID   string
	TenantID *string
	Agent    *domain.PlatformAgent
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens *TokenManager
	agents repository.AgentRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, agents repository.AgentRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, agents: agents}
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

	principal := &Principal{
		UserType: claims.UserType,
		UserID:   claims.SubjectID,
		TenantID: claims.TenantID,
	}

	switch claims.UserType {
	case domain.UserTypePlatformAgent:
		agent, err := m.agents.GetByID(c.Context(), claims.SubjectID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewUnauthorized("agent not found")
			}
			return apperrors.ToDomainError(err)
		}
		if !agent.IsActive {
			return apperrors.NewUnauthorized("agent deactivated")
		}
		principal.Agent = agent
	case domain.UserTypeTenantAdmin:
		if claims.TenantID == nil {
			return apperrors.NewUnauthorized("tenant claim missing")
		}
	default:
		return apperrors.NewUnauthorized("unknown subject")
	}

	c.Locals(principalKey, principal)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
