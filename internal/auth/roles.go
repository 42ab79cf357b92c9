package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/platformhq/support-service/internal/domain"
	apperrors "github.com/platformhq/support-service/pkg/util"
)

// RequireAgent rejects callers that are not platform agents.
func RequireAgent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if principal.UserType != domain.UserTypePlatformAgent || principal.Agent == nil {
			return apperrors.NewForbidden("agent access required")
		}
		return c.Next()
	}
}

// RequireRole restricts a route to agents holding one of the given roles.
func RequireRole(roles ...domain.AgentRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if principal.Agent == nil {
			return apperrors.NewForbidden("agent access required")
		}
		for _, role := range roles {
			if principal.Agent.Role == role {
				return c.Next()
			}
		}
		return apperrors.NewForbidden("insufficient role")
	}
}
