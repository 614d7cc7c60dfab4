package middleware

import (
	"errors"
	"strings"

	"congregation-api/internal/config"
	"congregation-api/internal/core/domain"
	"congregation-api/internal/pkg/jwt"
	"congregation-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by AuthMiddleware
const (
	LocalPrincipalID = "principalID"
	LocalKind        = "kind"
	LocalUsername    = "username"
	LocalRole        = "role"
	LocalActor       = "actor"
)

// AuthMiddleware creates authentication middleware
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Cookie first, then Authorization header
		accessToken := c.Cookies("access_token")
		if accessToken == "" {
			authHeader := c.Get("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				accessToken = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		kind := domain.PrincipalKind(claims.Kind)
		if kind != domain.PrincipalMember && kind != domain.PrincipalAdmin {
			return response.Unauthorized(c, "Invalid access token")
		}

		c.Locals(LocalPrincipalID, claims.PrincipalID)
		c.Locals(LocalKind, kind)
		c.Locals(LocalUsername, claims.Username)
		c.Locals(LocalRole, claims.Role)
		c.Locals(LocalActor, &domain.Actor{
			Kind: kind,
			ID:   claims.PrincipalID,
			Role: domain.Role(claims.Role),
		})

		return c.Next()
	}
}

// ActorFrom returns the authenticated actor, or nil outside AuthMiddleware
func ActorFrom(c *fiber.Ctx) *domain.Actor {
	actor, _ := c.Locals(LocalActor).(*domain.Actor)
	return actor
}

// KindMiddleware allows only the given principal kind
func KindMiddleware(kind domain.PrincipalKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := ActorFrom(c)
		if actor == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		if actor.Kind != kind {
			return response.Forbidden(c, "You don't have permission to access this resource")
		}
		return c.Next()
	}
}

// AdminOnly middleware allows only administrators
func AdminOnly() fiber.Handler {
	return KindMiddleware(domain.PrincipalAdmin)
}

// MemberOnly middleware allows only members
func MemberOnly() fiber.Handler {
	return KindMiddleware(domain.PrincipalMember)
}
