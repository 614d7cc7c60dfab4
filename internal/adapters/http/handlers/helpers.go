package handlers

import (
	"errors"
	"log"
	"strconv"

	"congregation-api/internal/adapters/http/middleware"
	"congregation-api/internal/core/domain"
	"congregation-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// parseID reads a positive numeric path parameter
func parseID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// currentActor returns the actor set by the auth middleware
func currentActor(c *fiber.Ctx) (*domain.Actor, bool) {
	actor := middleware.ActorFrom(c)
	return actor, actor != nil
}

// domainError maps errors shared by every service onto responses.
// Handlers check their own sentinels first and fall back to this.
func domainError(c *fiber.Ctx, err error, fallback string) error {
	var credErr *domain.CredentialError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return response.BadRequest(c, "Invalid input")
	case errors.As(err, &credErr):
		return response.BadRequest(c, "Password cannot be used")
	case errors.Is(err, domain.ErrUnauthorized):
		return response.Unauthorized(c, "Unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		return response.Forbidden(c, "You don't have permission to do this")
	case errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, "Resource not found")
	case errors.Is(err, domain.ErrLockHeld):
		return response.Locked(c, "Another request is already working on this resource")
	default:
		log.Printf("❌ %s: %v", fallback, err)
		return response.InternalServerError(c, fallback)
	}
}
