package handlers

import (
	"errors"

	"congregation-api/internal/core/services"
	"congregation-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles administrator account endpoints
type AdminHandler struct {
	userService  *services.UserService
	phoneService *services.PhoneVerificationService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(userService *services.UserService, phoneService *services.PhoneVerificationService) *AdminHandler {
	return &AdminHandler{
		userService:  userService,
		phoneService: phoneService,
	}
}

// VerifyPhoneRequest represents a submitted verification code
type VerifyPhoneRequest struct {
	Code string `json:"code"`
}

// CreateAdmin handles creating another administrator
// @Summary Create administrator
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateAdminInput true "Administrator account"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/admins [post]
func (h *AdminHandler) CreateAdmin(c *fiber.Ctx) error {
	var input services.CreateAdminInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	admin, err := h.userService.CreateAdmin(c.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAdminAlreadyExists):
			return response.Conflict(c, "Username, email or phone number already exists")
		case errors.Is(err, services.ErrWeakPassword):
			return response.BadRequest(c, err.Error())
		default:
			return domainError(c, err, "Failed to create administrator")
		}
	}

	return response.Created(c, "Administrator created successfully", admin)
}

// RequestPhoneCode sends a phone verification code to the current admin
// @Summary Request phone verification code
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 429 {object} response.Response
// @Router /admin/phone/request [post]
func (h *AdminHandler) RequestPhoneCode(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	if err := h.phoneService.RequestCode(c.Context(), actor.ID); err != nil {
		return h.phoneError(c, err, "Failed to send verification code")
	}

	return response.Success(c, "Verification code sent", nil)
}

// VerifyPhoneCode checks a phone verification code
// @Summary Verify phone number
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body VerifyPhoneRequest true "Verification code"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /admin/phone/verify [post]
func (h *AdminHandler) VerifyPhoneCode(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req VerifyPhoneRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Code == "" {
		return response.BadRequest(c, "Code is required")
	}

	admin, err := h.phoneService.VerifyCode(c.Context(), actor.ID, req.Code)
	if err != nil {
		return h.phoneError(c, err, "Failed to verify phone number")
	}

	return response.Success(c, "Phone number verified", admin.ToResponse())
}

func (h *AdminHandler) phoneError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrAdminNotFound):
		return response.NotFound(c, "Administrator not found")
	case errors.Is(err, services.ErrPhoneAlreadyVerified):
		return response.Conflict(c, "Phone number already verified")
	case errors.Is(err, services.ErrCodeRequestedTooSoon):
		return response.Error(c, fiber.StatusTooManyRequests, err.Error())
	case errors.Is(err, services.ErrNoCodeRequested),
		errors.Is(err, services.ErrCodeExpired),
		errors.Is(err, services.ErrTooManyAttempts),
		errors.Is(err, services.ErrInvalidCode):
		return response.BadRequest(c, err.Error())
	default:
		return domainError(c, err, fallback)
	}
}
