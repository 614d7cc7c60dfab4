package handlers

import (
	"errors"

	"congregation-api/internal/core/services"
	"congregation-api/internal/pkg/pagination"
	"congregation-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles profile and member management endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// SetRoleRequest represents a role change
type SetRoleRequest struct {
	Role string `json:"role"`
}

// SetStatusRequest represents a membership status change
type SetStatusRequest struct {
	MembershipStatus string `json:"membership_status"`
	IsActive         *bool  `json:"is_active"`
}

// GetProfile handles getting own profile
// @Summary Get my profile
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /profile [get]
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	profile, err := h.userService.GetProfile(c.Context(), actor.ID)
	if err != nil {
		return h.memberError(c, err, "Failed to get profile")
	}

	return response.Success(c, "Profile retrieved successfully", profile)
}

// UpdateProfile handles updating own profile
// @Summary Update my profile
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.UpdateProfileInput true "Profile fields"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /profile [put]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	profile, err := h.userService.UpdateProfile(c.Context(), actor.ID, &input)
	if err != nil {
		return h.memberError(c, err, "Failed to update profile")
	}

	return response.Success(c, "Profile updated successfully", profile)
}

// ChangePassword handles changing own password
// @Summary Change my password
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ChangePasswordInput true "Old and new password"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /profile/password [put]
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.ChangePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.OldPassword == "" || input.NewPassword == "" {
		return response.BadRequest(c, "Old and new password are required")
	}

	if err := h.userService.ChangePassword(c.Context(), actor.ID, &input); err != nil {
		return h.memberError(c, err, "Failed to change password")
	}

	return response.Success(c, "Password changed successfully", nil)
}

// ListMembers handles listing members (Admin only)
// @Summary List members
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /members [get]
func (h *UserHandler) ListMembers(c *fiber.Ctx) error {
	result, err := h.userService.ListMembers(c.Context(), pagination.GetParams(c))
	if err != nil {
		return domainError(c, err, "Failed to list members")
	}

	return response.Paginated(c, "Members retrieved successfully", result.Members, result.Pagination)
}

// SetMemberRole handles changing a member's role (Admin only)
// @Summary Set member role
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Param body body SetRoleRequest true "Role"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{id}/role [put]
func (h *UserHandler) SetMemberRole(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid member ID")
	}

	var req SetRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	member, err := h.userService.SetMemberRole(c.Context(), id, req.Role)
	if err != nil {
		return h.memberError(c, err, "Failed to set member role")
	}

	return response.Success(c, "Member role updated successfully", member)
}

// SetMemberStatus handles changing a member's status (Admin only)
// @Summary Set member status
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Param body body SetStatusRequest true "Status"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{id}/status [put]
func (h *UserHandler) SetMemberStatus(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid member ID")
	}

	var req SetStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	member, err := h.userService.SetMemberStatus(c.Context(), id, req.MembershipStatus, req.IsActive)
	if err != nil {
		return h.memberError(c, err, "Failed to set member status")
	}

	return response.Success(c, "Member status updated successfully", member)
}

func (h *UserHandler) memberError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrMemberNotFound):
		return response.NotFound(c, "Member not found")
	case errors.Is(err, services.ErrEmailAlreadyExists):
		return response.Conflict(c, "Email already exists")
	case errors.Is(err, services.ErrOldPasswordWrong):
		return response.BadRequest(c, "Old password is incorrect")
	case errors.Is(err, services.ErrWeakPassword),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrInvalidMemberStatus):
		return response.BadRequest(c, err.Error())
	default:
		return domainError(c, err, fallback)
	}
}
