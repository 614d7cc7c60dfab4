package handlers

import (
	"errors"

	"congregation-api/internal/core/domain"
	"congregation-api/internal/core/services"
	"congregation-api/internal/pkg/pagination"
	"congregation-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DonationHandler handles donation endpoints
type DonationHandler struct {
	donationService *services.DonationService
}

// NewDonationHandler creates a new donation handler
func NewDonationHandler(donationService *services.DonationService) *DonationHandler {
	return &DonationHandler{
		donationService: donationService,
	}
}

// UpdateStatusRequest represents a donation status change
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// Create handles recording a donation
// @Summary Record donation
// @Description Members record their own donation; administrators pass donor_id
// @Tags Donations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateDonationInput true "Donation"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /donations [post]
func (h *DonationHandler) Create(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.CreateDonationInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	donation, err := h.donationService.Create(c.Context(), actor, &input)
	if err != nil {
		return h.donationError(c, err, "Failed to record donation")
	}
	return response.Created(c, "Donation recorded successfully", donation)
}

// ListMine handles listing the current member's donations
// @Summary List my donations
// @Tags Donations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /donations/my [get]
func (h *DonationHandler) ListMine(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	result, err := h.donationService.ListMine(c.Context(), actor, pagination.GetParams(c))
	if err != nil {
		return h.donationError(c, err, "Failed to list donations")
	}
	return response.Paginated(c, "Donations retrieved successfully", result.Donations, result.Pagination)
}

// List handles listing all donations (Admin only)
// @Summary List donations
// @Tags Donations
// @Produce json
// @Security BearerAuth
// @Param status query string false "Pending, Completed, Failed or Refunded"
// @Success 200 {object} response.Response
// @Router /donations [get]
func (h *DonationHandler) List(c *fiber.Ctx) error {
	result, err := h.donationService.List(c.Context(), c.Query("status"), pagination.GetParams(c))
	if err != nil {
		return h.donationError(c, err, "Failed to list donations")
	}
	return response.Paginated(c, "Donations retrieved successfully", result.Donations, result.Pagination)
}

// Get handles getting a donation
// @Summary Get donation
// @Tags Donations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Donation ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /donations/{id} [get]
func (h *DonationHandler) Get(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid donation ID")
	}

	donation, err := h.donationService.GetByID(c.Context(), actor, id)
	if err != nil {
		return h.donationError(c, err, "Failed to get donation")
	}
	return response.Success(c, "Donation retrieved successfully", donation)
}

// UpdateStatus handles changing a donation's status (Admin only)
// @Summary Set donation status
// @Tags Donations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Donation ID"
// @Param body body UpdateStatusRequest true "Status"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /donations/{id}/status [put]
func (h *DonationHandler) UpdateStatus(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid donation ID")
	}

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	donation, err := h.donationService.UpdateStatus(c.Context(), id, req.Status)
	if err != nil {
		return h.donationError(c, err, "Failed to update donation status")
	}
	return response.Success(c, "Donation status updated", donation)
}

// PreviewReceipt returns the receipt text without sending it
// @Summary Preview receipt
// @Tags Donations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Donation ID"
// @Success 200 {object} response.Response
// @Router /donations/{id}/receipt [get]
func (h *DonationHandler) PreviewReceipt(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid donation ID")
	}

	receipt, err := h.donationService.PreviewReceipt(c.Context(), actor, id)
	if err != nil {
		return h.donationError(c, err, "Failed to render receipt")
	}
	return response.Success(c, "Receipt rendered", fiber.Map{"receipt": receipt})
}

// IssueReceipt sends the receipt to the donor
// @Summary Send receipt
// @Description Returns 200 once the receipt is sent and 202 when delivery failed and may be retried
// @Tags Donations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Donation ID"
// @Success 200 {object} response.Response
// @Success 202 {object} response.Response
// @Failure 423 {object} response.Response
// @Router /donations/{id}/receipt [post]
func (h *DonationHandler) IssueReceipt(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid donation ID")
	}

	donation, err := h.donationService.IssueReceipt(c.Context(), actor, id)
	if err != nil {
		return h.donationError(c, err, "Failed to issue receipt")
	}
	if !donation.ReceiptSent {
		return response.Accepted(c, "Receipt could not be delivered, try again later", donation)
	}
	return response.Success(c, "Receipt sent", donation)
}

func (h *DonationHandler) donationError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrDonationNotFound):
		return response.NotFound(c, "Donation not found")
	case errors.Is(err, services.ErrMemberNotFound):
		return response.NotFound(c, "Donor not found")
	case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrInvalidDonationStatus):
		return response.BadRequest(c, err.Error())
	default:
		return domainError(c, err, fallback)
	}
}
