package handlers

import (
	"errors"
	"strconv"

	"congregation-api/internal/core/services"
	"congregation-api/internal/pkg/pagination"
	"congregation-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PrayerHandler handles prayer request endpoints
type PrayerHandler struct {
	prayerService *services.PrayerService
}

// NewPrayerHandler creates a new prayer handler
func NewPrayerHandler(prayerService *services.PrayerService) *PrayerHandler {
	return &PrayerHandler{
		prayerService: prayerService,
	}
}

// List handles listing prayer requests
// @Summary List prayer requests
// @Tags Prayers
// @Produce json
// @Security BearerAuth
// @Param answered query bool false "Filter by answered state"
// @Success 200 {object} response.Response
// @Router /prayers [get]
func (h *PrayerHandler) List(c *fiber.Ctx) error {
	var answered *bool
	if raw := c.Query("answered"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return response.BadRequest(c, "Invalid answered filter")
		}
		answered = &v
	}

	result, err := h.prayerService.List(c.Context(), answered, pagination.GetParams(c))
	if err != nil {
		return domainError(c, err, "Failed to list prayer requests")
	}
	return response.Paginated(c, "Prayer requests retrieved successfully", result.Prayers, result.Pagination)
}

// Create handles submitting a prayer request
// @Summary Submit prayer request
// @Tags Prayers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreatePrayerInput true "Prayer request"
// @Success 201 {object} response.Response
// @Router /prayers [post]
func (h *PrayerHandler) Create(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.CreatePrayerInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	prayer, err := h.prayerService.Create(c.Context(), actor, &input)
	if err != nil {
		return domainError(c, err, "Failed to submit prayer request")
	}
	return response.Created(c, "Prayer request submitted", prayer)
}

// MarkAnswered handles marking a prayer request answered
// @Summary Mark prayer request answered
// @Tags Prayers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Prayer request ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /prayers/{id}/answered [post]
func (h *PrayerHandler) MarkAnswered(c *fiber.Ctx) error {
	actor, ok := currentActor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid prayer request ID")
	}

	prayer, err := h.prayerService.MarkAnswered(c.Context(), actor, id)
	if err != nil {
		if errors.Is(err, services.ErrPrayerNotFound) {
			return response.NotFound(c, "Prayer request not found")
		}
		return domainError(c, err, "Failed to update prayer request")
	}
	return response.Success(c, "Prayer request marked answered", prayer)
}
