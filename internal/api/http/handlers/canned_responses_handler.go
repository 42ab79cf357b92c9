package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/platformhq/support-service/internal/api/dto"
	"github.com/platformhq/support-service/internal/auth"
	"github.com/platformhq/support-service/internal/domain"
	"github.com/platformhq/support-service/internal/service"
	apperrors "github.com/platformhq/support-service/pkg/util"
)

// CannedResponsesHandler manages agent reply templates.
type CannedResponsesHandler struct {
	service *service.TicketService
}

// NewCannedResponsesHandler constructs handler.
func NewCannedResponsesHandler(ticketService *service.TicketService) *CannedResponsesHandler {
	return &CannedResponsesHandler{service: ticketService}
}

// List GET /canned-responses.
func (h *CannedResponsesHandler) List(c *fiber.Ctx) error {
	var category *domain.TicketCategory
	if raw := c.Query("category"); raw != "" {
		cat := domain.TicketCategory(raw)
		category = &cat
	}
	responses, err := h.service.ListCannedResponses(c.Context(), category)
	if err != nil {
		return err
	}
	items := make([]dto.CannedResponseResponse, 0, len(responses))
	for i := range responses {
		items = append(items, cannedResponse(&responses[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Create POST /canned-responses.
func (h *CannedResponsesHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CannedResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	created, err := h.service.CreateCannedResponse(c.Context(), principal.UserID, service.CannedResponseInput{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": cannedResponse(created)})
}

// Update PUT /canned-responses/:id.
func (h *CannedResponsesHandler) Update(c *fiber.Ctx) error {
	var req dto.CannedResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	updated, err := h.service.UpdateCannedResponse(c.Context(), c.Params("id"), service.CannedResponseInput{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": cannedResponse(updated)})
}

// Delete DELETE /canned-responses/:id.
func (h *CannedResponsesHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.DeleteCannedResponse(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func cannedResponse(resp *domain.CannedResponse) dto.CannedResponseResponse {
	return dto.CannedResponseResponse{
		ID:        resp.ID,
		Title:     resp.Title,
		Content:   resp.Content,
		Category:  resp.Category,
		CreatedBy: resp.CreatedBy,
		CreatedAt: resp.CreatedAt,
		UpdatedAt: resp.UpdatedAt,
	}
}
