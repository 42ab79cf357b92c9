package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/platformhq/support-service/internal/api/dto"
	"github.com/platformhq/support-service/internal/auth"
	"github.com/platformhq/support-service/internal/domain"
	"github.com/platformhq/support-service/internal/repository"
	"github.com/platformhq/support-service/internal/service"
	apperrors "github.com/platformhq/support-service/pkg/util"
)

// TicketsHandler manages ticket lifecycle endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.CreateTicketInput{
		CreatedByUserID:   principal.UserID,
		CreatedByUserType: principal.UserType,
		Subject:           req.Subject,
		Description:       req.Description,
		Category:          req.Category,
		Priority:          req.Priority,
	}
	switch {
	case principal.TenantID != nil:
		input.TenantID = *principal.TenantID
	default:
		// Agents creating tickets on behalf of a tenant pass it explicitly.
		input.TenantID = req.TenantID
	}
	if strings.TrimSpace(input.TenantID) == "" {
		return apperrors.NewValidationError("tenant_id required", nil)
	}

	ticket, err := h.service.CreateTicket(c.Context(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": h.summary(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	filter := parseTicketQuery(c)
	if principal.TenantID != nil {
		// Tenant admins only ever see their own tenant's tickets.
		filter.TenantID = principal.TenantID
	}
	tickets, err := h.service.ListTickets(c.Context(), filter)
	if err != nil {
		return err
	}
	// Breach status depends on the clock, so it is filtered here rather
	// than in SQL.
	onlyBreached := c.Query("sla_breached") == "true"
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		summary := h.summary(&tickets[i])
		if onlyBreached && !summary.SlaBreached {
			continue
		}
		items = append(items, summary)
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	includeInternal := principal.UserType == domain.UserTypePlatformAgent
	ticket, messages, history, err := h.service.GetTicket(c.Context(), c.Params("id"), includeInternal)
	if err != nil {
		return err
	}
	if principal.TenantID != nil && ticket.TenantID != *principal.TenantID {
		return apperrors.NewNotFound("ticket", map[string]any{"id": c.Params("id")})
	}
	return c.JSON(fiber.Map{"data": h.detail(ticket, messages, history)})
}

// UpdateTicket PATCH /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.UpdateTicket(c.Context(), c.Params("id"), service.UpdateTicketInput{
		Subject:     req.Subject,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.summary(ticket)})
}

// ChangeStatus POST /tickets/:id/status.
func (h *TicketsHandler) ChangeStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}
	actorID := principal.UserID
	ticket, err := h.service.ChangeStatus(c.Context(), c.Params("id"), req.Status, req.Reason, &actorID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.summary(ticket)})
}

// ChangePriority POST /tickets/:id/priority.
func (h *TicketsHandler) ChangePriority(c *fiber.Ctx) error {
	var req dto.ChangePriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.ChangePriority(c.Context(), c.Params("id"), req.Priority)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.summary(ticket)})
}

// AssignTicket POST /tickets/:id/assign.
func (h *TicketsHandler) AssignTicket(c *fiber.Ctx) error {
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.AgentID) == "" {
		return apperrors.NewValidationError("agent_id required", nil)
	}
	ticket, err := h.service.AssignTicket(c.Context(), c.Params("id"), req.AgentID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.summary(ticket)})
}

// EscalateTicket POST /tickets/:id/escalate.
func (h *TicketsHandler) EscalateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.EscalateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.EscalateTicket(c.Context(), c.Params("id"), req.Reason, principal.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.summary(ticket)})
}

// RateTicket POST /tickets/:id/rating.
func (h *TicketsHandler) RateTicket(c *fiber.Ctx) error {
	var req dto.RateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.RateTicket(c.Context(), c.Params("id"), req.Rating)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.summary(ticket)})
}

// AddMessage POST /tickets/:id/messages.
func (h *TicketsHandler) AddMessage(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.IsInternalNote && principal.UserType != domain.UserTypePlatformAgent {
		return apperrors.NewForbidden("internal notes are agent-only")
	}
	msg, err := h.service.AddMessage(c.Context(), c.Params("id"), principal.UserID, principal.UserType, req.Content, req.IsInternalNote)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": messageResponse(msg)})
}

func parseTicketQuery(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{}
	if tenantID := c.Query("tenant_id"); tenantID != "" {
		filter.TenantID = &tenantID
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.TicketPriority(strings.TrimSpace(part)))
		}
	}
	if categoryStr := c.Query("category"); categoryStr != "" {
		for _, part := range strings.Split(categoryStr, ",") {
			filter.Categories = append(filter.Categories, domain.TicketCategory(strings.TrimSpace(part)))
		}
	}
	if assignee := c.Query("assigned_to"); assignee != "" {
		filter.AssignedToID = &assignee
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func (h *TicketsHandler) summary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:                  ticket.ID,
		TicketNumber:        ticket.TicketNumber,
		TenantID:            ticket.TenantID,
		Subject:             ticket.Subject,
		Category:            ticket.Category,
		Priority:            ticket.Priority,
		Status:              ticket.Status,
		AssignedToID:        ticket.AssignedToID,
		SlaResponseDeadline: ticket.SlaResponseDeadline,
		SlaDeadline:         ticket.SlaDeadline,
		SlaBreached:         h.service.IsBreached(ticket),
		MessageCount:        ticket.MessageCount,
		SatisfactionRating:  ticket.SatisfactionRating,
		CreatedAt:           ticket.CreatedAt,
		UpdatedAt:           ticket.UpdatedAt,
	}
}

func (h *TicketsHandler) detail(ticket *domain.Ticket, messages []domain.TicketMessage, history []domain.TicketStatusHistory) dto.TicketDetailResponse {
	msgs := make([]dto.TicketMessageResponse, 0, len(messages))
	for i := range messages {
		msgs = append(msgs, messageResponse(&messages[i]))
	}
	entries := make([]dto.TicketStatusHistoryResponse, 0, len(history))
	for _, entry := range history {
		entries = append(entries, dto.TicketStatusHistoryResponse{
			ID:         entry.ID,
			FromStatus: entry.FromStatus,
			ToStatus:   entry.ToStatus,
			ChangedBy:  entry.ChangedBy,
			Reason:     entry.Reason,
			CreatedAt:  entry.CreatedAt,
		})
	}
	return dto.TicketDetailResponse{
		TicketSummary: h.summary(ticket),
		Description:   ticket.Description,
		ResolvedAt:    ticket.ResolvedAt,
		ClosedAt:      ticket.ClosedAt,
		Messages:      msgs,
		History:       entries,
	}
}

func messageResponse(msg *domain.TicketMessage) dto.TicketMessageResponse {
	return dto.TicketMessageResponse{
		ID:             msg.ID,
		TicketID:       msg.TicketID,
		SenderID:       msg.SenderID,
		SenderType:     msg.SenderType,
		Content:        msg.Content,
		IsInternalNote: msg.IsInternalNote,
		CreatedAt:      msg.CreatedAt,
	}
}
