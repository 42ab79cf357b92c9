package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/platformhq/support-service/internal/api/dto"
	"github.com/platformhq/support-service/internal/domain"
	"github.com/platformhq/support-service/internal/service"
	apperrors "github.com/platformhq/support-service/pkg/util"
)

// AgentsHandler manages platform agent accounts and login.
type AgentsHandler struct {
	service *service.AgentService
}

// NewAgentsHandler constructs handler.
func NewAgentsHandler(agentService *service.AgentService) *AgentsHandler {
	return &AgentsHandler{service: agentService}
}

// Login POST /auth/agents/login.
func (h *AgentsHandler) Login(c *fiber.Ctx) error {
	var req dto.AgentLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}
	agent, token, exp, err := h.service.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AgentLoginResponse{
		Token:     token,
		ExpiresAt: exp,
		Agent:     agentResponse(agent),
	}})
}

// Create POST /agents.
func (h *AgentsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateAgentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	agent, err := h.service.CreateAgent(c.Context(), service.CreateAgentInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": agentResponse(agent)})
}

// List GET /agents.
func (h *AgentsHandler) List(c *fiber.Ctx) error {
	agents, err := h.service.ListAgents(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.AgentResponse, 0, len(agents))
	for i := range agents {
		items = append(items, agentResponse(&agents[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func agentResponse(agent *domain.PlatformAgent) dto.AgentResponse {
	return dto.AgentResponse{
		ID:        agent.ID,
		Name:      agent.Name,
		Email:     agent.Email,
		Role:      agent.Role,
		IsActive:  agent.IsActive,
		CreatedAt: agent.CreatedAt,
	}
}
