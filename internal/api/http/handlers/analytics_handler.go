package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/platformhq/support-service/internal/service"
)

// AnalyticsHandler exposes read-only support statistics.
type AnalyticsHandler struct {
	service *service.AnalyticsService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: analyticsService}
}

// Overview GET /analytics/overview.
func (h *AnalyticsHandler) Overview(c *fiber.Ctx) error {
	overview, err := h.service.Overview(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": overview})
}

// StatusCounts GET /analytics/status-counts.
func (h *AnalyticsHandler) StatusCounts(c *fiber.Ctx) error {
	counts, err := h.service.StatusCounts(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": counts})
}

// AgentPerformance GET /analytics/agents.
func (h *AnalyticsHandler) AgentPerformance(c *fiber.Ctx) error {
	report, err := h.service.AgentPerformanceReport(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}
