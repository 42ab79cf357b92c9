package service

import (
	"time"

	"github.com/platformhq/support-service/internal/config"
	"github.com/platformhq/support-service/internal/domain"
)

// NewSlaPolicyFromConfig builds the SLA policy from configured per-priority
// hours, falling back to the stock defaults when a level is unset.
func NewSlaPolicyFromConfig(cfg config.SlaConfig) (*domain.SlaPolicy, error) {
	thresholds := domain.DefaultSlaThresholds()
	apply := func(priority domain.TicketPriority, responseHours, resolutionHours int) {
		if responseHours > 0 && resolutionHours > 0 {
			thresholds[priority] = domain.SlaThresholds{
				Response:   time.Duration(responseHours) * time.Hour,
				Resolution: time.Duration(resolutionHours) * time.Hour,
			}
		}
	}
	apply(domain.TicketPriorityCritical, cfg.CriticalResponseHours, cfg.CriticalResolutionHours)
	apply(domain.TicketPriorityHigh, cfg.HighResponseHours, cfg.HighResolutionHours)
	apply(domain.TicketPriorityMedium, cfg.MediumResponseHours, cfg.MediumResolutionHours)
	apply(domain.TicketPriorityLow, cfg.LowResponseHours, cfg.LowResolutionHours)
	return domain.NewSlaPolicy(thresholds)
}
