package domain

import (
	"fmt"
	"time"
)

// SlaThresholds holds the two durations granted to a priority level.
type SlaThresholds struct {
	Response   time.Duration
	Resolution time.Duration
}

// SlaPolicy maps priority to response/resolution thresholds and evaluates
// deadlines and breach status. It is pure; the wall clock is always passed in.
type SlaPolicy struct {
	thresholds map[TicketPriority]SlaThresholds
}

// DefaultSlaThresholds returns the stock threshold table. Exact magnitudes
// are configuration data; these are the shipped defaults.
func DefaultSlaThresholds() map[TicketPriority]SlaThresholds {
	return map[TicketPriority]SlaThresholds{
		TicketPriorityCritical: {Response: 1 * time.Hour, Resolution: 4 * time.Hour},
		TicketPriorityHigh:     {Response: 2 * time.Hour, Resolution: 8 * time.Hour},
		TicketPriorityMedium:   {Response: 4 * time.Hour, Resolution: 24 * time.Hour},
		TicketPriorityLow:      {Response: 8 * time.Hour, Resolution: 48 * time.Hour},
	}
}

// NewSlaPolicy validates that every priority has thresholds and that they
// strictly shrink as priority rises.
func NewSlaPolicy(thresholds map[TicketPriority]SlaThresholds) (*SlaPolicy, error) {
	ordered := Priorities()
	for _, priority := range ordered {
		t, ok := thresholds[priority]
		if !ok {
			return nil, fmt.Errorf("missing SLA thresholds for priority %s", priority)
		}
		if t.Response <= 0 || t.Resolution <= 0 {
			return nil, fmt.Errorf("non-positive SLA thresholds for priority %s", priority)
		}
	}
	for i := 1; i < len(ordered); i++ {
		lower, higher := thresholds[ordered[i-1]], thresholds[ordered[i]]
		if higher.Response >= lower.Response || higher.Resolution >= lower.Resolution {
			return nil, fmt.Errorf("SLA thresholds for %s must be shorter than for %s", ordered[i], ordered[i-1])
		}
	}
	return &SlaPolicy{thresholds: thresholds}, nil
}

// Thresholds returns the configured thresholds for a priority.
func (p *SlaPolicy) Thresholds(priority TicketPriority) SlaThresholds {
	return p.thresholds[priority]
}

// Deadlines computes the absolute response and resolution deadlines for a
// ticket of the given priority anchored at the given instant.
func (p *SlaPolicy) Deadlines(priority TicketPriority, at time.Time) (response, resolution time.Time) {
	t := p.thresholds[priority]
	return at.Add(t.Response), at.Add(t.Resolution)
}

// IsBreached reports whether the ticket's resolution deadline has passed.
// Resolved and closed tickets are never breached. The stored deadline must
// already reflect any pause adjustment; no pause math happens here.
func (p *SlaPolicy) IsBreached(ticket *Ticket, now time.Time) bool {
	if ticket.Status == TicketStatusResolved || ticket.Status == TicketStatusClosed {
		return false
	}
	if ticket.SlaDeadline == nil {
		return false
	}
	return now.After(*ticket.SlaDeadline)
}
