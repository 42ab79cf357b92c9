package events

import (
	"time"

	"github.com/platformhq/support-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketStatusChanged   EventType = "ticket_status_changed"
	EventTicketPriorityChanged EventType = "ticket_priority_changed"
	EventTicketAssigned        EventType = "ticket_assigned"
	EventTicketEscalated       EventType = "ticket_escalated"
	EventTicketMessageAdded    EventType = "ticket_message_added"
	EventTicketRated           EventType = "ticket_rated"
	EventTicketAutoClosed      EventType = "ticket_auto_closed"
)

// Actor identifies who triggered an event. Both fields are nil for
// system-initiated events such as auto-close.
type Actor struct {
	Type   *domain.UserType `json:"type,omitempty"`
	UserID *string          `json:"user_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	TenantID  string      `json:"tenant_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketNumber string                `json:"ticket_number"`
	Category     domain.TicketCategory `json:"category"`
	Priority     domain.TicketPriority `json:"priority"`
	Subject      string                `json:"subject"`
	AssignedToID *string               `json:"assigned_to_id,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	FromStatus domain.TicketStatus `json:"from_status"`
	ToStatus   domain.TicketStatus `json:"to_status"`
	Reason     *string             `json:"reason,omitempty"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	OldPriority domain.TicketPriority `json:"old_priority"`
	NewPriority domain.TicketPriority `json:"new_priority"`
	SlaDeadline *time.Time            `json:"sla_deadline,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssignedToID *string `json:"assigned_to_id,omitempty"`
}

// TicketEscalatedPayload payload.
type TicketEscalatedPayload struct {
	Reason string `json:"reason"`
}

// TicketMessageAddedPayload payload.
type TicketMessageAddedPayload struct {
	MessageID      string          `json:"message_id"`
	SenderType     domain.UserType `json:"sender_type"`
	SenderID       string          `json:"sender_id"`
	IsInternalNote bool            `json:"is_internal_note"`
	MessageCount   int             `json:"message_count"`
}

// TicketRatedPayload payload.
type TicketRatedPayload struct {
	Rating int `json:"rating"`
}

// TicketAutoClosedPayload payload.
type TicketAutoClosedPayload struct {
	ResolvedAt time.Time `json:"resolved_at"`
	Reason     string    `json:"reason"`
}
