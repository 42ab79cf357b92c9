package dto

import (
	"time"

	"github.com/platformhq/support-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Subject     string                `json:"subject"`
	Description string                `json:"description"`
	Category    domain.TicketCategory `json:"category"`
	Priority    domain.TicketPriority `json:"priority"`
	TenantID    string                `json:"tenant_id,omitempty"`
}

// UpdateTicketRequest payload; nil fields are left unchanged.
type UpdateTicketRequest struct {
	Subject     *string                `json:"subject"`
	Description *string                `json:"description"`
	Category    *domain.TicketCategory `json:"category"`
}

// ChangeStatusRequest payload.
type ChangeStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
	Reason *string             `json:"reason"`
}

// ChangePriorityRequest payload.
type ChangePriorityRequest struct {
	Priority domain.TicketPriority `json:"priority"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	AgentID string `json:"agent_id"`
}

// EscalateTicketRequest payload.
type EscalateTicketRequest struct {
	Reason string `json:"reason"`
}

// RateTicketRequest payload.
type RateTicketRequest struct {
	Rating int `json:"rating"`
}

// CreateMessageRequest payload.
type CreateMessageRequest struct {
	Content        string `json:"content"`
	IsInternalNote bool   `json:"is_internal_note"`
}

// TicketSummary response.
type TicketSummary struct {
	ID                  string                `json:"id"`
	TicketNumber        string                `json:"ticket_number"`
	TenantID            string                `json:"tenant_id"`
	Subject             string                `json:"subject"`
	Category            domain.TicketCategory `json:"category"`
	Priority            domain.TicketPriority `json:"priority"`
	Status              domain.TicketStatus   `json:"status"`
	AssignedToID        *string               `json:"assigned_to_id"`
	SlaResponseDeadline *time.Time            `json:"sla_response_deadline"`
	SlaDeadline         *time.Time            `json:"sla_deadline"`
	SlaBreached         bool                  `json:"sla_breached"`
	MessageCount        int                   `json:"message_count"`
	SatisfactionRating  *int                  `json:"satisfaction_rating"`
	CreatedAt           time.Time             `json:"created_at"`
	UpdatedAt           time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides the ticket with its thread and audit trail.
type TicketDetailResponse struct {
	TicketSummary
	Description string                        `json:"description"`
	ResolvedAt  *time.Time                    `json:"resolved_at"`
	ClosedAt    *time.Time                    `json:"closed_at"`
	Messages    []TicketMessageResponse       `json:"messages"`
	History     []TicketStatusHistoryResponse `json:"history"`
}

// TicketMessageResponse represents a thread message.
type TicketMessageResponse struct {
	ID             string          `json:"id"`
	TicketID       string          `json:"ticket_id"`
	SenderID       string          `json:"sender_id"`
	SenderType     domain.UserType `json:"sender_type"`
	Content        string          `json:"content"`
	IsInternalNote bool            `json:"is_internal_note"`
	CreatedAt      time.Time       `json:"created_at"`
}

// TicketStatusHistoryResponse represents one audit trail row.
type TicketStatusHistoryResponse struct {
	ID         string               `json:"id"`
	FromStatus *domain.TicketStatus `json:"from_status"`
	ToStatus   domain.TicketStatus  `json:"to_status"`
	ChangedBy  *string              `json:"changed_by"`
	Reason     *string              `json:"reason"`
	CreatedAt  time.Time            `json:"created_at"`
}

// CannedResponseRequest payload for create/update.
type CannedResponseRequest struct {
	Title    string                 `json:"title"`
	Content  string                 `json:"content"`
	Category *domain.TicketCategory `json:"category"`
}

// CannedResponseResponse represents a reply template.
type CannedResponseResponse struct {
	ID        string                 `json:"id"`
	Title     string                 `json:"title"`
	Content   string                 `json:"content"`
	Category  *domain.TicketCategory `json:"category"`
	CreatedBy string                 `json:"created_by"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}
