package domain

import "time"

// TicketStatus enumerates lifecycle states for support tickets.
type TicketStatus string

const (
	TicketStatusOpen              TicketStatus = "OPEN"
	TicketStatusInProgress        TicketStatus = "IN_PROGRESS"
	TicketStatusWaitingOnCustomer TicketStatus = "WAITING_ON_CUSTOMER"
	TicketStatusResolved          TicketStatus = "RESOLVED"
	TicketStatusClosed            TicketStatus = "CLOSED"
	TicketStatusReopened          TicketStatus = "REOPENED"
	TicketStatusEscalated         TicketStatus = "ESCALATED"
)

// IsTerminal reports whether the status has no outgoing transitions.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusClosed
}

// TicketPriority enumerates SLA urgency, ordered LOW < MEDIUM < HIGH < CRITICAL.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

// Priorities lists all priorities in ascending order of urgency.
func Priorities() []TicketPriority {
	return []TicketPriority{TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical}
}

// Rank returns the ordinal position of the priority, LOW being 0.
// Unknown priorities rank -1.
func (p TicketPriority) Rank() int {
	switch p {
	case TicketPriorityLow:
		return 0
	case TicketPriorityMedium:
		return 1
	case TicketPriorityHigh:
		return 2
	case TicketPriorityCritical:
		return 3
	default:
		return -1
	}
}

// Valid reports whether the priority is a known level.
func (p TicketPriority) Valid() bool {
	return p.Rank() >= 0
}

// TicketCategory classifies the domain of the reported issue.
type TicketCategory string

const (
	CategoryBilling        TicketCategory = "BILLING"
	CategoryTechnical      TicketCategory = "TECHNICAL"
	CategoryAccount        TicketCategory = "ACCOUNT"
	CategoryFeatureRequest TicketCategory = "FEATURE_REQUEST"
	CategoryBugReport      TicketCategory = "BUG_REPORT"
	CategoryGeneral        TicketCategory = "GENERAL"
)

// UserType distinguishes self-reported tickets from agent-filed ones.
type UserType string

const (
	UserTypeTenantAdmin   UserType = "TENANT_ADMIN"
	UserTypePlatformAgent UserType = "PLATFORM_AGENT"
)

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID                string
	TicketNumber      string
	TenantID          string
	CreatedByUserID   string
	CreatedByUserType UserType
	Subject           string
	Description       string
	Category          TicketCategory
	Priority          TicketPriority
	Status            TicketStatus
	AssignedToID      *string
	ResolvedAt        *time.Time
	ClosedAt          *time.Time

	// SLA clock. SlaDeadline already reflects any pause adjustment;
	// SlaPausedAt is non-nil exactly while status is WAITING_ON_CUSTOMER.
	SlaResponseDeadline *time.Time
	SlaDeadline         *time.Time
	SlaPausedAt         *time.Time

	MessageCount       int
	SatisfactionRating *int

	CreatedAt time.Time
	UpdatedAt time.Time
}
