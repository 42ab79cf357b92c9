package domain

import "time"

// TicketStatusHistory is an immutable audit trail entry. Exactly one row is
// appended per successful transition; rejected transitions leave no trace.
type TicketStatusHistory struct {
	ID       string
	TicketID string
	// FromStatus is nil for the implicit creation transition.
	FromStatus *TicketStatus
	ToStatus   TicketStatus
	// ChangedBy is nil for system-initiated transitions such as auto-close.
	ChangedBy *string
	Reason    *string
	CreatedAt time.Time
}
