package domain

import "time"

// TicketMessage is an append-only entry in a ticket's conversation thread.
// Internal notes are never shown to the ticket's originator.
type TicketMessage struct {
	ID             string
	TicketID       string
	SenderID       string
	SenderType     UserType
	Content        string
	IsInternalNote bool
	CreatedAt      time.Time
}
