package domain

import "time"

// CannedResponse is a reusable reply template for agents.
type CannedResponse struct {
	ID        string
	Title     string
	Content   string
	Category  *TicketCategory
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}
