package domain

import "fmt"

// NotFoundError indicates a referenced entity does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// NewTicketNotFound builds a NotFoundError for a ticket id.
func NewTicketNotFound(id string) *NotFoundError {
	return &NotFoundError{Resource: "ticket", ID: id}
}

// InvalidTransitionError indicates a status transition outside the edge table.
type InvalidTransitionError struct {
	From TicketStatus
	To   TicketStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

// RatingError indicates a rating attempt on a non-ratable ticket or an
// out-of-range value.
type RatingError struct {
	Message string
}

func (e *RatingError) Error() string {
	return e.Message
}

// AllocationError indicates the sequence counter could not be read, locked
// or persisted. Ticket creation must fail atomically when this occurs.
type AllocationError struct {
	Err error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("ticket number allocation failed: %v", e.Err)
}

func (e *AllocationError) Unwrap() error {
	return e.Err
}
