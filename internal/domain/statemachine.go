package domain

import "time"

// allowedTransitions is the edge table of the ticket state machine. Any
// (from, to) pair not listed is rejected. CLOSED has no outgoing edges.
var allowedTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusOpen:              {TicketStatusInProgress, TicketStatusEscalated},
	TicketStatusInProgress:        {TicketStatusWaitingOnCustomer, TicketStatusResolved, TicketStatusEscalated},
	TicketStatusWaitingOnCustomer: {TicketStatusInProgress, TicketStatusResolved},
	TicketStatusResolved:          {TicketStatusReopened, TicketStatusClosed},
	TicketStatusReopened:          {TicketStatusInProgress},
	TicketStatusEscalated:         {TicketStatusInProgress, TicketStatusResolved},
	TicketStatusClosed:            {},
}

// CanTransition reports whether the edge from current to next exists.
func CanTransition(current, next TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Transition moves the ticket to the target status, applying the SLA and
// timestamp side effects bound to the traversed edge. On an unlisted edge
// the ticket is left untouched and InvalidTransitionError is returned.
func Transition(ticket *Ticket, to TicketStatus, now time.Time) error {
	from := ticket.Status
	if !CanTransition(from, to) {
		return &InvalidTransitionError{From: from, To: to}
	}

	// Leaving WAITING_ON_CUSTOMER resumes the SLA clock: the resolution
	// deadline is shifted forward by the time spent paused.
	if from == TicketStatusWaitingOnCustomer && ticket.SlaPausedAt != nil {
		if ticket.SlaDeadline != nil {
			shifted := ticket.SlaDeadline.Add(now.Sub(*ticket.SlaPausedAt))
			ticket.SlaDeadline = &shifted
		}
		ticket.SlaPausedAt = nil
	}

	switch to {
	case TicketStatusWaitingOnCustomer:
		paused := now
		ticket.SlaPausedAt = &paused
	case TicketStatusResolved:
		resolved := now
		ticket.ResolvedAt = &resolved
	case TicketStatusClosed:
		closed := now
		ticket.ClosedAt = &closed
	case TicketStatusReopened:
		ticket.ResolvedAt = nil
		ticket.ClosedAt = nil
	}

	ticket.Status = to
	return nil
}
