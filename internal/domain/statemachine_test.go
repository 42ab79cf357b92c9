package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from    TicketStatus
		to      TicketStatus
		allowed bool
	}{
		{TicketStatusOpen, TicketStatusInProgress, true},
		{TicketStatusOpen, TicketStatusEscalated, true},
		{TicketStatusOpen, TicketStatusResolved, false},
		{TicketStatusOpen, TicketStatusClosed, false},
		{TicketStatusInProgress, TicketStatusWaitingOnCustomer, true},
		{TicketStatusInProgress, TicketStatusResolved, true},
		{TicketStatusInProgress, TicketStatusEscalated, true},
		{TicketStatusInProgress, TicketStatusClosed, false},
		{TicketStatusWaitingOnCustomer, TicketStatusInProgress, true},
		{TicketStatusWaitingOnCustomer, TicketStatusResolved, true},
		{TicketStatusWaitingOnCustomer, TicketStatusEscalated, false},
		{TicketStatusResolved, TicketStatusReopened, true},
		{TicketStatusResolved, TicketStatusClosed, true},
		{TicketStatusResolved, TicketStatusInProgress, false},
		{TicketStatusReopened, TicketStatusInProgress, true},
		{TicketStatusReopened, TicketStatusResolved, false},
		{TicketStatusEscalated, TicketStatusInProgress, true},
		{TicketStatusEscalated, TicketStatusResolved, true},
		{TicketStatusClosed, TicketStatusReopened, false},
		{TicketStatusClosed, TicketStatusInProgress, false},
		{TicketStatusClosed, TicketStatusOpen, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTransitionRejectedLeavesTicketUntouched(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	deadline := now.Add(4 * time.Hour)
	ticket := &Ticket{Status: TicketStatusOpen, SlaDeadline: &deadline}

	err := Transition(ticket, TicketStatusClosed, now)

	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, TicketStatusOpen, invalid.From)
	assert.Equal(t, TicketStatusClosed, invalid.To)
	assert.Equal(t, TicketStatusOpen, ticket.Status)
	assert.Equal(t, deadline, *ticket.SlaDeadline)
	assert.Nil(t, ticket.ClosedAt)
}

func TestTransitionPausesSlaOnWaitingOnCustomer(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	deadline := now.Add(8 * time.Hour)
	ticket := &Ticket{Status: TicketStatusInProgress, SlaDeadline: &deadline}

	require.NoError(t, Transition(ticket, TicketStatusWaitingOnCustomer, now))

	assert.Equal(t, TicketStatusWaitingOnCustomer, ticket.Status)
	require.NotNil(t, ticket.SlaPausedAt)
	assert.Equal(t, now, *ticket.SlaPausedAt)
	assert.Equal(t, deadline, *ticket.SlaDeadline)
}

func TestTransitionResumeShiftsDeadlineByPausedInterval(t *testing.T) {
	pausedAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	deadline := pausedAt.Add(8 * time.Hour)
	resumeAt := pausedAt.Add(3 * time.Hour)
	ticket := &Ticket{
		Status:      TicketStatusWaitingOnCustomer,
		SlaDeadline: &deadline,
		SlaPausedAt: &pausedAt,
	}

	require.NoError(t, Transition(ticket, TicketStatusInProgress, resumeAt))

	assert.Equal(t, TicketStatusInProgress, ticket.Status)
	assert.Nil(t, ticket.SlaPausedAt)
	require.NotNil(t, ticket.SlaDeadline)
	assert.Equal(t, deadline.Add(3*time.Hour), *ticket.SlaDeadline)
}

func TestTransitionWaitingOnCustomerDirectlyToResolved(t *testing.T) {
	pausedAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	deadline := pausedAt.Add(8 * time.Hour)
	resolveAt := pausedAt.Add(2 * time.Hour)
	ticket := &Ticket{
		Status:      TicketStatusWaitingOnCustomer,
		SlaDeadline: &deadline,
		SlaPausedAt: &pausedAt,
	}

	require.NoError(t, Transition(ticket, TicketStatusResolved, resolveAt))

	assert.Nil(t, ticket.SlaPausedAt)
	assert.Equal(t, deadline.Add(2*time.Hour), *ticket.SlaDeadline)
	require.NotNil(t, ticket.ResolvedAt)
	assert.Equal(t, resolveAt, *ticket.ResolvedAt)
}

func TestTransitionSetsResolvedAndClosedTimestamps(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	ticket := &Ticket{Status: TicketStatusInProgress}

	require.NoError(t, Transition(ticket, TicketStatusResolved, now))
	require.NotNil(t, ticket.ResolvedAt)
	assert.Equal(t, now, *ticket.ResolvedAt)

	closeAt := now.Add(time.Hour)
	require.NoError(t, Transition(ticket, TicketStatusClosed, closeAt))
	require.NotNil(t, ticket.ClosedAt)
	assert.Equal(t, closeAt, *ticket.ClosedAt)
}

func TestTransitionReopenClearsTimestamps(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	resolved := now.Add(-time.Hour)
	ticket := &Ticket{Status: TicketStatusResolved, ResolvedAt: &resolved}

	require.NoError(t, Transition(ticket, TicketStatusReopened, now))

	assert.Equal(t, TicketStatusReopened, ticket.Status)
	assert.Nil(t, ticket.ResolvedAt)
	assert.Nil(t, ticket.ClosedAt)
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, TicketStatusClosed.IsTerminal())
	for _, status := range []TicketStatus{
		TicketStatusOpen, TicketStatusInProgress, TicketStatusWaitingOnCustomer,
		TicketStatusResolved, TicketStatusReopened, TicketStatusEscalated,
	} {
		assert.False(t, status.IsTerminal(), string(status))
	}
}
