package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platformhq/support-service/internal/domain"
)

func newAnalyticsFixture(t *testing.T, tickets *fakeTicketRepo, messages *fakeMessageRepo, now time.Time) *AnalyticsService {
	t.Helper()
	policy, err := domain.NewSlaPolicy(domain.DefaultSlaThresholds())
	require.NoError(t, err)
	return NewAnalyticsService(AnalyticsDependencies{
		TicketRepo:  tickets,
		MessageRepo: messages,
		SlaPolicy:   policy,
		Now:         func() time.Time { return now },
	})
}

func seedTicket(t *testing.T, repo *fakeTicketRepo, mutate func(*domain.Ticket)) *domain.Ticket {
	t.Helper()
	ticket := &domain.Ticket{
		TicketNumber:      "TKT-202400001",
		TenantID:          "tenant-1",
		CreatedByUserID:   "user-1",
		CreatedByUserType: domain.UserTypeTenantAdmin,
		Subject:           "seed",
		Category:          domain.CategoryGeneral,
		Priority:          domain.TicketPriorityMedium,
		Status:            domain.TicketStatusOpen,
	}
	mutate(ticket)
	fixedCreatedAt := ticket.CreatedAt
	require.NoError(t, repo.Create(context.Background(), ticket))
	// Create stamps CreatedAt with the wall clock; rewrite it when the
	// scenario fixed one.
	if !fixedCreatedAt.IsZero() {
		repo.tickets[ticket.ID].CreatedAt = fixedCreatedAt
		ticket.CreatedAt = fixedCreatedAt
	}
	return ticket
}

func TestOverviewCountsAndCompliance(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	tickets := newFakeTicketRepo()
	messages := newFakeMessageRepo(tickets)
	messages.firstResponseAvg = 1.5

	breachedDeadline := now.Add(-time.Hour)
	healthyDeadline := now.Add(time.Hour)
	createdAt := now.Add(-10 * time.Hour)
	resolvedAt := now.Add(-2 * time.Hour)

	seedTicket(t, tickets, func(tk *domain.Ticket) {
		tk.Status = domain.TicketStatusInProgress
		tk.SlaDeadline = &breachedDeadline
	})
	seedTicket(t, tickets, func(tk *domain.Ticket) {
		tk.Status = domain.TicketStatusInProgress
		tk.SlaDeadline = &healthyDeadline
	})
	seedTicket(t, tickets, func(tk *domain.Ticket) {
		tk.Status = domain.TicketStatusResolved
		tk.CreatedAt = createdAt
		tk.ResolvedAt = &resolvedAt
	})

	svc := newAnalyticsFixture(t, tickets, messages, now)
	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(3), overview.TotalTickets)
	assert.Equal(t, int64(3), overview.OpenTickets) // RESOLVED is not terminal
	assert.Equal(t, int64(2), overview.StatusCounts[domain.TicketStatusInProgress])
	assert.Equal(t, int64(1), overview.StatusCounts[domain.TicketStatusResolved])
	// One of two active tickets breached.
	assert.InDelta(t, 50.0, overview.SlaComplianceRate, 0.01)
	assert.InDelta(t, 8.0, overview.AverageResolutionHours, 0.01)
	assert.InDelta(t, 1.5, overview.FirstResponseHours, 0.01)
}

func TestOverviewNoActiveTicketsIsFullyCompliant(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	tickets := newFakeTicketRepo()
	messages := newFakeMessageRepo(tickets)

	svc := newAnalyticsFixture(t, tickets, messages, now)
	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(0), overview.TotalTickets)
	assert.InDelta(t, 100.0, overview.SlaComplianceRate, 0.01)
	assert.Zero(t, overview.AverageResolutionHours)
}

func TestStatusCounts(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	tickets := newFakeTicketRepo()
	messages := newFakeMessageRepo(tickets)

	seedTicket(t, tickets, func(tk *domain.Ticket) { tk.Status = domain.TicketStatusOpen })
	seedTicket(t, tickets, func(tk *domain.Ticket) { tk.Status = domain.TicketStatusOpen })
	seedTicket(t, tickets, func(tk *domain.Ticket) { tk.Status = domain.TicketStatusClosed })

	svc := newAnalyticsFixture(t, tickets, messages, now)
	counts, err := svc.StatusCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[domain.TicketStatusOpen])
	assert.Equal(t, int64(1), counts[domain.TicketStatusClosed])
}

func TestAgentPerformanceReport(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	tickets := newFakeTicketRepo()
	messages := newFakeMessageRepo(tickets)

	agentA := "agent-a"
	agentB := "agent-b"
	rating5 := 5
	rating3 := 3
	createdAt := now.Add(-6 * time.Hour)
	resolvedAt := now.Add(-2 * time.Hour)

	seedTicket(t, tickets, func(tk *domain.Ticket) {
		tk.AssignedToID = &agentA
		tk.Status = domain.TicketStatusResolved
		tk.CreatedAt = createdAt
		tk.ResolvedAt = &resolvedAt
		tk.SatisfactionRating = &rating5
	})
	seedTicket(t, tickets, func(tk *domain.Ticket) {
		tk.AssignedToID = &agentA
		tk.Status = domain.TicketStatusResolved
		tk.CreatedAt = createdAt
		tk.ResolvedAt = &resolvedAt
		tk.SatisfactionRating = &rating3
	})
	seedTicket(t, tickets, func(tk *domain.Ticket) {
		tk.AssignedToID = &agentB
		tk.Status = domain.TicketStatusInProgress
	})
	seedTicket(t, tickets, func(tk *domain.Ticket) {
		tk.Status = domain.TicketStatusOpen // unassigned, excluded
	})

	svc := newAnalyticsFixture(t, tickets, messages, now)
	report, err := svc.AgentPerformanceReport(context.Background())
	require.NoError(t, err)
	require.Len(t, report, 2)

	byAgent := map[string]AgentPerformance{}
	for _, perf := range report {
		byAgent[perf.AgentID] = perf
	}

	a := byAgent[agentA]
	assert.Equal(t, 2, a.TicketsAssigned)
	assert.Equal(t, 2, a.TicketsResolved)
	assert.Equal(t, 2, a.RatedTickets)
	assert.InDelta(t, 4.0, a.AverageRating, 0.01)
	assert.InDelta(t, 4.0, a.AverageResolutionHours, 0.01)

	b := byAgent[agentB]
	assert.Equal(t, 1, b.TicketsAssigned)
	assert.Equal(t, 0, b.TicketsResolved)
	assert.Equal(t, 0, b.RatedTickets)
}
