package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platformhq/support-service/internal/domain"
	"github.com/platformhq/support-service/internal/events"
	"github.com/platformhq/support-service/internal/repository"
)

type ticketServiceFixture struct {
	service    *TicketService
	tickets    *fakeTicketRepo
	messages   *fakeMessageRepo
	history    *fakeHistoryRepo
	canned     *fakeCannedRepo
	dispatcher *recordingDispatcher
	clock      *fakeClock
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTicketServiceFixture(t *testing.T) *ticketServiceFixture {
	t.Helper()
	policy, err := domain.NewSlaPolicy(domain.DefaultSlaThresholds())
	require.NoError(t, err)

	tickets := newFakeTicketRepo()
	messages := newFakeMessageRepo(tickets)
	history := &fakeHistoryRepo{}
	canned := newFakeCannedRepo()
	dispatcher := &recordingDispatcher{}
	clock := &fakeClock{now: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)}

	svc := NewTicketService(TicketDependencies{
		TicketRepo:  tickets,
		MessageRepo: messages,
		HistoryRepo: history,
		CannedRepo:  canned,
		Sequence:    repository.NewMemorySequenceAllocator(),
		SlaPolicy:   policy,
		Dispatcher:  dispatcher,
		Now:         clock.Now,
	})
	return &ticketServiceFixture{
		service:    svc,
		tickets:    tickets,
		messages:   messages,
		history:    history,
		canned:     canned,
		dispatcher: dispatcher,
		clock:      clock,
	}
}

func (f *ticketServiceFixture) createTicket(t *testing.T, priority domain.TicketPriority) *domain.Ticket {
	t.Helper()
	ticket, err := f.service.CreateTicket(context.Background(), CreateTicketInput{
		TenantID:          "tenant-1",
		CreatedByUserID:   "user-1",
		CreatedByUserType: domain.UserTypeTenantAdmin,
		Subject:           "printer on fire",
		Description:       "smoke everywhere",
		Category:          domain.CategoryTechnical,
		Priority:          priority,
	})
	require.NoError(t, err)
	return ticket
}

func TestCreateTicketAssignsNumberDeadlinesAndHistory(t *testing.T) {
	f := newTicketServiceFixture(t)

	ticket := f.createTicket(t, domain.TicketPriorityHigh)

	assert.Equal(t, "TKT-202400001", ticket.TicketNumber)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	require.NotNil(t, ticket.SlaResponseDeadline)
	require.NotNil(t, ticket.SlaDeadline)
	assert.Equal(t, f.clock.Now().Add(2*time.Hour), *ticket.SlaResponseDeadline)
	assert.Equal(t, f.clock.Now().Add(8*time.Hour), *ticket.SlaDeadline)

	trail := f.history.forTicket(ticket.ID)
	require.Len(t, trail, 1)
	assert.Nil(t, trail[0].FromStatus)
	assert.Equal(t, domain.TicketStatusOpen, trail[0].ToStatus)
	require.NotNil(t, trail[0].ChangedBy)
	assert.Equal(t, "user-1", *trail[0].ChangedBy)

	created := f.dispatcher.ofType(events.EventTicketCreated)
	require.Len(t, created, 1)
	assert.Equal(t, ticket.ID, created[0].TicketID)
}

func TestCreateTicketDefaultsPriorityAndCategory(t *testing.T) {
	f := newTicketServiceFixture(t)

	ticket, err := f.service.CreateTicket(context.Background(), CreateTicketInput{
		TenantID:          "tenant-1",
		CreatedByUserID:   "user-1",
		CreatedByUserType: domain.UserTypeTenantAdmin,
		Subject:           "help",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	assert.Equal(t, domain.CategoryGeneral, ticket.Category)
}

func TestCreateTicketRequiresSubject(t *testing.T) {
	f := newTicketServiceFixture(t)

	_, err := f.service.CreateTicket(context.Background(), CreateTicketInput{
		TenantID:          "tenant-1",
		CreatedByUserID:   "user-1",
		CreatedByUserType: domain.UserTypeTenantAdmin,
		Subject:           "   ",
	})
	require.Error(t, err)
}

func TestCreateTicketConcurrentNumbersAreUnique(t *testing.T) {
	f := newTicketServiceFixture(t)

	const workers = 20
	var wg sync.WaitGroup
	numbers := make(chan string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ticket, err := f.service.CreateTicket(context.Background(), CreateTicketInput{
				TenantID:          "tenant-1",
				CreatedByUserID:   "user-1",
				CreatedByUserType: domain.UserTypeTenantAdmin,
				Subject:           "concurrent",
			})
			assert.NoError(t, err)
			numbers <- ticket.TicketNumber
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]struct{}, workers)
	for number := range numbers {
		assert.True(t, strings.HasPrefix(number, "TKT-2024"))
		_, dup := seen[number]
		assert.False(t, dup, "duplicate number %s", number)
		seen[number] = struct{}{}
	}
	assert.Len(t, seen, workers)
}

func TestGetTicketByNumber(t *testing.T) {
	f := newTicketServiceFixture(t)
	ticket := f.createTicket(t, domain.TicketPriorityMedium)

	fetched, _, _, err := f.service.GetTicket(context.Background(), ticket.TicketNumber, false)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, fetched.ID)
}

func TestChangeStatusWalksLifecycleAndRecordsHistory(t *testing.T) {
	f := newTicketServiceFixture(t)
	ticket := f.createTicket(t, domain.TicketPriorityMedium)
	actorID := "agent-1"

	ticket, err := f.service.ChangeStatus(context.Background(), ticket.ID, domain.TicketStatusInProgress, nil, &actorID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, ticket.Status)

	ticket, err = f.service.ChangeStatus(context.Background(), ticket.ID, domain.TicketStatusResolved, nil, &actorID)
	require.NoError(t, err)
	require.NotNil(t, ticket.ResolvedAt)

	trail := f.history.forTicket(ticket.ID)
	require.Len(t, trail, 3)
	assert.Equal(t, domain.TicketStatusInProgress, trail[1].ToStatus)
	assert.Equal(t, domain.TicketStatusResolved, trail[2].ToStatus)
}

func TestChangeStatusRejectedEdgeLeavesNoTrace(t *testing.T) {
	f := newTicketServiceFixture(t)
	ticket := f.createTicket(t, domain.TicketPriorityMedium)
	actorID := "agent-1"

	_, err := f.service.ChangeStatus(context.Background(), ticket.ID, domain.TicketStatusClosed, nil, &actorID)

	var invalid *domain.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)

	stored, getErr := f.tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, getErr)
	assert.Equal(t, domain.TicketStatusOpen, stored.Status)
	assert.Len(t, f.history.forTicket(ticket.ID), 1)
	assert.Empty(t, f.dispatcher.ofType(events.EventTicketStatusChanged))
}

func TestChangeStatusUnknownTicket(t *testing.T) {
	f := newTicketServiceFixture(t)
	actorID := "agent-1"

	_, err := f.service.ChangeStatus(context.Background(), "missing", domain.TicketStatusInProgress, nil, &actorID)

	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestWaitingOnCustomerPausesAndResumesSla(t *testing.T) {
	f := newTicketServiceFixture(t)
	ticket := f.createTicket(t, domain.TicketPriorityMedium)
	actorID := "agent-1"
	originalDeadline := *ticket.SlaDeadline

	_, err := f.service.ChangeStatus(context.Background(), ticket.ID, domain.TicketStatusInProgress, nil, &actorID)
	require.NoError(t, err)
	paused, err := f.service.ChangeStatus(context.Background(), ticket.ID, domain.TicketStatusWaitingOnCustomer, nil, &actorID)
	require.NoError(t, err)
	require.NotNil(t, paused.SlaPausedAt)

	f.clock.Advance(5 * time.Hour)

	resumed, err := f.service.ChangeStatus(context.Background(), ticket.ID, domain.TicketStatusInProgress, nil, &actorID)
	require.NoError(t, err)
	assert.Nil(t, resumed.SlaPausedAt)
	require.NotNil(t, resumed.SlaDeadline)
	assert.Equal(t, originalDeadline.Add(5*time.Hour), *resumed.SlaDeadline)
}

func TestEscalateRequiresReason(t *testing.T) {
	f := newTicketServiceFixture(t)
	ticket := f.createTicket(t, domain.TicketPriorityMedium)

	_, err := f.service.EscalateTicket(context.Background(), ticket.ID, "  ", "agent-1")
	require.Error(t, err)

	escalated, err := f.service.EscalateTicket(context.Background(), ticket.ID, "sla about to breach", "agent-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusEscalated, escalated.Status)

	trail := f.history.forTicket(ticket.ID)
	require.Len(t, trail, 2)
	require.NotNil(t, trail[1].Reason)
	assert.Equal(t, "sla about to breach", *trail[1].Reason)

	published := f.dispatcher.ofType(events.EventTicketEscalated)
	require.Len(t, published, 1)
	payload, ok := published[0].Payload.(events.TicketEscalatedPayload)
	require.True(t, ok)
	assert.Equal(t, "sla about to breach", payload.Reason)
}

func TestAssignTicketDoesNotTouchStatusOrHistory(t *testing.T) {
	f := newTicketServiceFixture(t)
	ticket := f.createTicket(t, domain.TicketPriorityMedium)

	assigned, err := f.service.AssignTicket(context.Background(), ticket.ID, "agent-7")
	require.NoError(t, err)
	require.NotNil(t, assigned.AssignedToID)
	assert.Equal(t, "agent-7", *assigned.AssignedToID)
	assert.Equal(t, domain.TicketStatusOpen, assigned.Status)
	assert.Len(t, f.history.forTicket(ticket.ID), 1)
	assert.Len(t, f.dispatcher.ofType(events.EventTicketAssigned), 1)
}

func TestAddMessageIncrementsCount(t *testing.T) {
	f := newTicketServiceFixture(t)
	ticket := f.createTicket(t, domain.TicketPriorityMedium)

	msg, err := f.service.AddMessage(context.Background(), ticket.ID, "user-1", domain.UserTypeTenantAdmin, "any update?", false)
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)

	_, err = f.service.AddMessage(context.Background(), ticket.ID, "agent-1", domain.UserTypePlatformAgent, "working on it", false)
	require.NoError(t, err)

	stored, err := f.tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.MessageCount)

	published := f.dispatcher.ofType(events.EventTicketMessageAdded)
	require.Len(t, published, 2)
	payload, ok := published[1].Payload.(events.TicketMessageAddedPayload)
	require.True(t, ok)
	assert.Equal(t, 2, payload.MessageCount)
}

func TestAddMessageRejectsEmptyContent(t *testing.T) {
	f := newTicketServiceFixture(t)
	ticket := f.createTicket(t, domain.TicketPriorityMedium)

	_, err := f.service.AddMessage(context.Background(), ticket.ID, "user-1", domain.UserTypeTenantAdmin, "   ", false)
	require.Error(t, err)
}

func TestGetTicketFiltersInternalNotes(t *testing.T) {
	f := newTicketServiceFixture(t)
	ticket := f.createTicket(t, domain.TicketPriorityMedium)

	_, err := f.service.AddMessage(context.Background(), ticket.ID, "user-1", domain.UserTypeTenantAdmin, "hello", false)
	require.NoError(t, err)
	_, err = f.service.AddMessage(context.Background(), ticket.ID, "agent-1", domain.UserTypePlatformAgent, "customer sounds upset", true)
	require.NoError(t, err)

	_, visible, _, err := f.service.GetTicket(context.Background(), ticket.ID, false)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.False(t, visible[0].IsInternalNote)

	_, all, _, err := f.service.GetTicket(context.Background(), ticket.ID, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRateTicketRules(t *testing.T) {
	f := newTicketServiceFixture(t)
	ticket := f.createTicket(t, domain.TicketPriorityMedium)
	actorID := "agent-1"

	// Not yet resolved.
	_, err := f.service.RateTicket(context.Background(), ticket.ID, 5)
	var ratingErr *domain.RatingError
	require.ErrorAs(t, err, &ratingErr)

	_, err = f.service.ChangeStatus(context.Background(), ticket.ID, domain.TicketStatusInProgress, nil, &actorID)
	require.NoError(t, err)
	_, err = f.service.ChangeStatus(context.Background(), ticket.ID, domain.TicketStatusResolved, nil, &actorID)
	require.NoError(t, err)

	// Out of range.
	_, err = f.service.RateTicket(context.Background(), ticket.ID, 0)
	require.ErrorAs(t, err, &ratingErr)
	_, err = f.service.RateTicket(context.Background(), ticket.ID, 6)
	require.ErrorAs(t, err, &ratingErr)

	rated, err := f.service.RateTicket(context.Background(), ticket.ID, 4)
	require.NoError(t, err)
	require.NotNil(t, rated.SatisfactionRating)
	assert.Equal(t, 4, *rated.SatisfactionRating)

	// A second rating is rejected.
	_, err = f.service.RateTicket(context.Background(), ticket.ID, 5)
	require.ErrorAs(t, err, &ratingErr)

	assert.Len(t, f.dispatcher.ofType(events.EventTicketRated), 1)
}

func TestChangePriorityRecomputesDeadlines(t *testing.T) {
	f := newTicketServiceFixture(t)
	ticket := f.createTicket(t, domain.TicketPriorityMedium)

	f.clock.Advance(30 * time.Minute)
	updated, err := f.service.ChangePriority(context.Background(), ticket.ID, domain.TicketPriorityCritical)
	require.NoError(t, err)

	assert.Equal(t, domain.TicketPriorityCritical, updated.Priority)
	require.NotNil(t, updated.SlaResponseDeadline)
	require.NotNil(t, updated.SlaDeadline)
	assert.Equal(t, f.clock.Now().Add(1*time.Hour), *updated.SlaResponseDeadline)
	assert.Equal(t, f.clock.Now().Add(4*time.Hour), *updated.SlaDeadline)
	// Tightening priority must tighten the deadline.
	assert.True(t, updated.SlaDeadline.Before(*ticket.SlaDeadline))

	published := f.dispatcher.ofType(events.EventTicketPriorityChanged)
	require.Len(t, published, 1)
}

func TestChangePriorityRejectsTerminalAndUnknown(t *testing.T) {
	f := newTicketServiceFixture(t)
	ticket := f.createTicket(t, domain.TicketPriorityMedium)
	actorID := "agent-1"

	_, err := f.service.ChangePriority(context.Background(), ticket.ID, domain.TicketPriority("URGENT"))
	require.Error(t, err)

	for _, status := range []domain.TicketStatus{domain.TicketStatusInProgress, domain.TicketStatusResolved, domain.TicketStatusClosed} {
		_, err = f.service.ChangeStatus(context.Background(), ticket.ID, status, nil, &actorID)
		require.NoError(t, err)
	}

	_, err = f.service.ChangePriority(context.Background(), ticket.ID, domain.TicketPriorityHigh)
	require.Error(t, err)
}

func TestAutoCloseRecordsSystemActor(t *testing.T) {
	f := newTicketServiceFixture(t)
	ticket := f.createTicket(t, domain.TicketPriorityMedium)
	actorID := "agent-1"

	_, err := f.service.ChangeStatus(context.Background(), ticket.ID, domain.TicketStatusInProgress, nil, &actorID)
	require.NoError(t, err)
	_, err = f.service.ChangeStatus(context.Background(), ticket.ID, domain.TicketStatusResolved, nil, &actorID)
	require.NoError(t, err)

	closed, err := f.service.AutoClose(context.Background(), ticket.ID, "auto-closed: no activity")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, closed.Status)

	trail := f.history.forTicket(ticket.ID)
	last := trail[len(trail)-1]
	assert.Nil(t, last.ChangedBy)
	require.NotNil(t, last.Reason)
	assert.Equal(t, "auto-closed: no activity", *last.Reason)

	published := f.dispatcher.ofType(events.EventTicketAutoClosed)
	require.Len(t, published, 1)
	assert.Nil(t, published[0].Actor.UserID)
	assert.Nil(t, published[0].Actor.Type)
}

func TestCannedResponseLifecycle(t *testing.T) {
	f := newTicketServiceFixture(t)
	billing := domain.CategoryBilling

	created, err := f.service.CreateCannedResponse(context.Background(), "agent-1", CannedResponseInput{
		Title:    "Refund policy",
		Content:  "Refunds are processed within 5 business days.",
		Category: &billing,
	})
	require.NoError(t, err)

	_, err = f.service.CreateCannedResponse(context.Background(), "agent-1", CannedResponseInput{Title: " ", Content: "x"})
	require.Error(t, err)

	listed, err := f.service.ListCannedResponses(context.Background(), &billing)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	updated, err := f.service.UpdateCannedResponse(context.Background(), created.ID, CannedResponseInput{Title: "Refunds"})
	require.NoError(t, err)
	assert.Equal(t, "Refunds", updated.Title)
	assert.Equal(t, created.Content, updated.Content)

	require.NoError(t, f.service.DeleteCannedResponse(context.Background(), created.ID))

	var notFound *domain.NotFoundError
	err = f.service.DeleteCannedResponse(context.Background(), created.ID)
	require.ErrorAs(t, err, &notFound)
}
