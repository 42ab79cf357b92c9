package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/platformhq/support-service/internal/domain"
	"github.com/platformhq/support-service/internal/events"
	"github.com/platformhq/support-service/internal/repository"
)

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]*domain.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]*domain.Ticket)}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *ticket
	return &clone, nil
}

func (r *fakeTicketRepo) GetByTicketNumber(_ context.Context, number string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ticket := range r.tickets {
		if ticket.TicketNumber == number {
			clone := *ticket
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Ticket{}
	for _, ticket := range r.tickets {
		if filter.TenantID != nil && ticket.TenantID != *filter.TenantID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
			continue
		}
		out = append(out, *ticket)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TicketNumber < out[j].TicketNumber })
	return out, nil
}

func (r *fakeTicketRepo) ListResolvedBefore(_ context.Context, threshold time.Time, limit int) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Ticket{}
	for _, ticket := range r.tickets {
		if ticket.Status != domain.TicketStatusResolved || ticket.ResolvedAt == nil {
			continue
		}
		if ticket.ResolvedAt.Before(threshold) {
			out = append(out, *ticket)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ResolvedAt.Before(*out[j].ResolvedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeTicketRepo) CountByStatus(_ context.Context) (map[domain.TicketStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[domain.TicketStatus]int64)
	for _, ticket := range r.tickets {
		counts[ticket.Status]++
	}
	return counts, nil
}

func containsStatus(statuses []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}

type fakeMessageRepo struct {
	mu               sync.Mutex
	tickets          *fakeTicketRepo
	messages         map[string][]domain.TicketMessage
	firstResponseAvg float64
}

func newFakeMessageRepo(tickets *fakeTicketRepo) *fakeMessageRepo {
	return &fakeMessageRepo{tickets: tickets, messages: make(map[string][]domain.TicketMessage)}
}

func (r *fakeMessageRepo) CreateAndCount(_ context.Context, msg *domain.TicketMessage) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg.ID = uuid.NewString()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	r.messages[msg.TicketID] = append(r.messages[msg.TicketID], *msg)

	r.tickets.mu.Lock()
	defer r.tickets.mu.Unlock()
	ticket, ok := r.tickets.tickets[msg.TicketID]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	ticket.MessageCount++
	return ticket.MessageCount, nil
}

func (r *fakeMessageRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.TicketMessage{}, r.messages[ticketID]...), nil
}

func (r *fakeMessageRepo) CountByTicketCreatedAfter(_ context.Context, ticketID string, after time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, msg := range r.messages[ticketID] {
		if msg.CreatedAt.After(after) {
			count++
		}
	}
	return count, nil
}

func (r *fakeMessageRepo) AvgFirstAgentResponseHours(_ context.Context) (float64, error) {
	return r.firstResponseAvg, nil
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	entries []domain.TicketStatusHistory
}

func (r *fakeHistoryRepo) Create(_ context.Context, entry *domain.TicketStatusHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeHistoryRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketStatusHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.TicketStatusHistory{}
	for _, entry := range r.entries {
		if entry.TicketID == ticketID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (r *fakeHistoryRepo) forTicket(ticketID string) []domain.TicketStatusHistory {
	entries, _ := r.ListByTicket(context.Background(), ticketID)
	return entries
}

type fakeCannedRepo struct {
	mu        sync.Mutex
	responses map[string]*domain.CannedResponse
}

func newFakeCannedRepo() *fakeCannedRepo {
	return &fakeCannedRepo{responses: make(map[string]*domain.CannedResponse)}
}

func (r *fakeCannedRepo) Create(_ context.Context, response *domain.CannedResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	response.ID = uuid.NewString()
	response.CreatedAt = time.Now()
	response.UpdatedAt = response.CreatedAt
	clone := *response
	r.responses[response.ID] = &clone
	return nil
}

func (r *fakeCannedRepo) Update(_ context.Context, response *domain.CannedResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.responses[response.ID]; !ok {
		return pgx.ErrNoRows
	}
	response.UpdatedAt = time.Now()
	clone := *response
	r.responses[response.ID] = &clone
	return nil
}

func (r *fakeCannedRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.responses[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.responses, id)
	return nil
}

func (r *fakeCannedRepo) GetByID(_ context.Context, id string) (*domain.CannedResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	response, ok := r.responses[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *response
	return &clone, nil
}

func (r *fakeCannedRepo) List(_ context.Context, category *domain.TicketCategory) ([]domain.CannedResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.CannedResponse{}
	for _, response := range r.responses {
		if category != nil {
			if response.Category == nil || *response.Category != *category {
				continue
			}
		}
		out = append(out, *response)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) ofType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := []events.Event{}
	for _, event := range d.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}
