package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/platformhq/support-service/internal/domain"
	"github.com/platformhq/support-service/internal/events"
	"github.com/platformhq/support-service/internal/repository"
	apperrors "github.com/platformhq/support-service/pkg/util"
)

// TicketService coordinates the ticket lifecycle: creation, transitions,
// assignment, escalation, messaging, rating and priority changes.
type TicketService struct {
	tickets    repository.TicketRepository
	messages   repository.TicketMessageRepository
	history    repository.StatusHistoryRepository
	canned     repository.CannedResponseRepository
	sequence   repository.SequenceAllocator
	sla        *domain.SlaPolicy
	dispatcher events.Dispatcher
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	MessageRepo repository.TicketMessageRepository
	HistoryRepo repository.StatusHistoryRepository
	CannedRepo  repository.CannedResponseRepository
	Sequence    repository.SequenceAllocator
	SlaPolicy   *domain.SlaPolicy
	Dispatcher  events.Dispatcher
	Now         func() time.Time
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		messages:   deps.MessageRepo,
		history:    deps.HistoryRepo,
		canned:     deps.CannedRepo,
		sequence:   deps.Sequence,
		sla:        deps.SlaPolicy,
		dispatcher: deps.Dispatcher,
		now:        now,
	}
}

// CreateTicketInput describes ticket creation payload.
type CreateTicketInput struct {
	TenantID          string
	CreatedByUserID   string
	CreatedByUserType domain.UserType
	Subject           string
	Description       string
	Category          domain.TicketCategory
	Priority          domain.TicketPriority
	AssignedToID      *string
}

// UpdateTicketInput describes editable ticket fields.
type UpdateTicketInput struct {
	Subject     *string
	Description *string
	Category    *domain.TicketCategory
}

// CannedResponseInput describes canned response payload.
type CannedResponseInput struct {
	Title    string
	Content  string
	Category *domain.TicketCategory
}

// CreateTicket allocates a ticket number, computes SLA deadlines, persists
// the ticket in OPEN status and records the implicit creation transition.
// Allocation failure aborts the whole creation; no ticket is persisted
// without a valid number.
func (s *TicketService) CreateTicket(ctx context.Context, input CreateTicketInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.Subject) == "" {
		return nil, apperrors.NewValidationError("subject required", nil)
	}
	if input.Priority == "" {
		input.Priority = domain.TicketPriorityMedium
	}
	if !input.Priority.Valid() {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": input.Priority})
	}
	if input.Category == "" {
		input.Category = domain.CategoryGeneral
	}

	now := s.now()
	number, err := s.sequence.NextTicketNumber(ctx, now)
	if err != nil {
		return nil, err
	}
	response, resolution := s.sla.Deadlines(input.Priority, now)

	ticket := &domain.Ticket{
		TicketNumber:        number,
		TenantID:            input.TenantID,
		CreatedByUserID:     input.CreatedByUserID,
		CreatedByUserType:   input.CreatedByUserType,
		Subject:             strings.TrimSpace(input.Subject),
		Description:         strings.TrimSpace(input.Description),
		Category:            input.Category,
		Priority:            input.Priority,
		Status:              domain.TicketStatusOpen,
		AssignedToID:        input.AssignedToID,
		SlaResponseDeadline: &response,
		SlaDeadline:         &resolution,
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	if err := s.recordTransition(ctx, ticket.ID, nil, domain.TicketStatusOpen, &input.CreatedByUserID, nil); err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventTicketCreated, ticket, actor(input.CreatedByUserType, input.CreatedByUserID), events.TicketCreatedPayload{
		TicketNumber: ticket.TicketNumber,
		Category:     ticket.Category,
		Priority:     ticket.Priority,
		Subject:      ticket.Subject,
		AssignedToID: ticket.AssignedToID,
	})
	return ticket, nil
}

// GetTicket fetches a ticket together with its thread and audit trail.
// Internal notes are filtered out unless includeInternal is set.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string, includeInternal bool) (*domain.Ticket, []domain.TicketMessage, []domain.TicketStatusHistory, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, nil, err
	}
	msgs, err := s.messages.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	if !includeInternal {
		visible := make([]domain.TicketMessage, 0, len(msgs))
		for _, msg := range msgs {
			if msg.IsInternalNote {
				continue
			}
			visible = append(visible, msg)
		}
		msgs = visible
	}
	trail, err := s.history.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	return ticket, msgs, trail, nil
}

// ListTickets returns tickets matching the filter.
func (s *TicketService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	return s.tickets.ListWithFilter(ctx, filter)
}

// ChangeStatus transitions the ticket along the state machine's edge table.
// The transition either fully applies, including its history row, or not at
// all; a rejected edge mutates nothing.
func (s *TicketService) ChangeStatus(ctx context.Context, ticketID string, target domain.TicketStatus, reason *string, actorID *string) (*domain.Ticket, error) {
	return s.transition(ctx, ticketID, target, reason, actorID, events.EventTicketStatusChanged)
}

// EscalateTicket moves the ticket to ESCALATED; the reason is mandatory and
// recorded verbatim in the history row.
func (s *TicketService) EscalateTicket(ctx context.Context, ticketID, reason string, actorID string) (*domain.Ticket, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.NewValidationError("escalation reason required", nil)
	}
	return s.transition(ctx, ticketID, domain.TicketStatusEscalated, &reason, &actorID, events.EventTicketEscalated)
}

func (s *TicketService) transition(ctx context.Context, ticketID string, target domain.TicketStatus, reason *string, actorID *string, eventType events.EventType) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	from := ticket.Status
	if err := domain.Transition(ticket, target, s.now()); err != nil {
		return nil, err
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	if err := s.recordTransition(ctx, ticket.ID, &from, target, actorID, reason); err != nil {
		return nil, err
	}

	eventActor := events.Actor{}
	if actorID != nil {
		agentType := domain.UserTypePlatformAgent
		eventActor = events.Actor{Type: &agentType, UserID: actorID}
	}
	var payload any
	switch {
	case eventType == events.EventTicketEscalated && reason != nil:
		payload = events.TicketEscalatedPayload{Reason: *reason}
	case eventType == events.EventTicketAutoClosed:
		autoClosed := events.TicketAutoClosedPayload{}
		if ticket.ResolvedAt != nil {
			autoClosed.ResolvedAt = *ticket.ResolvedAt
		}
		if reason != nil {
			autoClosed.Reason = *reason
		}
		payload = autoClosed
	default:
		payload = events.TicketStatusChangedPayload{FromStatus: from, ToStatus: target, Reason: reason}
	}
	s.publish(ctx, eventType, ticket, eventActor, payload)
	return ticket, nil
}

// AutoClose transitions a resolved ticket to CLOSED as the system actor
// (nil changedBy in the history row).
func (s *TicketService) AutoClose(ctx context.Context, ticketID, reason string) (*domain.Ticket, error) {
	return s.transition(ctx, ticketID, domain.TicketStatusClosed, &reason, nil, events.EventTicketAutoClosed)
}

// AssignTicket sets the assignee without touching the status.
func (s *TicketService) AssignTicket(ctx context.Context, ticketID, agentID string) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	ticket.AssignedToID = &agentID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventTicketAssigned, ticket, actor(domain.UserTypePlatformAgent, agentID), events.TicketAssignedPayload{
		AssignedToID: ticket.AssignedToID,
	})
	return ticket, nil
}

// AddMessage appends a message to the ticket's thread. The parent ticket's
// message counter is incremented atomically with the insert.
func (s *TicketService) AddMessage(ctx context.Context, ticketID, senderID string, senderType domain.UserType, content string, isInternalNote bool) (*domain.TicketMessage, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.NewValidationError("content required", nil)
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	msg := &domain.TicketMessage{
		TicketID:       ticket.ID,
		SenderID:       senderID,
		SenderType:     senderType,
		Content:        strings.TrimSpace(content),
		IsInternalNote: isInternalNote,
	}
	count, err := s.messages.CreateAndCount(ctx, msg)
	if err != nil {
		return nil, err
	}
	ticket.MessageCount = count

	s.publish(ctx, events.EventTicketMessageAdded, ticket, actor(senderType, senderID), events.TicketMessageAddedPayload{
		MessageID:      msg.ID,
		SenderType:     senderType,
		SenderID:       senderID,
		IsInternalNote: isInternalNote,
		MessageCount:   count,
	})
	return msg, nil
}

// RateTicket records a 1..5 satisfaction rating on a resolved or closed
// ticket. A ticket can be rated once; later attempts are rejected.
func (s *TicketService) RateTicket(ctx context.Context, ticketID string, rating int) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status != domain.TicketStatusResolved && ticket.Status != domain.TicketStatusClosed {
		return nil, &domain.RatingError{Message: "only resolved or closed tickets can be rated"}
	}
	if rating < 1 || rating > 5 {
		return nil, &domain.RatingError{Message: "rating must be between 1 and 5"}
	}
	if ticket.SatisfactionRating != nil {
		return nil, &domain.RatingError{Message: "ticket already rated"}
	}

	ticket.SatisfactionRating = &rating
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventTicketRated, ticket, actor(ticket.CreatedByUserType, ticket.CreatedByUserID), events.TicketRatedPayload{
		Rating: rating,
	})
	return ticket, nil
}

// ChangePriority updates the priority and recomputes both SLA deadlines
// anchored at the current instant. A paused clock stays paused.
func (s *TicketService) ChangePriority(ctx context.Context, ticketID string, newPriority domain.TicketPriority) (*domain.Ticket, error) {
	if !newPriority.Valid() {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": newPriority})
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status.IsTerminal() {
		return nil, apperrors.NewValidationError("cannot change priority of a closed ticket", nil)
	}

	oldPriority := ticket.Priority
	ticket.Priority = newPriority
	response, resolution := s.sla.Deadlines(newPriority, s.now())
	ticket.SlaResponseDeadline = &response
	ticket.SlaDeadline = &resolution

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventTicketPriorityChanged, ticket, events.Actor{}, events.TicketPriorityChangedPayload{
		OldPriority: oldPriority,
		NewPriority: newPriority,
		SlaDeadline: ticket.SlaDeadline,
	})
	return ticket, nil
}

// UpdateTicket edits subject, description or category.
func (s *TicketService) UpdateTicket(ctx context.Context, ticketID string, input UpdateTicketInput) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if input.Subject != nil && strings.TrimSpace(*input.Subject) != "" {
		ticket.Subject = strings.TrimSpace(*input.Subject)
	}
	if input.Description != nil {
		ticket.Description = strings.TrimSpace(*input.Description)
	}
	if input.Category != nil {
		ticket.Category = *input.Category
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// IsBreached evaluates the ticket against the SLA policy.
func (s *TicketService) IsBreached(ticket *domain.Ticket) bool {
	return s.sla.IsBreached(ticket, s.now())
}

// ListCannedResponses returns reply templates, optionally by category.
func (s *TicketService) ListCannedResponses(ctx context.Context, category *domain.TicketCategory) ([]domain.CannedResponse, error) {
	return s.canned.List(ctx, category)
}

// CreateCannedResponse stores a new reply template.
func (s *TicketService) CreateCannedResponse(ctx context.Context, createdBy string, input CannedResponseInput) (*domain.CannedResponse, error) {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Content) == "" {
		return nil, apperrors.NewValidationError("title and content required", nil)
	}
	response := &domain.CannedResponse{
		Title:     strings.TrimSpace(input.Title),
		Content:   input.Content,
		Category:  input.Category,
		CreatedBy: createdBy,
	}
	if err := s.canned.Create(ctx, response); err != nil {
		return nil, err
	}
	return response, nil
}

// UpdateCannedResponse edits an existing reply template.
func (s *TicketService) UpdateCannedResponse(ctx context.Context, id string, input CannedResponseInput) (*domain.CannedResponse, error) {
	response, err := s.canned.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.NotFoundError{Resource: "canned response", ID: id}
		}
		return nil, err
	}
	if strings.TrimSpace(input.Title) != "" {
		response.Title = strings.TrimSpace(input.Title)
	}
	if strings.TrimSpace(input.Content) != "" {
		response.Content = input.Content
	}
	if input.Category != nil {
		response.Category = input.Category
	}
	if err := s.canned.Update(ctx, response); err != nil {
		return nil, err
	}
	return response, nil
}

// DeleteCannedResponse removes a reply template.
func (s *TicketService) DeleteCannedResponse(ctx context.Context, id string) error {
	if err := s.canned.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.NotFoundError{Resource: "canned response", ID: id}
		}
		return err
	}
	return nil
}

// loadTicket resolves either the opaque id or the human-readable TKT number.
func (s *TicketService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	var ticket *domain.Ticket
	var err error
	if strings.HasPrefix(ticketID, "TKT-") {
		ticket, err = s.tickets.GetByTicketNumber(ctx, ticketID)
	} else {
		ticket, err = s.tickets.GetByID(ctx, ticketID)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewTicketNotFound(ticketID)
		}
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) recordTransition(ctx context.Context, ticketID string, from *domain.TicketStatus, to domain.TicketStatus, changedBy *string, reason *string) error {
	entry := &domain.TicketStatusHistory{
		TicketID:   ticketID,
		FromStatus: from,
		ToStatus:   to,
		ChangedBy:  changedBy,
		Reason:     reason,
	}
	return s.history.Create(ctx, entry)
}

func (s *TicketService) publish(ctx context.Context, eventType events.EventType, ticket *domain.Ticket, eventActor events.Actor, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticket.ID,
		TenantID:  ticket.TenantID,
		Actor:     eventActor,
		Timestamp: s.now(),
		Payload:   payload,
	})
}

func actor(userType domain.UserType, userID string) events.Actor {
	return events.Actor{Type: &userType, UserID: &userID}
}
