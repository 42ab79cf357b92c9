package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/platformhq/support-service/internal/domain"
	"github.com/platformhq/support-service/internal/events"
	"github.com/platformhq/support-service/internal/repository"
)

const overviewCacheKey = "analytics:overview"

// SupportOverview is the read-only dashboard aggregate.
type SupportOverview struct {
	StatusCounts           map[domain.TicketStatus]int64 `json:"status_counts"`
	TotalTickets           int64                         `json:"total_tickets"`
	OpenTickets            int64                         `json:"open_tickets"`
	SlaComplianceRate      float64                       `json:"sla_compliance_rate"`
	AverageResolutionHours float64                       `json:"average_resolution_hours"`
	FirstResponseHours     float64                       `json:"first_response_hours"`
	GeneratedAt            time.Time                     `json:"generated_at"`
}

// AgentPerformance summarizes one agent's ticket outcomes.
type AgentPerformance struct {
	AgentID                string  `json:"agent_id"`
	TicketsAssigned        int     `json:"tickets_assigned"`
	TicketsResolved        int     `json:"tickets_resolved"`
	AverageRating          float64 `json:"average_rating"`
	RatedTickets           int     `json:"rated_tickets"`
	AverageResolutionHours float64 `json:"average_resolution_hours"`
	SlaComplianceRate      float64 `json:"sla_compliance_rate"`
}

// AnalyticsService computes overview counts, SLA compliance, resolution
// times and per-agent performance. It never mutates ticket state.
type AnalyticsService struct {
	tickets  repository.TicketRepository
	messages repository.TicketMessageRepository
	sla      *domain.SlaPolicy
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// AnalyticsDependencies bundles collaborators for the analytics service.
type AnalyticsDependencies struct {
	TicketRepo  repository.TicketRepository
	MessageRepo repository.TicketMessageRepository
	SlaPolicy   *domain.SlaPolicy
	Cache       *redis.Client
	CacheTTL    time.Duration
	Logger      *zap.Logger
	Now         func() time.Time
}

// NewAnalyticsService constructs the service.
func NewAnalyticsService(deps AnalyticsDependencies) *AnalyticsService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{
		tickets:  deps.TicketRepo,
		messages: deps.MessageRepo,
		sla:      deps.SlaPolicy,
		cache:    deps.Cache,
		cacheTTL: deps.CacheTTL,
		logger:   logger,
		now:      now,
	}
}

// RegisterCacheInvalidation drops the cached overview whenever a ticket
// event fires, so the next read recomputes.
func (s *AnalyticsService) RegisterCacheInvalidation(dispatcher events.Dispatcher) {
	if dispatcher == nil || s.cache == nil {
		return
	}
	invalidate := func(ctx context.Context, _ events.Event) error {
		if err := s.cache.Del(ctx, overviewCacheKey).Err(); err != nil {
			s.logger.Warn("analytics cache invalidation failed", zap.Error(err))
		}
		return nil
	}
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketStatusChanged,
		events.EventTicketPriorityChanged,
		events.EventTicketAssigned,
		events.EventTicketEscalated,
		events.EventTicketMessageAdded,
		events.EventTicketRated,
		events.EventTicketAutoClosed,
	} {
		dispatcher.Subscribe(eventType, invalidate)
	}
}

// Overview returns the dashboard aggregate, serving from the Redis cache
// when a fresh copy exists.
func (s *AnalyticsService) Overview(ctx context.Context) (*SupportOverview, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, overviewCacheKey).Bytes()
		if err == nil {
			var cached SupportOverview
			if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
				return &cached, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("analytics cache read failed", zap.Error(err))
		}
	}

	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{})
	if err != nil {
		return nil, err
	}
	overview := s.computeOverview(tickets)

	if s.messages != nil {
		if hours, err := s.messages.AvgFirstAgentResponseHours(ctx); err == nil {
			overview.FirstResponseHours = hours
		} else {
			s.logger.Warn("first response aggregation failed", zap.Error(err))
		}
	}

	if s.cache != nil {
		if raw, err := json.Marshal(overview); err == nil {
			if err := s.cache.Set(ctx, overviewCacheKey, raw, s.cacheTTL).Err(); err != nil {
				s.logger.Warn("analytics cache write failed", zap.Error(err))
			}
		}
	}
	return overview, nil
}

func (s *AnalyticsService) computeOverview(tickets []domain.Ticket) *SupportOverview {
	now := s.now()
	overview := &SupportOverview{
		StatusCounts: make(map[domain.TicketStatus]int64),
		GeneratedAt:  now,
	}

	var activeCount, breachedCount int64
	var resolvedCount int64
	var resolutionHours float64

	for i := range tickets {
		ticket := &tickets[i]
		overview.StatusCounts[ticket.Status]++
		overview.TotalTickets++
		if !ticket.Status.IsTerminal() {
			overview.OpenTickets++
		}

		if ticket.Status != domain.TicketStatusResolved && ticket.Status != domain.TicketStatusClosed {
			activeCount++
			if s.sla.IsBreached(ticket, now) {
				breachedCount++
			}
		}
		if ticket.ResolvedAt != nil {
			resolvedCount++
			resolutionHours += ticket.ResolvedAt.Sub(ticket.CreatedAt).Hours()
		}
	}

	if activeCount == 0 {
		overview.SlaComplianceRate = 100
	} else {
		overview.SlaComplianceRate = float64(activeCount-breachedCount) / float64(activeCount) * 100
	}
	if resolvedCount > 0 {
		overview.AverageResolutionHours = resolutionHours / float64(resolvedCount)
	}
	return overview
}

// StatusCounts returns the DB-side ticket count per status. Cheaper than
// Overview when only the breakdown is needed; never cached.
func (s *AnalyticsService) StatusCounts(ctx context.Context) (map[domain.TicketStatus]int64, error) {
	return s.tickets.CountByStatus(ctx)
}

// AgentPerformanceReport aggregates outcomes per assigned agent.
func (s *AnalyticsService) AgentPerformanceReport(ctx context.Context) ([]AgentPerformance, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{})
	if err != nil {
		return nil, err
	}
	return s.computeAgentPerformance(tickets), nil
}

func (s *AnalyticsService) computeAgentPerformance(tickets []domain.Ticket) []AgentPerformance {
	now := s.now()

	type accumulator struct {
		assigned        int
		resolved        int
		ratingSum       int
		rated           int
		resolutionHours float64
		active          int
		breached        int
	}
	byAgent := make(map[string]*accumulator)
	order := []string{}

	for i := range tickets {
		ticket := &tickets[i]
		if ticket.AssignedToID == nil {
			continue
		}
		agentID := *ticket.AssignedToID
		acc, ok := byAgent[agentID]
		if !ok {
			acc = &accumulator{}
			byAgent[agentID] = acc
			order = append(order, agentID)
		}
		acc.assigned++
		if ticket.ResolvedAt != nil {
			acc.resolved++
			acc.resolutionHours += ticket.ResolvedAt.Sub(ticket.CreatedAt).Hours()
		}
		if ticket.SatisfactionRating != nil {
			acc.rated++
			acc.ratingSum += *ticket.SatisfactionRating
		}
		if ticket.Status != domain.TicketStatusResolved && ticket.Status != domain.TicketStatusClosed {
			acc.active++
			if s.sla.IsBreached(ticket, now) {
				acc.breached++
			}
		}
	}

	report := make([]AgentPerformance, 0, len(order))
	for _, agentID := range order {
		acc := byAgent[agentID]
		perf := AgentPerformance{
			AgentID:         agentID,
			TicketsAssigned: acc.assigned,
			TicketsResolved: acc.resolved,
			RatedTickets:    acc.rated,
		}
		if acc.rated > 0 {
			perf.AverageRating = float64(acc.ratingSum) / float64(acc.rated)
		}
		if acc.resolved > 0 {
			perf.AverageResolutionHours = acc.resolutionHours / float64(acc.resolved)
		}
		if acc.active == 0 {
			perf.SlaComplianceRate = 100
		} else {
			perf.SlaComplianceRate = float64(acc.active-acc.breached) / float64(acc.active) * 100
		}
		report = append(report, perf)
	}
	return report
}
