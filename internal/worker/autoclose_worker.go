package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/platformhq/support-service/internal/config"
	"github.com/platformhq/support-service/internal/domain"
	"github.com/platformhq/support-service/internal/observability"
	"github.com/platformhq/support-service/internal/repository"
)

// AutoCloser is the transition path the job drives; satisfied by
// service.TicketService.
type AutoCloser interface {
	AutoClose(ctx context.Context, ticketID, reason string) (*domain.Ticket, error)
}

// AutoCloseReason is recorded in the history row of every system closure.
const AutoCloseReason = "auto-closed: no activity"

// AutoCloseJob reconciles stale RESOLVED tickets into CLOSED. It is
// idempotent: closed tickets never reappear in the candidate query.
type AutoCloseJob struct {
	tickets  repository.TicketRepository
	messages repository.TicketMessageRepository
	closer   AutoCloser
	logger   *zap.Logger
	metrics  *observability.Metrics
	cfg      config.AutoCloseConfig
	now      func() time.Time
}

// AutoCloseDependencies bundles collaborators for the job.
type AutoCloseDependencies struct {
	TicketRepo  repository.TicketRepository
	MessageRepo repository.TicketMessageRepository
	Closer      AutoCloser
	Logger      *zap.Logger
	Metrics     *observability.Metrics
	Config      config.AutoCloseConfig
	Now         func() time.Time
}

// NewAutoCloseJob constructs the job.
func NewAutoCloseJob(deps AutoCloseDependencies) *AutoCloseJob {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AutoCloseJob{
		tickets:  deps.TicketRepo,
		messages: deps.MessageRepo,
		closer:   deps.Closer,
		logger:   logger,
		metrics:  deps.Metrics,
		cfg:      deps.Config,
		now:      now,
	}
}

// Start runs the job on its configured interval until the context ends.
func (j *AutoCloseJob) Start(ctx context.Context) {
	if !j.cfg.Enabled {
		j.logger.Info("auto-close job disabled")
		return
	}
	go func() {
		ticker := time.NewTicker(j.cfg.Interval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := j.Run(ctx); err != nil {
					j.logger.Error("auto-close run failed", zap.Error(err))
				}
			}
		}
	}()
}

// Run executes one reconciliation pass. Per-ticket failures are logged and
// the batch continues; only the candidate query aborts the run.
func (j *AutoCloseJob) Run(ctx context.Context) error {
	now := j.now()
	threshold := now.Add(-j.cfg.Retention())

	candidates, err := j.tickets.ListResolvedBefore(ctx, threshold, j.cfg.BatchLimit)
	if err != nil {
		return err
	}

	closed, skipped := 0, 0
	for i := range candidates {
		ticket := &candidates[i]

		recentCutoff := now.Add(-j.cfg.Recency())
		recent, err := j.messages.CountByTicketCreatedAfter(ctx, ticket.ID, recentCutoff)
		if err != nil {
			j.logger.Warn("auto-close recency check failed",
				zap.String("ticket_id", ticket.ID), zap.Error(err))
			j.metrics.RecordJobRun("autoclose", "error")
			continue
		}
		if !shouldAutoClose(ticket, recent) {
			skipped++
			j.metrics.RecordJobRun("autoclose", "skipped")
			continue
		}

		// A user may have touched the ticket between the query and this
		// write; the transition path revalidates and we just move on.
		if _, err := j.closer.AutoClose(ctx, ticket.ID, AutoCloseReason); err != nil {
			j.logger.Warn("auto-close transition failed",
				zap.String("ticket_id", ticket.ID),
				zap.String("ticket_number", ticket.TicketNumber),
				zap.Error(err))
			j.metrics.RecordJobRun("autoclose", "error")
			continue
		}
		closed++
		j.metrics.RecordJobRun("autoclose", "closed")
	}

	j.logger.Info("auto-close pass complete",
		zap.Int("candidates", len(candidates)),
		zap.Int("closed", closed),
		zap.Int("skipped", skipped))
	return nil
}

// shouldAutoClose is the pure closure decision: a resolved candidate with
// no follow-up messages inside the recency window gets closed.
func shouldAutoClose(ticket *domain.Ticket, recentMessages int64) bool {
	if ticket.Status != domain.TicketStatusResolved {
		return false
	}
	return recentMessages == 0
}
