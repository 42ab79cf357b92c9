package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/platformhq/support-service/internal/domain"
)

// TicketMessageRepository encapsulates message persistence.
type TicketMessageRepository interface {
	// CreateAndCount inserts the message and bumps the parent ticket's
	// message_count in one statement pair inside a transaction, returning
	// the new count. Concurrent additions on the same ticket serialize on
	// the row update.
	CreateAndCount(ctx context.Context, msg *domain.TicketMessage) (int, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketMessage, error)
	CountByTicketCreatedAfter(ctx context.Context, ticketID string, after time.Time) (int64, error)
	// AvgFirstAgentResponseHours averages, over tickets that received at
	// least one agent reply, the delay between ticket creation and that
	// first reply.
	AvgFirstAgentResponseHours(ctx context.Context) (float64, error)
}

type ticketMessageRepository struct {
	pool *pgxpool.Pool
}

// NewTicketMessageRepository instantiates repository.
func NewTicketMessageRepository(pool *pgxpool.Pool) TicketMessageRepository {
	return &ticketMessageRepository{pool: pool}
}

func (r *ticketMessageRepository) CreateAndCount(ctx context.Context, msg *domain.TicketMessage) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insert = `
        INSERT INTO ticket_messages (ticket_id, sender_id, sender_type, content, is_internal_note)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	if err := tx.QueryRow(ctx, insert,
		msg.TicketID,
		msg.SenderID,
		msg.SenderType,
		msg.Content,
		msg.IsInternalNote,
	).Scan(&msg.ID, &msg.CreatedAt); err != nil {
		return 0, err
	}

	var count int
	const bump = `UPDATE tickets SET message_count = message_count + 1, updated_at=NOW()
                  WHERE id=$1 RETURNING message_count`
	if err := tx.QueryRow(ctx, bump, msg.TicketID).Scan(&count); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ticketMessageRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketMessage, error) {
	const query = `
        SELECT id, ticket_id, sender_id, sender_type, content, is_internal_note, created_at
        FROM ticket_messages WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := []domain.TicketMessage{}
	for rows.Next() {
		var msg domain.TicketMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.TicketID,
			&msg.SenderID,
			&msg.SenderType,
			&msg.Content,
			&msg.IsInternalNote,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func (r *ticketMessageRepository) AvgFirstAgentResponseHours(ctx context.Context) (float64, error) {
	const query = `
        SELECT COALESCE(AVG(EXTRACT(EPOCH FROM (first_reply.at - t.created_at)) / 3600.0), 0)
        FROM tickets t
        JOIN LATERAL (
            SELECT MIN(m.created_at) AS at
            FROM ticket_messages m
            WHERE m.ticket_id = t.id AND m.sender_type = $1 AND NOT m.is_internal_note
        ) first_reply ON first_reply.at IS NOT NULL`
	var hours float64
	if err := r.pool.QueryRow(ctx, query, domain.UserTypePlatformAgent).Scan(&hours); err != nil {
		return 0, err
	}
	return hours, nil
}

func (r *ticketMessageRepository) CountByTicketCreatedAfter(ctx context.Context, ticketID string, after time.Time) (int64, error) {
	const query = `SELECT COUNT(*) FROM ticket_messages WHERE ticket_id=$1 AND created_at > $2`
	var count int64
	if err := r.pool.QueryRow(ctx, query, ticketID, after).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
