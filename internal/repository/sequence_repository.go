package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/platformhq/support-service/internal/domain"
)

// SequenceAllocator issues unique per-year ticket numbers. Implementations
// must guarantee that two concurrent calls never return the same number;
// gaps after failed creations are acceptable, duplicates are not.
type SequenceAllocator interface {
	NextTicketNumber(ctx context.Context, now time.Time) (string, error)
}

type pgSequenceAllocator struct {
	pool *pgxpool.Pool
}

// NewSequenceAllocator builds the Postgres-backed allocator. The counter
// row is read-modify-written under SELECT ... FOR UPDATE so concurrent
// allocators block until the row lock is released.
func NewSequenceAllocator(pool *pgxpool.Pool) SequenceAllocator {
	return &pgSequenceAllocator{pool: pool}
}

func (a *pgSequenceAllocator) NextTicketNumber(ctx context.Context, now time.Time) (string, error) {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return "", &domain.AllocationError{Err: err}
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	year := now.UTC().Year()

	var currentYear int
	var currentSequence int64
	err = tx.QueryRow(ctx,
		`SELECT current_year, current_sequence FROM ticket_sequence WHERE id=1 FOR UPDATE`,
	).Scan(&currentYear, &currentSequence)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		currentYear, currentSequence = year, 0
		if _, err := tx.Exec(ctx,
			`INSERT INTO ticket_sequence (id, current_year, current_sequence) VALUES (1, $1, 0)`,
			year,
		); err != nil {
			return "", &domain.AllocationError{Err: err}
		}
	case err != nil:
		return "", &domain.AllocationError{Err: err}
	}

	if currentYear != year {
		currentYear, currentSequence = year, 0
	}
	currentSequence++

	if _, err := tx.Exec(ctx,
		`UPDATE ticket_sequence SET current_year=$1, current_sequence=$2 WHERE id=1`,
		currentYear, currentSequence,
	); err != nil {
		return "", &domain.AllocationError{Err: err}
	}
	if err := tx.Commit(ctx); err != nil {
		return "", &domain.AllocationError{Err: err}
	}

	return domain.FormatTicketNumber(currentYear, currentSequence), nil
}
