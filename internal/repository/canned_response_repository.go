package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/platformhq/support-service/internal/domain"
)

// CannedResponseRepository stores reusable reply templates.
type CannedResponseRepository interface {
	Create(ctx context.Context, response *domain.CannedResponse) error
	Update(ctx context.Context, response *domain.CannedResponse) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.CannedResponse, error)
	List(ctx context.Context, category *domain.TicketCategory) ([]domain.CannedResponse, error)
}

type cannedResponseRepository struct {
	pool *pgxpool.Pool
}

// NewCannedResponseRepository instantiates repository.
func NewCannedResponseRepository(pool *pgxpool.Pool) CannedResponseRepository {
	return &cannedResponseRepository{pool: pool}
}

func (r *cannedResponseRepository) Create(ctx context.Context, response *domain.CannedResponse) error {
	const query = `
        INSERT INTO canned_responses (title, content, category, created_by)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		response.Title,
		response.Content,
		response.Category,
		response.CreatedBy,
	).Scan(&response.ID, &response.CreatedAt, &response.UpdatedAt)
}

func (r *cannedResponseRepository) Update(ctx context.Context, response *domain.CannedResponse) error {
	const query = `
        UPDATE canned_responses SET title=$1, content=$2, category=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query,
		response.Title,
		response.Content,
		response.Category,
		response.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *cannedResponseRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM canned_responses WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *cannedResponseRepository) GetByID(ctx context.Context, id string) (*domain.CannedResponse, error) {
	const query = `
        SELECT id, title, content, category, created_by, created_at, updated_at
        FROM canned_responses WHERE id=$1`
	var response domain.CannedResponse
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&response.ID,
		&response.Title,
		&response.Content,
		&response.Category,
		&response.CreatedBy,
		&response.CreatedAt,
		&response.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *cannedResponseRepository) List(ctx context.Context, category *domain.TicketCategory) ([]domain.CannedResponse, error) {
	query := `SELECT id, title, content, category, created_by, created_at, updated_at
              FROM canned_responses`
	args := []any{}
	if category != nil {
		args = append(args, *category)
		query += ` WHERE category=$1`
	}
	query += ` ORDER BY title ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	responses := []domain.CannedResponse{}
	for rows.Next() {
		var response domain.CannedResponse
		if err := rows.Scan(
			&response.ID,
			&response.Title,
			&response.Content,
			&response.Category,
			&response.CreatedBy,
			&response.CreatedAt,
			&response.UpdatedAt,
		); err != nil {
			return nil, err
		}
		responses = append(responses, response)
	}
	return responses, rows.Err()
}
