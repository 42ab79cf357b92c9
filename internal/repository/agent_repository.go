package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/platformhq/support-service/internal/domain"
)

// AgentRepository stores platform support agents.
type AgentRepository interface {
	Create(ctx context.Context, agent *domain.PlatformAgent) error
	GetByID(ctx context.Context, id string) (*domain.PlatformAgent, error)
	GetByEmail(ctx context.Context, email string) (*domain.PlatformAgent, error)
	List(ctx context.Context) ([]domain.PlatformAgent, error)
}

type agentRepository struct {
	pool *pgxpool.Pool
}

// NewAgentRepository instantiates repository.
func NewAgentRepository(pool *pgxpool.Pool) AgentRepository {
	return &agentRepository{pool: pool}
}

const agentColumns = `id, name, email, password_hash, role, is_active, created_at, updated_at`

func (r *agentRepository) Create(ctx context.Context, agent *domain.PlatformAgent) error {
	const query = `
        INSERT INTO platform_agents (name, email, password_hash, role, is_active)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		agent.Name,
		strings.ToLower(agent.Email),
		agent.PasswordHash,
		agent.Role,
		agent.IsActive,
	).Scan(&agent.ID, &agent.CreatedAt, &agent.UpdatedAt)
}

func (r *agentRepository) GetByID(ctx context.Context, id string) (*domain.PlatformAgent, error) {
	query := `SELECT ` + agentColumns + ` FROM platform_agents WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *agentRepository) GetByEmail(ctx context.Context, email string) (*domain.PlatformAgent, error) {
	query := `SELECT ` + agentColumns + ` FROM platform_agents WHERE email=$1`
	return r.fetchSingle(ctx, query, strings.ToLower(email))
}

func (r *agentRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.PlatformAgent, error) {
	var agent domain.PlatformAgent
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&agent.ID,
		&agent.Name,
		&agent.Email,
		&agent.PasswordHash,
		&agent.Role,
		&agent.IsActive,
		&agent.CreatedAt,
		&agent.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *agentRepository) List(ctx context.Context) ([]domain.PlatformAgent, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+agentColumns+` FROM platform_agents ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	agents := []domain.PlatformAgent{}
	for rows.Next() {
		var agent domain.PlatformAgent
		if err := rows.Scan(
			&agent.ID,
			&agent.Name,
			&agent.Email,
			&agent.PasswordHash,
			&agent.Role,
			&agent.IsActive,
			&agent.CreatedAt,
			&agent.UpdatedAt,
		); err != nil {
			return nil, err
		}
		agents = append(agents, agent)
	}
	return agents, rows.Err()
}
