package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/platformhq/support-service/internal/auth"
	"github.com/platformhq/support-service/internal/config"
	"github.com/platformhq/support-service/internal/domain"
	"github.com/platformhq/support-service/internal/repository"
	apperrors "github.com/platformhq/support-service/pkg/util"
)

// AgentService coordinates platform agent accounts and login.
type AgentService struct {
	agents     repository.AgentRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAgentService builds the service.
func NewAgentService(cfg config.AuthConfig, agents repository.AgentRepository, tokenMgr *auth.TokenManager) *AgentService {
	return &AgentService{
		agents:     agents,
		tokenMgr:   tokenMgr,
		bcryptCost: cfg.BcryptCost,
	}
}

// CreateAgentInput describes a new platform agent account.
type CreateAgentInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.AgentRole
}

// CreateAgent registers a new platform agent.
func (s *AgentService) CreateAgent(ctx context.Context, input CreateAgentInput) (*domain.PlatformAgent, error) {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Email) == "" {
		return nil, apperrors.NewValidationError("name and email required", nil)
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	if input.Role == "" {
		input.Role = domain.AgentRoleSupportAgent
	}

	if _, err := s.agents.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewValidationError("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	agent := &domain.PlatformAgent{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
		IsActive:     true,
	}
	if err := s.agents.Create(ctx, agent); err != nil {
		return nil, err
	}
	return agent, nil
}

// Login authenticates an agent and issues a role-bearing token.
func (s *AgentService) Login(ctx context.Context, email, password string) (*domain.PlatformAgent, string, time.Time, error) {
	agent, err := s.agents.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if !agent.IsActive {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("agent deactivated")
	}
	if err := auth.ComparePassword(agent.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(agent.ID, domain.UserTypePlatformAgent, nil, &agent.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return agent, token, exp, nil
}

// ListAgents returns every registered agent.
func (s *AgentService) ListAgents(ctx context.Context) ([]domain.PlatformAgent, error) {
	return s.agents.List(ctx)
}
