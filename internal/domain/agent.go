package domain

import "time"

// AgentRole enumerates platform support roles.
type AgentRole string

const (
	AgentRoleSupportAgent AgentRole = "SUPPORT_AGENT"
	AgentRoleSupportLead  AgentRole = "SUPPORT_LEAD"
)

// PlatformAgent is a support agent operating the platform surface.
type PlatformAgent struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         AgentRole
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
