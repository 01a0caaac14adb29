package repository

import (
	"context"

	"pmr-assist-service/internal/domain/entity"
)

// AgentRepository defines the interface for agent-assignment operations.
// AssignByLocation always returns a usable agent, falling back to a default
// when the dispatch service is unreachable, so planning logic never
// special-cases "no agent."
type AgentRepository interface {
	AssignByLocation(ctx context.Context, location string) *entity.AgentInfo
	AssignByLocationWithPriority(ctx context.Context, location, priority string) *entity.AgentInfo
}
