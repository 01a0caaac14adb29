package repository

import (
	"context"

	"pmr-assist-service/internal/domain/entity"
)

// DisruptionRepository defines the interface for the disruption event log.
type DisruptionRepository interface {
	Save(ctx context.Context, event *entity.DisruptionEvent) error
	FindByVoyage(ctx context.Context, voyageID string) ([]*entity.DisruptionEvent, error)
}
