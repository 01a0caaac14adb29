package repository

import (
	"context"
	"time"

	"pmr-assist-service/internal/domain/entity"
)

// VoyageRepository defines the interface for voyage storage operations.
// A missing voyage is reported as a nil voyage with a nil error so callers
// can handle absence as a clean failure.
type VoyageRepository interface {
	Save(ctx context.Context, voyage *entity.Voyage) error
	GetByID(ctx context.Context, id string) (*entity.Voyage, error)
	UpdateSegmentTimes(ctx context.Context, voyageID, segmentID string, departure, arrival time.Time) error
	ReplaceSegmentsFrom(ctx context.Context, voyageID string, fromIndex int, segments []entity.Segment) error
	UpdateStatus(ctx context.Context, voyageID, status string) error
}
