package repository

import (
	"context"
	"time"

	"pmr-assist-service/internal/domain/entity"
)

// RouteSearchRepository defines the interface for multimodal route search.
type RouteSearchRepository interface {
	SearchRoute(ctx context.Context, origin, destination string, date time.Time, pmrNeeds []string) (*entity.RouteSearchResult, error)
}
