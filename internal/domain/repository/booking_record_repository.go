package repository

import (
	"context"

	"pmr-assist-service/internal/domain/entity"
)

// BookingRecordRepository defines the interface for booking record storage.
type BookingRecordRepository interface {
	Save(ctx context.Context, record *entity.BookingRecord) error
	FindByReference(ctx context.Context, reference string) (*entity.BookingRecord, error)
	FindByVoyage(ctx context.Context, voyageID string) ([]*entity.BookingRecord, error)
}
