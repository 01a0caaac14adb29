package repository

import (
	"context"

	"pmr-assist-service/internal/domain/entity"
)

// NotificationRepository defines the interface for notification emission.
// Delivery guarantees belong to the push collaborator; the core treats
// Create as fire-and-forget and never aborts on a failed notification.
type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
}
