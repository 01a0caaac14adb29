package repository

import (
	"context"
	"time"

	"pmr-assist-service/internal/domain/entity"
)

// OperatorMessageRepository defines the interface for the inbound operator
// message queue backing the disruption mailbox feed.
type OperatorMessageRepository interface {
	Save(ctx context.Context, msg *entity.OperatorMessage) error
	FindByMessageIDs(ctx context.Context, messageIDs []string) (map[string]*entity.OperatorMessage, error)
	FindUnprocessed(ctx context.Context, limit int) ([]*entity.OperatorMessage, error)
	GetLastMessage(ctx context.Context) (*entity.OperatorMessage, error)
	UpdateStatusByMessageID(ctx context.Context, messageID, status string, startedAt time.Time) error
	MarkAsProcessedByMessageID(ctx context.Context, messageID, status, handlerType, errorDetail string, extractedData map[string]interface{}) error
}
