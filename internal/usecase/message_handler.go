package usecase

import (
	"context"

	"pmr-assist-service/internal/domain/entity"
)

// MessageHandler defines the interface for inbound operator message handlers
type MessageHandler interface {
	// CanHandle determines if this handler can process the given message subject
	CanHandle(subject string) bool

	// Process processes the operator message
	Process(ctx context.Context, msg *entity.OperatorMessage) error
}

// MessageRouter routes operator messages to the appropriate handler based
// on subject
type MessageRouter interface {
	// Register registers a handler for specific subject patterns
	Register(handler MessageHandler)

	// GetHandler returns the appropriate handler for a given subject
	GetHandler(subject string) MessageHandler
}
