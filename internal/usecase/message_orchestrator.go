package usecase

import (
	"context"
	"fmt"
	"time"

	"pmr-assist-service/internal/domain/entity"
	"pmr-assist-service/internal/domain/repository"
	"pmr-assist-service/pkg/logger"
)

// MessageOrchestrator dispatches inbound operator messages to their
// handlers and tracks processing outcomes.
type MessageOrchestrator struct {
	messageRepo repository.OperatorMessageRepository
	router      MessageRouter
	logger      logger.Logger
}

// NewMessageOrchestrator creates a new message orchestrator
func NewMessageOrchestrator(
	messageRepo repository.OperatorMessageRepository,
	router MessageRouter,
	logger logger.Logger,
) *MessageOrchestrator {
	return &MessageOrchestrator{
		messageRepo: messageRepo,
		router:      router,
		logger:      logger,
	}
}

// ProcessMessage processes a single operator message
func (o *MessageOrchestrator) ProcessMessage(ctx context.Context, msg *entity.OperatorMessage) error {
	handler := o.router.GetHandler(msg.Subject)
	if handler == nil {
		o.logger.Debug("No handler found for message",
			"subject", msg.Subject,
			"messageID", msg.MessageID)

		// Not an error, just no matching handler for this subject
		return o.messageRepo.MarkAsProcessedByMessageID(
			ctx,
			msg.MessageID,
			entity.MessageStatusSkipped,
			"none",
			"No matching handler found",
			map[string]interface{}{
				"subject": msg.Subject,
				"reason":  "no_matching_handler",
			},
		)
	}

	handlerType := fmt.Sprintf("%T", handler)
	o.logger.Info("Processing message with handler",
		"messageID", msg.MessageID,
		"handler", handlerType,
		"subject", msg.Subject)

	if err := o.messageRepo.UpdateStatusByMessageID(ctx, msg.MessageID, entity.MessageStatusProcessing, time.Now()); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	if err := handler.Process(ctx, msg); err != nil {
		o.logger.Error("Handler failed to process message",
			"messageID", msg.MessageID,
			"handler", handlerType,
			"error", err)

		// Mark as failed but don't return the error, other messages continue
		o.messageRepo.MarkAsProcessedByMessageID(
			ctx,
			msg.MessageID,
			entity.MessageStatusFailed,
			handlerType,
			err.Error(),
			nil,
		)
		return nil
	}

	o.logger.Info("Message processed successfully",
		"messageID", msg.MessageID,
		"handler", handlerType)

	return o.messageRepo.MarkAsProcessedByMessageID(
		ctx,
		msg.MessageID,
		entity.MessageStatusProcessed,
		handlerType,
		"",
		nil,
	)
}

// ProcessPendingMessages processes any messages that were missed or failed
func (o *MessageOrchestrator) ProcessPendingMessages(ctx context.Context) error {
	messages, err := o.messageRepo.FindUnprocessed(ctx, 100)
	if err != nil {
		return fmt.Errorf("failed to find unprocessed messages: %w", err)
	}

	if len(messages) == 0 {
		return nil
	}

	o.logger.Info("Processing pending messages", "count", len(messages))

	for _, msg := range messages {
		if err := o.ProcessMessage(ctx, msg); err != nil {
			o.logger.Error("Failed to process pending message",
				"messageID", msg.MessageID,
				"error", err)
		}
	}

	return nil
}
