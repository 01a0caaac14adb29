package router

import (
	"pmr-assist-service/internal/usecase"
	"pmr-assist-service/pkg/logger"
)

// SubjectRouter routes operator messages to handlers based on subject
type SubjectRouter struct {
	handlers []usecase.MessageHandler
	logger   logger.Logger
}

// NewSubjectRouter creates a new subject router
func NewSubjectRouter(logger logger.Logger) *SubjectRouter {
	return &SubjectRouter{
		handlers: make([]usecase.MessageHandler, 0),
		logger:   logger,
	}
}

// Register registers a handler for specific subject patterns
func (r *SubjectRouter) Register(handler usecase.MessageHandler) {
	r.handlers = append(r.handlers, handler)
	r.logger.Info("Registered message handler", "handler", handler)
}

// GetHandler returns the appropriate handler for a given subject
func (r *SubjectRouter) GetHandler(subject string) usecase.MessageHandler {
	for _, handler := range r.handlers {
		if handler.CanHandle(subject) {
			return handler
		}
	}
	return nil
}
