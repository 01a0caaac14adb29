package mail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"pmr-assist-service/internal/domain/entity"
	"pmr-assist-service/internal/domain/repository"
	"pmr-assist-service/pkg/logger"
)

// DisruptionFeed polls the operator disruption mailbox and persists new
// messages for processing.
type DisruptionFeed struct {
	gmailService *gmail.Service
	messageRepo  repository.OperatorMessageRepository
	logger       logger.Logger
	pollInterval time.Duration
}

// NewDisruptionFeed creates a new disruption mailbox feed
func NewDisruptionFeed(ctx context.Context, tokenSource oauth2.TokenSource, messageRepo repository.OperatorMessageRepository, logger logger.Logger, pollInterval time.Duration) (*DisruptionFeed, error) {
	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, err
	}

	return &DisruptionFeed{
		gmailService: service,
		messageRepo:  messageRepo,
		logger:       logger,
		pollInterval: pollInterval,
	}, nil
}

// FetchMessages pulls new messages from the mailbox into the message queue
func (s *DisruptionFeed) FetchMessages(ctx context.Context) error {
	lastMessage, _ := s.messageRepo.GetLastMessage(ctx)
	var fetchFrom time.Time
	var hasLastMessage bool

	if lastMessage != nil && !lastMessage.ReceivedAt.IsZero() {
		fetchFrom = lastMessage.ReceivedAt
		hasLastMessage = true
	} else {
		// Default starting point
		fetchFrom = time.Now().AddDate(0, 0, -7)
	}

	queryDate := fetchFrom
	if hasLastMessage {
		// Go back a day to catch any messages we might have missed
		queryDate = fetchFrom.AddDate(0, 0, -1)
	}

	query := fmt.Sprintf("after:%s", queryDate.Format("2006/01/02"))
	s.logger.Debug("Querying disruption mailbox", "query", query)

	req := s.gmailService.Users.Messages.List("me").Q(query)
	resp, err := req.Do()
	if err != nil {
		s.logger.Error("Failed to list mailbox messages", "error", err)
		return err
	}

	if len(resp.Messages) == 0 {
		return nil
	}

	messageIDs := make([]string, len(resp.Messages))
	for i, msg := range resp.Messages {
		messageIDs[i] = msg.Id
	}

	existing, err := s.messageRepo.FindByMessageIDs(ctx, messageIDs)
	if err != nil {
		s.logger.Error("Failed to batch check existing messages", "error", err)
		existing = make(map[string]*entity.OperatorMessage)
	}

	newCount := 0
	for _, msg := range resp.Messages {
		if _, exists := existing[msg.Id]; exists {
			continue
		}

		fullMsg, err := s.gmailService.Users.Messages.Get("me", msg.Id).Do()
		if err != nil {
			s.logger.Error("Failed to get message", "messageID", msg.Id, "error", err)
			continue
		}

		messageTime := time.Unix(0, fullMsg.InternalDate*int64(time.Millisecond))
		if hasLastMessage && !messageTime.After(fetchFrom) {
			continue
		}

		message, err := s.convertToMessage(fullMsg)
		if err != nil {
			s.logger.Error("Failed to convert message", "messageID", msg.Id, "error", err)
			continue
		}
		message.ReceivedAt = messageTime

		if !s.FilterPattern(message.Subject) {
			s.logger.Debug("Message doesn't match subject filter", "subject", message.Subject)
			continue
		}

		s.logger.Info("New operator message",
			"subject", message.Subject,
			"messageID", message.MessageID)

		if err := s.messageRepo.Save(ctx, message); err != nil {
			s.logger.Error("Failed to save message", "messageID", msg.Id, "error", err)
			continue
		}
		newCount++
	}

	s.logger.Info("Mailbox fetch completed",
		"totalFromMailbox", len(resp.Messages),
		"newMessages", newCount)
	return nil
}

// StartPolling starts polling the mailbox for new messages
func (s *DisruptionFeed) StartPolling(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Mailbox polling stopped")
			return
		case <-ticker.C:
			if err := s.FetchMessages(ctx); err != nil {
				s.logger.Error("Error polling mailbox", "error", err)
			}
		}
	}
}

// FilterPattern keeps every subject a registered handler can process:
// delay notices, assistance requests and rebooking confirmations.
func (s *DisruptionFeed) FilterPattern(subject string) bool {
	upper := strings.ToUpper(subject)
	return strings.Contains(upper, "DELAY NOTICE") ||
		strings.Contains(upper, "DISRUPTION") ||
		strings.Contains(upper, "ASSISTANCE REQUEST") ||
		strings.Contains(upper, "REBOOKING")
}

// convertToMessage converts a Gmail message to our domain entity
func (s *DisruptionFeed) convertToMessage(msg *gmail.Message) (*entity.OperatorMessage, error) {
	message := &entity.OperatorMessage{
		MessageID: msg.Id,
	}

	for _, header := range msg.Payload.Headers {
		switch header.Name {
		case "From":
			message.From = header.Value
		case "Subject":
			message.Subject = header.Value
		}
	}

	if msg.Payload.Body != nil && msg.Payload.Body.Data != "" {
		data, err := base64.URLEncoding.DecodeString(msg.Payload.Body.Data)
		if err != nil {
			return nil, err
		}
		message.Body = string(data)
	}

	// Multipart messages: prefer the plain-text part, fall back to HTML
	for _, part := range msg.Payload.Parts {
		if part.Body == nil || part.Body.Data == "" {
			continue
		}
		data, err := base64.URLEncoding.DecodeString(part.Body.Data)
		if err != nil {
			continue
		}
		if part.MimeType == "text/plain" {
			message.Body = string(data)
			break
		}
		if part.MimeType == "text/html" && message.Body == "" {
			message.Body = string(data)
		}
	}

	return message, nil
}
