package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"pmr-assist-service/internal/domain/entity"
	"pmr-assist-service/internal/domain/repository"
	"pmr-assist-service/pkg/logger"
)

// HTTPNotificationRepository implements the NotificationRepository interface
// against the notification push service. Scheduled delivery is supported
// through a scheduleAt timestamp, used for J-1 reminders.
type HTTPNotificationRepository struct {
	logger      logger.Logger
	baseURL     string
	bearerToken string
	client      *http.Client
}

// NewHTTPNotificationRepository creates a new notification push client
func NewHTTPNotificationRepository(baseURL, bearerToken string, logger logger.Logger) repository.NotificationRepository {
	return &HTTPNotificationRepository{
		logger:      logger,
		baseURL:     baseURL,
		bearerToken: bearerToken,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

type pushRequest struct {
	UserID     string                 `json:"userId"`
	Type       string                 `json:"type"`
	Title      string                 `json:"title"`
	Message    string                 `json:"message"`
	Priority   string                 `json:"priority"`
	AgentInfo  *entity.AgentInfo      `json:"agentInfo,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	ScheduleAt string                 `json:"scheduleAt,omitempty"`
}

// Create hands a notification to the push service. A non-zero ScheduleAt is
// converted to UTC RFC3339 for delayed delivery.
func (r *HTTPNotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	payload := pushRequest{
		UserID:    notification.UserID,
		Type:      notification.Type,
		Title:     notification.Title,
		Message:   notification.Message,
		Priority:  notification.Priority,
		AgentInfo: notification.AgentInfo,
		Metadata:  notification.Metadata,
	}
	if !notification.ScheduleAt.IsZero() {
		payload.ScheduleAt = notification.ScheduleAt.UTC().Format(time.RFC3339)
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/notifications", r.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.bearerToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var errorBody map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errorBody)
		return fmt.Errorf("notification service returned status %d: %v", resp.StatusCode, errorBody)
	}

	r.logger.Info("Notification delivered to push service",
		"userId", notification.UserID,
		"type", notification.Type,
		"priority", notification.Priority,
		"scheduleAt", payload.ScheduleAt)
	return nil
}
