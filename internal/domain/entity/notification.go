package entity

import "time"

// Notification types
const (
	NotificationBookingConfirmed = "booking_confirmed"
	NotificationReminder         = "reminder"
	NotificationTransfer         = "transfer_coordination"
	NotificationDelay            = "delay"
	NotificationConnectionRisk   = "connection_risk"
	NotificationConnectionLost   = "connection_lost"
	NotificationInfo             = "info"
)

// Notification priorities
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// AgentInfo identifies an assistance agent assigned at a location
type AgentInfo struct {
	AgentID    string    `json:"agent_id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Location   string    `json:"location"`
	AssignedAt time.Time `json:"assigned_at"`
}

// Notification is one message handed to the push collaborator. Delivery is
// fire-and-forget from the core's perspective. A non-zero ScheduleAt asks
// the push service to deliver at that time instead of immediately.
type Notification struct {
	UserID     string                 `json:"user_id"`
	Type       string                 `json:"type"`
	Title      string                 `json:"title"`
	Message    string                 `json:"message"`
	Priority   string                 `json:"priority"`
	AgentInfo  *AgentInfo             `json:"agent_info,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	ScheduleAt time.Time              `json:"schedule_at,omitempty"`
}
