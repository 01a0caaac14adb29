package entity

import "time"

// Workflow step statuses
const (
	StepStatusPending   = "pending"
	StepStatusCompleted = "completed"
	StepStatusOverdue   = "overdue"
)

// WorkflowStep is one required or optional action tied to a segment and a
// deadline. Exactly one of OffsetDays/OffsetHours/OffsetMinutes is non-zero;
// the deadline is that offset before the segment's departure.
type WorkflowStep struct {
	ID            string `json:"id"`
	Label         string `json:"label"`
	SegmentIndex  int    `json:"segment_index"`
	Required      bool   `json:"required"`
	OffsetDays    int    `json:"offset_days,omitempty"`
	OffsetHours   int    `json:"offset_hours,omitempty"`
	OffsetMinutes int    `json:"offset_minutes,omitempty"`
	AgentRole     string `json:"agent_role"`
	Status        string `json:"status"`
}

// Deadline resolves the step's deadline against a departure time.
func (s WorkflowStep) Deadline(departure time.Time) time.Time {
	switch {
	case s.OffsetDays > 0:
		return departure.AddDate(0, 0, -s.OffsetDays)
	case s.OffsetHours > 0:
		return departure.Add(-time.Duration(s.OffsetHours) * time.Hour)
	default:
		return departure.Add(-time.Duration(s.OffsetMinutes) * time.Minute)
	}
}

// IsOverdue reports whether the step's deadline has passed without completion.
func (s WorkflowStep) IsOverdue(departure, now time.Time) bool {
	if s.Status == StepStatusCompleted {
		return false
	}
	return now.After(s.Deadline(departure))
}
