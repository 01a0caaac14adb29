package entity

import "time"

// Booking statuses
const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusWarning   = "warning"
	BookingStatusTooLate   = "too_late"
)

// Deadline check kinds
const (
	DeadlineConfirmed = "CONFIRMED"
	DeadlineWarning   = "WARNING"
	DeadlineTooLate   = "TOO_LATE"
)

// DeadlineCheck is the structured outcome of a booking-deadline validation.
// Deadline violations are expected outcomes, not errors; the numeric fields
// let callers render exact messaging.
type DeadlineCheck struct {
	Kind           string  `json:"kind"`
	Valid          bool    `json:"valid"`
	HoursRemaining float64 `json:"hours_remaining"`
	RequiredHours  float64 `json:"required_hours"`
	RuleSource     string  `json:"rule_source"`
	Message        string  `json:"message"`
}

// BookingRecord is one confirmed (or attempted) assistance booking for a
// segment. The reference is immutable once confirmed; a confirmed booking is
// never retroactively invalidated by the deadline validator.
type BookingRecord struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	Reference  string    `bson:"reference" json:"reference"`
	VoyageID   string    `bson:"voyageId" json:"voyage_id"`
	SegmentID  string    `bson:"segmentId" json:"segment_id"`
	UserID     string    `bson:"userId" json:"user_id"`
	Operator   string    `bson:"operator" json:"operator"`
	Status     string    `bson:"status" json:"status"`
	AgentID    string    `bson:"agentId,omitempty" json:"agent_id,omitempty"`
	PMRNeeds   []string  `bson:"pmrNeeds,omitempty" json:"pmr_needs,omitempty"`
	BookedAt   time.Time `bson:"bookedAt" json:"booked_at"`
	RemindedAt time.Time `bson:"remindedAt,omitempty" json:"reminded_at,omitempty"`
}

// BookingResult is the outcome of a single-segment booking attempt.
type BookingResult struct {
	Success   bool           `json:"success"`
	Reference string         `json:"reference,omitempty"`
	Status    string         `json:"status,omitempty"`
	Agent     *AgentInfo     `json:"agent,omitempty"`
	Check     *DeadlineCheck `json:"check,omitempty"`
	Message   string         `json:"message,omitempty"`
}

// VoyageBookingResult aggregates per-segment booking outcomes for a voyage.
// Success is true only if every qualifying segment booked successfully.
type VoyageBookingResult struct {
	Success  bool            `json:"success"`
	VoyageID string          `json:"voyage_id"`
	Results  []BookingResult `json:"results"`
	Message  string          `json:"message,omitempty"`
}
