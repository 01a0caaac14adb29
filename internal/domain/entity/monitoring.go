package entity

import "time"

// Connection impact classes produced by a delay assessment
const (
	ImpactNone           = "none"
	ImpactAbsorbed       = "delay_absorbed"
	ImpactConnectionRisk = "connection_at_risk"
	ImpactConnectionLost = "connection_lost"
)

// DelayEvent is an inbound delay signal for one segment of a voyage.
type DelayEvent struct {
	VoyageID      string    `json:"voyage_id" validate:"required"`
	SegmentID     string    `json:"segment_id" validate:"required"`
	NewArrivalUTC time.Time `json:"new_arrival_utc" validate:"required"`
	DelayMinutes  int       `json:"delay_minutes" validate:"gte=0"`
	Source        string    `json:"source,omitempty"`
}

// DelayAssessment is the outcome of processing one delay event.
type DelayAssessment struct {
	VoyageID         string             `json:"voyage_id"`
	SegmentID        string             `json:"segment_id"`
	Impact           string             `json:"impact"`
	RequiredMinutes  float64            `json:"required_minutes,omitempty"`
	AvailableMinutes float64            `json:"available_minutes,omitempty"`
	ActionRequired   bool               `json:"action_required"`
	Alternatives     []AlternativeRoute `json:"alternatives,omitempty"`
	Message          string             `json:"message,omitempty"`
}

// DisruptionEvent is one entry in a monitoring session's event log.
type DisruptionEvent struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	VoyageID     string    `bson:"voyageId" json:"voyage_id"`
	SegmentID    string    `bson:"segmentId" json:"segment_id"`
	DelayMinutes int       `bson:"delayMinutes" json:"delay_minutes"`
	Impact       string    `bson:"impact" json:"impact"`
	OccurredAt   time.Time `bson:"occurredAt" json:"occurred_at"`
}

// MonitoringSession is the per-voyage monitoring state. Exactly one session
// may exist per voyage id at a time.
type MonitoringSession struct {
	VoyageID    string            `json:"voyage_id"`
	StartedAt   time.Time         `json:"started_at"`
	LastChecked time.Time         `json:"last_checked"`
	Events      []DisruptionEvent `json:"events"`
}

// VoyageStatusView reconciles a voyage's booking records, disruption
// history and current transfer feasibility into one read model. Derived on
// demand, never persisted.
type VoyageStatusView struct {
	VoyageID    string             `json:"voyage_id"`
	Status      string             `json:"status"`
	Monitored   bool               `json:"monitored"`
	LastChecked time.Time          `json:"last_checked,omitempty"`
	Bookings    []*BookingRecord   `json:"bookings,omitempty"`
	Disruptions []*DisruptionEvent `json:"disruptions,omitempty"`
	Transfers   []TransferPoint    `json:"transfers"`
}

// MonitoringResult reports the outcome of a start/stop monitoring call.
type MonitoringResult struct {
	VoyageID  string `json:"voyage_id"`
	Monitored bool   `json:"monitored"`
	Message   string `json:"message"`
}
