package entity

import "time"

// TransferPoint is the derived connection between two adjacent segments.
// It is always recomputed from the current mode pair and passenger profile,
// never persisted as a source of truth.
type TransferPoint struct {
	FromSegmentID   string    `json:"from_segment_id"`
	ToSegmentID     string    `json:"to_segment_id"`
	SegmentIndex    int       `json:"segment_index"`
	Location        string    `json:"location"`
	ArrivalUTC      time.Time `json:"arrival_utc"`
	DepartureUTC    time.Time `json:"departure_utc"`
	RequiredMinutes float64   `json:"required_minutes"`
	ActualMinutes   float64   `json:"actual_minutes"`
	Critical        bool      `json:"critical"`
}

// Feasible reports whether the available connection time covers the
// required minimum.
func (tp TransferPoint) Feasible() bool {
	return tp.ActualMinutes >= tp.RequiredMinutes
}

// TransferPlan is the outcome of coordinating a handover at a transfer point.
// An infeasible transfer is an expected outcome carrying required-vs-actual
// minutes and a remediation suggestion, not an error.
type TransferPlan struct {
	Feasible        bool       `json:"feasible"`
	Location        string     `json:"location"`
	RequiredMinutes float64    `json:"required_minutes"`
	ActualMinutes   float64    `json:"actual_minutes"`
	ArrivalAgent    *AgentInfo `json:"arrival_agent,omitempty"`
	DepartureAgent  *AgentInfo `json:"departure_agent,omitempty"`
	Suggestion      string     `json:"suggestion,omitempty"`
}
