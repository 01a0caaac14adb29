package utils

import "time"

// DelayNotice is a disruption notice extracted from an operator email
type DelayNotice struct {
	VoyageID      string
	SegmentID     string
	NewArrivalUTC time.Time
	DelayMinutes  int
	Operator      string
}
