package entity

// LeadTimeRule is a minimum advance-notice rule for assistance booking,
// split by whether the departure date falls on a weekday or a weekend.
type LeadTimeRule struct {
	WeekdayHours float64 `json:"weekday_hours"`
	WeekendHours float64 `json:"weekend_hours"`
}

// ModePair is a directed (from-mode, to-mode) key into the transfer matrix.
// Transfer minutes are directional; never assume symmetry.
type ModePair struct {
	From string
	To   string
}
