package entity

// AlternativeRoute is one rebooking candidate for a missed connection,
// annotated against the original remaining plan.
type AlternativeRoute struct {
	Segments             []Segment `json:"segments"`
	TotalPrice           float64   `json:"total_price"`
	TotalDurationMinutes float64   `json:"total_duration_minutes"`
	PriceDelta           float64   `json:"price_delta"`
	DurationDeltaMinutes float64   `json:"duration_delta_minutes"`
	AccessibilityScore   float64   `json:"accessibility_score"`
	AccessibilityOK      bool      `json:"accessibility_ok"`
}

// RouteSearchResult is the multimodal search collaborator's response shape.
type RouteSearchResult struct {
	Success bool            `json:"success"`
	Routes  []SearchedRoute `json:"routes"`
}

// SearchedRoute is one raw route candidate from the search collaborator.
type SearchedRoute struct {
	Segments             []Segment `json:"segments"`
	TotalPrice           float64   `json:"total_price"`
	TotalDurationMinutes float64   `json:"total_duration_minutes"`
	AccessibilityScore   float64   `json:"accessibility_score"`
}
