package entity

import (
	"time"
)

// Transport modes carried by a segment
const (
	ModePlane = "plane"
	ModeTrain = "train"
	ModeBus   = "bus"
	ModeTaxi  = "taxi"
	ModeWalk  = "walk"
)

// Mobility aid categories for a passenger profile
const (
	AidWheelchairElectric = "wheelchair_electric"
	AidWheelchairManual   = "wheelchair_manual"
	AidWalker             = "walker"
	AidCane               = "cane"
	AidNone               = "none"
)

// Voyage statuses
const (
	VoyageStatusPlanned   = "planned"
	VoyageStatusActive    = "active"
	VoyageStatusDisrupted = "disrupted"
	VoyageStatusCompleted = "completed"
)

// Segment is one leg of a voyage on a single transport mode and operator.
// Segments are owned exclusively by their voyage.
type Segment struct {
	ID           string    `bson:"id" json:"id"`
	Mode         string    `bson:"mode" json:"mode"`
	Operator     string    `bson:"operator" json:"operator"`
	FromLocation string    `bson:"fromLocation" json:"from_location"`
	ToLocation   string    `bson:"toLocation" json:"to_location"`
	DepartureUTC time.Time `bson:"departureUtc" json:"departure_utc"`
	ArrivalUTC   time.Time `bson:"arrivalUtc" json:"arrival_utc"`
	Price        float64   `bson:"price" json:"price"`
}

// PassengerProfile describes the assistance requirements of the traveler
type PassengerProfile struct {
	MobilityAid     string   `bson:"mobilityAid" json:"mobility_aid"`
	AssistanceLevel string   `bson:"assistanceLevel" json:"assistance_level"`
	Needs           []string `bson:"needs,omitempty" json:"needs,omitempty"`
}

// Voyage is an ordered multi-segment itinerary with its passenger profile.
// Identity is immutable for the lifetime of the trip; segment times are
// mutated by delay events and segments are replaced from a missed point
// onward by rebooking.
type Voyage struct {
	ID        string           `bson:"_id,omitempty" json:"id"`
	UserID    string           `bson:"userId" json:"user_id"`
	Segments  []Segment        `bson:"segments" json:"segments"`
	Profile   PassengerProfile `bson:"profile" json:"profile"`
	Status    string           `bson:"status" json:"status"`
	CreatedAt time.Time        `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time        `bson:"updatedAt" json:"updated_at"`
}

// SegmentByID returns the segment with the given id and its index, or nil.
func (v *Voyage) SegmentByID(id string) (*Segment, int) {
	for i := range v.Segments {
		if v.Segments[i].ID == id {
			return &v.Segments[i], i
		}
	}
	return nil, -1
}

// FinalDestination returns the arrival location of the last segment.
func (v *Voyage) FinalDestination() string {
	if len(v.Segments) == 0 {
		return ""
	}
	return v.Segments[len(v.Segments)-1].ToLocation
}

// NeedsAssistance reports whether a segment requires an operator-side
// assistance booking. Taxi and walk legs are handled by the passenger
// or driver directly.
func NeedsAssistance(mode string) bool {
	return mode != ModeTaxi && mode != ModeWalk
}
