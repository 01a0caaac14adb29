package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"pmr-assist-service/internal/domain/entity"
	"pmr-assist-service/internal/domain/repository"
	"pmr-assist-service/pkg/logger"
)

// Minimum accessibility score for a route to count as compatible with the
// passenger's needs.
const minAccessibilityScore = 0.7

// AlternativeSuggester proposes rebooking options for a missed connection,
// ranked by accessibility compatibility then by price delta.
type AlternativeSuggester struct {
	voyageRepo repository.VoyageRepository
	searchRepo repository.RouteSearchRepository
	logger     logger.Logger
}

// NewAlternativeSuggester creates a new alternative route suggester.
func NewAlternativeSuggester(
	voyageRepo repository.VoyageRepository,
	searchRepo repository.RouteSearchRepository,
	log logger.Logger,
) *AlternativeSuggester {
	return &AlternativeSuggester{
		voyageRepo: voyageRepo,
		searchRepo: searchRepo,
		logger:     log,
	}
}

// SuggestAlternatives searches for routes from the missed segment's
// departure point to the voyage's final destination, starting at fromTime.
// An empty list means "no options found"; search failures never surface as
// errors to the caller.
func (s *AlternativeSuggester) SuggestAlternatives(ctx context.Context, voyageID, missedSegmentID string, fromTime time.Time) []entity.AlternativeRoute {
	voyage, err := s.voyageRepo.GetByID(ctx, voyageID)
	if err != nil || voyage == nil {
		s.logger.Warn("Voyage not found for alternative search", "voyageId", voyageID, "error", err)
		return []entity.AlternativeRoute{}
	}

	missed, missedIndex := voyage.SegmentByID(missedSegmentID)
	if missed == nil {
		s.logger.Warn("Missed segment not found in voyage",
			"voyageId", voyageID,
			"segmentId", missedSegmentID)
		return []entity.AlternativeRoute{}
	}

	result, err := s.searchRepo.SearchRoute(ctx, missed.FromLocation, voyage.FinalDestination(), fromTime, voyage.Profile.Needs)
	if err != nil || result == nil || !result.Success {
		s.logger.Warn("Route search failed, returning no alternatives",
			"voyageId", voyageID,
			"origin", missed.FromLocation,
			"error", err)
		return []entity.AlternativeRoute{}
	}

	remainingPrice, remainingMinutes := remainingPlan(voyage, missedIndex, fromTime)

	alternatives := make([]entity.AlternativeRoute, 0, len(result.Routes))
	for _, route := range result.Routes {
		alternatives = append(alternatives, entity.AlternativeRoute{
			Segments:             route.Segments,
			TotalPrice:           route.TotalPrice,
			TotalDurationMinutes: route.TotalDurationMinutes,
			PriceDelta:           route.TotalPrice - remainingPrice,
			DurationDeltaMinutes: route.TotalDurationMinutes - remainingMinutes,
			AccessibilityScore:   route.AccessibilityScore,
			AccessibilityOK:      route.AccessibilityScore >= minAccessibilityScore,
		})
	}

	// Accessibility-compatible routes first, then ascending price delta.
	sort.SliceStable(alternatives, func(i, j int) bool {
		if alternatives[i].AccessibilityOK != alternatives[j].AccessibilityOK {
			return alternatives[i].AccessibilityOK
		}
		return alternatives[i].PriceDelta < alternatives[j].PriceDelta
	})

	s.logger.Info("Alternative routes ranked",
		"voyageId", voyageID,
		"candidates", len(alternatives))
	return alternatives
}

// ApplyAlternative rebooks a voyage onto the chosen route: the original
// segments from the missed one onward are replaced and the voyage goes back
// to active. The voyage identity is unchanged.
func (s *AlternativeSuggester) ApplyAlternative(ctx context.Context, voyageID, missedSegmentID string, route entity.AlternativeRoute) error {
	if len(route.Segments) == 0 {
		return fmt.Errorf("alternative route has no segments")
	}

	voyage, err := s.voyageRepo.GetByID(ctx, voyageID)
	if err != nil {
		return fmt.Errorf("failed to look up voyage %s: %w", voyageID, err)
	}
	if voyage == nil {
		return ErrVoyageNotFound
	}

	missed, missedIndex := voyage.SegmentByID(missedSegmentID)
	if missed == nil {
		return ErrSegmentNotFound
	}

	if err := s.voyageRepo.ReplaceSegmentsFrom(ctx, voyageID, missedIndex, route.Segments); err != nil {
		return fmt.Errorf("failed to replace segments of voyage %s: %w", voyageID, err)
	}
	if err := s.voyageRepo.UpdateStatus(ctx, voyageID, entity.VoyageStatusActive); err != nil {
		s.logger.Warn("Rebooked voyage kept its previous status", "voyageId", voyageID, "error", err)
	}

	s.logger.Info("Alternative route applied",
		"voyageId", voyageID,
		"fromSegment", missedSegmentID,
		"newSegments", len(route.Segments))
	return nil
}

// remainingPlan totals the price and duration of the original plan from the
// missed segment onward, for delta annotation.
func remainingPlan(voyage *entity.Voyage, missedIndex int, fromTime time.Time) (price, minutes float64) {
	for i := missedIndex; i < len(voyage.Segments); i++ {
		price += voyage.Segments[i].Price
	}
	last := voyage.Segments[len(voyage.Segments)-1]
	minutes = last.ArrivalUTC.Sub(fromTime).Minutes()
	if minutes < 0 {
		minutes = 0
	}
	return price, minutes
}
