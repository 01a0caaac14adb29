package templates

import (
	"context"
	"fmt"
	"strings"

	"pmr-assist-service/internal/domain/entity"
	"pmr-assist-service/internal/domain/repository"
	"pmr-assist-service/internal/usecase"
	"pmr-assist-service/pkg/clock"
	"pmr-assist-service/pkg/logger"
	"pmr-assist-service/pkg/utils"
)

// RebookingHandler handles rebooking confirmation messages for a missed
// connection. The referenced assistance booking locates the voyage and the
// missed segment; the best accessible alternative replaces the remaining
// segments, assistance is re-booked and monitoring resumes.
type RebookingHandler struct {
	bookingRepo  repository.BookingRecordRepository
	voyageRepo   repository.VoyageRepository
	suggester    *usecase.AlternativeSuggester
	orchestrator *usecase.BookingOrchestrator
	monitor      *usecase.PerturbationMonitor
	parser       *utils.NoticeParser
	clock        clock.Clock
	logger       logger.Logger
}

// NewRebookingHandler creates a new rebooking confirmation handler
func NewRebookingHandler(
	bookingRepo repository.BookingRecordRepository,
	voyageRepo repository.VoyageRepository,
	suggester *usecase.AlternativeSuggester,
	orchestrator *usecase.BookingOrchestrator,
	monitor *usecase.PerturbationMonitor,
	parser *utils.NoticeParser,
	clk clock.Clock,
	logger logger.Logger,
) *RebookingHandler {
	return &RebookingHandler{
		bookingRepo:  bookingRepo,
		voyageRepo:   voyageRepo,
		suggester:    suggester,
		orchestrator: orchestrator,
		monitor:      monitor,
		parser:       parser,
		clock:        clk,
		logger:       logger,
	}
}

// CanHandle determines if this handler can process the given message subject
func (h *RebookingHandler) CanHandle(subject string) bool {
	return strings.Contains(strings.ToUpper(subject), "REBOOKING")
}

// Process rebooks the voyage behind the referenced booking onto the best
// accessible alternative route
func (h *RebookingHandler) Process(ctx context.Context, msg *entity.OperatorMessage) error {
	reference, err := h.parser.ParseBookingRef(msg.Body)
	if err != nil {
		h.logger.Error("Failed to parse rebooking confirmation", "messageID", msg.MessageID, "error", err)
		return err
	}

	record, err := h.bookingRepo.FindByReference(ctx, reference)
	if err != nil {
		return fmt.Errorf("failed to load booking %s: %w", reference, err)
	}
	if record == nil {
		h.logger.Error("Rebooking for unknown booking", "messageID", msg.MessageID, "reference", reference)
		return fmt.Errorf("booking %s not found", reference)
	}

	alternatives := h.suggester.SuggestAlternatives(ctx, record.VoyageID, record.SegmentID, h.clock.Now())
	if len(alternatives) == 0 {
		h.logger.Warn("No alternative routes available",
			"voyageId", record.VoyageID,
			"segmentId", record.SegmentID)
		return nil
	}
	best := alternatives[0]
	if !best.AccessibilityOK {
		h.logger.Warn("No accessibility-compatible alternative, not rebooking",
			"voyageId", record.VoyageID,
			"bestScore", best.AccessibilityScore)
		return nil
	}

	if err := h.suggester.ApplyAlternative(ctx, record.VoyageID, record.SegmentID, best); err != nil {
		return fmt.Errorf("failed to apply alternative route: %w", err)
	}

	voyage, err := h.voyageRepo.GetByID(ctx, record.VoyageID)
	if err != nil || voyage == nil {
		return fmt.Errorf("failed to reload rebooked voyage %s: %w", record.VoyageID, err)
	}

	result := h.orchestrator.BookAssistanceForVoyage(ctx, voyage)
	if !result.Success {
		h.logger.Warn("Assistance booking rejected on rebooked voyage",
			"voyageId", voyage.ID,
			"message", result.Message)
	}

	if _, err := h.monitor.MonitorRealTimeData(ctx, voyage.ID); err != nil {
		h.logger.Warn("Could not resume monitoring", "voyageId", voyage.ID, "error", err)
	}

	h.logger.Info("Voyage rebooked",
		"messageID", msg.MessageID,
		"voyageId", voyage.ID,
		"reference", reference,
		"newSegments", len(best.Segments))
	return nil
}
