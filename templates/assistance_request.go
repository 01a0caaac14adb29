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

// AssistanceRequestHandler handles inbound assistance-request messages.
// It books assistance for every qualifying segment of the referenced
// voyage, then plans agent coordination at each transfer point and puts
// the voyage under real-time monitoring.
type AssistanceRequestHandler struct {
	voyageRepo   repository.VoyageRepository
	orchestrator *usecase.BookingOrchestrator
	planner      *usecase.TransferPlanner
	monitor      *usecase.PerturbationMonitor
	workflow     *usecase.WorkflowEngine
	parser       *utils.NoticeParser
	clock        clock.Clock
	logger       logger.Logger
}

// NewAssistanceRequestHandler creates a new assistance request handler
func NewAssistanceRequestHandler(
	voyageRepo repository.VoyageRepository,
	orchestrator *usecase.BookingOrchestrator,
	planner *usecase.TransferPlanner,
	monitor *usecase.PerturbationMonitor,
	workflow *usecase.WorkflowEngine,
	parser *utils.NoticeParser,
	clk clock.Clock,
	logger logger.Logger,
) *AssistanceRequestHandler {
	return &AssistanceRequestHandler{
		voyageRepo:   voyageRepo,
		orchestrator: orchestrator,
		planner:      planner,
		monitor:      monitor,
		workflow:     workflow,
		parser:       parser,
		clock:        clk,
		logger:       logger,
	}
}

// CanHandle determines if this handler can process the given message subject
func (h *AssistanceRequestHandler) CanHandle(subject string) bool {
	return strings.Contains(strings.ToUpper(subject), "ASSISTANCE REQUEST")
}

// Process books the voyage, coordinates its transfers and starts monitoring
func (h *AssistanceRequestHandler) Process(ctx context.Context, msg *entity.OperatorMessage) error {
	voyageID, err := h.parser.ParseVoyageRef(msg.Body)
	if err != nil {
		h.logger.Error("Failed to parse assistance request", "messageID", msg.MessageID, "error", err)
		return err
	}

	voyage, err := h.voyageRepo.GetByID(ctx, voyageID)
	if err != nil {
		return fmt.Errorf("failed to load voyage %s: %w", voyageID, err)
	}
	if voyage == nil {
		h.logger.Error("Assistance request for unknown voyage", "messageID", msg.MessageID, "voyageId", voyageID)
		return fmt.Errorf("voyage %s not found", voyageID)
	}

	result := h.orchestrator.BookAssistanceForVoyage(ctx, voyage)
	if !result.Success {
		h.logger.Warn("Voyage booking rejected",
			"voyageId", voyageID,
			"message", result.Message)
		return nil
	}

	steps := h.workflow.ExpandVoyage(voyage)
	now := h.clock.Now()
	for _, step := range steps {
		if step.Required && step.IsOverdue(voyage.Segments[step.SegmentIndex].DepartureUTC, now) {
			h.logger.Warn("Preparation step already overdue",
				"voyageId", voyageID,
				"step", step.ID,
				"segmentIndex", step.SegmentIndex)
		}
	}

	for _, tp := range h.planner.IdentifyTransferPoints(voyage) {
		seg1, _ := voyage.SegmentByID(tp.FromSegmentID)
		seg2, _ := voyage.SegmentByID(tp.ToSegmentID)
		if seg1 == nil || seg2 == nil {
			continue
		}
		plan := h.planner.PlanTransfer(ctx, seg1, seg2, tp.Location, voyage.UserID, voyage.Profile)
		if !plan.Feasible {
			h.logger.Warn("Transfer too tight",
				"voyageId", voyageID,
				"location", tp.Location,
				"requiredMinutes", plan.RequiredMinutes,
				"actualMinutes", plan.ActualMinutes)
		}
	}

	if _, err := h.monitor.MonitorRealTimeData(ctx, voyageID); err != nil {
		h.logger.Warn("Could not start monitoring", "voyageId", voyageID, "error", err)
	}

	h.logger.Info("Assistance request handled",
		"messageID", msg.MessageID,
		"voyageId", voyageID,
		"bookings", len(result.Results),
		"steps", len(steps))
	return nil
}
