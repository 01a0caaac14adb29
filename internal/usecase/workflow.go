package usecase

import (
	"pmr-assist-service/internal/domain/entity"
	"pmr-assist-service/pkg/logger"
)

// Agent roles responsible for a workflow step
const (
	RoleOperator  = "operator"
	RolePassenger = "passenger"
	RoleAgent     = "station_agent"
)

// Per-mode step templates. Hand-authored configuration: the same step id
// may carry a different deadline unit per mode (enrollment is days-based
// for planes, assistance_booking is hours-based for trains). Exactly one
// offset unit is populated per step.
var workflowTemplates = map[string][]entity.WorkflowStep{
	entity.ModePlane: {
		{ID: "enrollment", Label: "Enroll with the airline PMR program", Required: true, OffsetDays: 2, AgentRole: RolePassenger},
		{ID: "assistance_booking", Label: "Book airport assistance", Required: true, OffsetHours: 48, AgentRole: RoleOperator},
		{ID: "checkin", Label: "Check in online", Required: true, OffsetHours: 24, AgentRole: RolePassenger},
		{ID: "special_baggage", Label: "Declare mobility equipment", Required: false, OffsetDays: 1, AgentRole: RolePassenger},
		{ID: "boarding", Label: "Present at assistance desk", Required: true, OffsetMinutes: 90, AgentRole: RoleAgent},
	},
	entity.ModeTrain: {
		{ID: "assistance_booking", Label: "Book station assistance", Required: true, OffsetHours: 48, AgentRole: RoleOperator},
		{ID: "checkin", Label: "Confirm travel intent with operator", Required: false, OffsetHours: 24, AgentRole: RolePassenger},
		{ID: "platform_meeting", Label: "Meet agent at the reception point", Required: true, OffsetMinutes: 30, AgentRole: RoleAgent},
	},
	entity.ModeBus: {
		{ID: "assistance_booking", Label: "Request boarding assistance", Required: true, OffsetHours: 36, AgentRole: RoleOperator},
		{ID: "boarding", Label: "Present at the departure bay", Required: true, OffsetMinutes: 15, AgentRole: RoleAgent},
	},
	entity.ModeTaxi: {
		{ID: "booking_confirmation", Label: "Confirm adapted vehicle booking", Required: true, OffsetHours: 2, AgentRole: RolePassenger},
		{ID: "pickup_confirmation", Label: "Confirm pickup point with driver", Required: false, OffsetMinutes: 30, AgentRole: RolePassenger},
	},
}

// WorkflowEngine expands transport modes into ordered step lists with
// deadlines. Templates are process-wide read-only configuration.
type WorkflowEngine struct {
	logger logger.Logger
}

// NewWorkflowEngine creates a new workflow engine.
func NewWorkflowEngine(log logger.Logger) *WorkflowEngine {
	return &WorkflowEngine{logger: log}
}

// StepsForMode returns fresh step instances for a transport mode, or nil
// when the mode has no template.
func (e *WorkflowEngine) StepsForMode(mode string) []entity.WorkflowStep {
	template, ok := workflowTemplates[mode]
	if !ok {
		return nil
	}
	steps := make([]entity.WorkflowStep, len(template))
	copy(steps, template)
	for i := range steps {
		steps[i].Status = entity.StepStatusPending
	}
	return steps
}

// ExpandVoyage produces the full ordered step list for a voyage, each step
// tagged with its segment index. Segments with an unrecognized mode are
// skipped with a warning rather than blocking the itinerary.
func (e *WorkflowEngine) ExpandVoyage(voyage *entity.Voyage) []entity.WorkflowStep {
	var steps []entity.WorkflowStep
	for i, segment := range voyage.Segments {
		segmentSteps := e.StepsForMode(segment.Mode)
		if segmentSteps == nil {
			e.logger.Warn("No workflow template for mode, skipping segment steps",
				"mode", segment.Mode,
				"segmentId", segment.ID,
				"voyageId", voyage.ID)
			continue
		}
		for j := range segmentSteps {
			segmentSteps[j].SegmentIndex = i
		}
		steps = append(steps, segmentSteps...)
	}
	return steps
}
