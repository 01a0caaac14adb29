package usecase

import (
	"context"
	"fmt"

	"pmr-assist-service/internal/domain/entity"
	"pmr-assist-service/internal/domain/repository"
	"pmr-assist-service/pkg/logger"
	"pmr-assist-service/pkg/metrics"
	"pmr-assist-service/pkg/utils"
)

// TransferPlanner coordinates two-sided agent handovers at transfer points.
type TransferPlanner struct {
	calc      *TransferCalculator
	agentRepo repository.AgentRepository
	notifRepo repository.NotificationRepository
	metrics   *metrics.Metrics
	logger    logger.Logger
}

// NewTransferPlanner creates a new transfer planner.
func NewTransferPlanner(
	calc *TransferCalculator,
	agentRepo repository.AgentRepository,
	notifRepo repository.NotificationRepository,
	m *metrics.Metrics,
	log logger.Logger,
) *TransferPlanner {
	return &TransferPlanner{
		calc:      calc,
		agentRepo: agentRepo,
		notifRepo: notifRepo,
		metrics:   m,
		logger:    log,
	}
}

// PlanTransfer checks feasibility for two adjacent segments and, when
// feasible, assigns an agent on each side of the handover and notifies both
// agents and the passenger. The hand-off is conceptually two-sided: two
// independent assignment calls are always made, even for one physical
// location. All three notifications are attempted regardless of individual
// failures.
func (p *TransferPlanner) PlanTransfer(ctx context.Context, seg1, seg2 *entity.Segment, location, userID string, profile entity.PassengerProfile) *entity.TransferPlan {
	required := p.calc.RequiredMinutes(seg1.Mode, seg2.Mode, profile.MobilityAid)
	actual := seg2.DepartureUTC.Sub(seg1.ArrivalUTC).Minutes()

	if actual < required {
		p.logger.Warn("Transfer not feasible",
			"location", location,
			"requiredMinutes", required,
			"actualMinutes", actual)
		p.metrics.TransfersPlanned.WithLabelValues("infeasible").Inc()
		return &entity.TransferPlan{
			Feasible:        false,
			Location:        location,
			RequiredMinutes: required,
			ActualMinutes:   actual,
			Suggestion:      "choose an earlier inbound segment or a later outbound segment to widen the connection",
		}
	}

	arrivalAgent := p.agentRepo.AssignByLocation(ctx, seg1.ToLocation)
	departureAgent := p.agentRepo.AssignByLocation(ctx, seg2.FromLocation)

	p.notifyAgents(ctx, seg1, seg2, location, userID, arrivalAgent, departureAgent)
	p.notifyPassenger(ctx, userID, location, arrivalAgent, departureAgent, required, actual)

	p.metrics.TransfersPlanned.WithLabelValues("planned").Inc()
	p.logger.Info("Transfer planned",
		"location", location,
		"arrivalAgent", arrivalAgent.AgentID,
		"departureAgent", departureAgent.AgentID,
		"requiredMinutes", required,
		"actualMinutes", actual)

	return &entity.TransferPlan{
		Feasible:        true,
		Location:        location,
		RequiredMinutes: required,
		ActualMinutes:   actual,
		ArrivalAgent:    arrivalAgent,
		DepartureAgent:  departureAgent,
	}
}

// IdentifyTransferPoints derives the transfer points of a voyage from every
// adjacent segment pair. Pure derivation, independent of booking state; a
// point is critical whenever either side is a flight.
func (p *TransferPlanner) IdentifyTransferPoints(voyage *entity.Voyage) []entity.TransferPoint {
	return deriveTransferPoints(voyage, p.calc)
}

// deriveTransferPoints is the single source of the transfer-point
// derivation, shared by the planner and the monitor's status view.
func deriveTransferPoints(voyage *entity.Voyage, calc *TransferCalculator) []entity.TransferPoint {
	points := make([]entity.TransferPoint, 0)
	for i := 0; i+1 < len(voyage.Segments); i++ {
		from := voyage.Segments[i]
		to := voyage.Segments[i+1]
		required := calc.RequiredMinutes(from.Mode, to.Mode, voyage.Profile.MobilityAid)
		points = append(points, entity.TransferPoint{
			FromSegmentID:   from.ID,
			ToSegmentID:     to.ID,
			SegmentIndex:    i,
			Location:        from.ToLocation,
			ArrivalUTC:      from.ArrivalUTC,
			DepartureUTC:    to.DepartureUTC,
			RequiredMinutes: required,
			ActualMinutes:   to.DepartureUTC.Sub(from.ArrivalUTC).Minutes(),
			Critical:        from.Mode == entity.ModePlane || to.Mode == entity.ModePlane,
		})
	}
	return points
}

// notifyAgents sends the two agent-side notifications in fixed order. One
// failure must not prevent the other from being attempted.
func (p *TransferPlanner) notifyAgents(ctx context.Context, seg1, seg2 *entity.Segment, location, userID string, arrivalAgent, departureAgent *entity.AgentInfo) {
	prepare := &entity.Notification{
		UserID:   arrivalAgent.AgentID,
		Type:     entity.NotificationTransfer,
		Title:    "Prepare transfer",
		Priority: entity.PriorityNormal,
		Message: fmt.Sprintf(utils.MSG_TRANSFER_AGENT_PREPARE,
			location,
			userID,
			seg1.ArrivalUTC.Format("15:04"),
			seg2.Mode,
			seg2.DepartureUTC.Format("15:04")),
		Metadata: map[string]interface{}{"segment_id": seg1.ID, "side": "arrival"},
	}
	if err := p.notifRepo.Create(ctx, prepare); err != nil {
		p.logger.Error("Failed to notify arrival agent", "agentId", arrivalAgent.AgentID, "error", err)
		p.metrics.ErrorsCount.WithLabelValues("notification").Inc()
	} else {
		p.metrics.NotificationsEmitted.Inc()
	}

	arriving := &entity.Notification{
		UserID:   departureAgent.AgentID,
		Type:     entity.NotificationTransfer,
		Title:    "Passenger arriving",
		Priority: entity.PriorityNormal,
		Message: fmt.Sprintf(utils.MSG_TRANSFER_AGENT_ARRIVING,
			userID,
			location,
			seg1.ArrivalUTC.Format("15:04"),
			seg2.Mode,
			seg2.DepartureUTC.Format("15:04")),
		Metadata: map[string]interface{}{"segment_id": seg2.ID, "side": "departure"},
	}
	if err := p.notifRepo.Create(ctx, arriving); err != nil {
		p.logger.Error("Failed to notify departure agent", "agentId", departureAgent.AgentID, "error", err)
		p.metrics.ErrorsCount.WithLabelValues("notification").Inc()
	} else {
		p.metrics.NotificationsEmitted.Inc()
	}
}

func (p *TransferPlanner) notifyPassenger(ctx context.Context, userID, location string, arrivalAgent, departureAgent *entity.AgentInfo, required, actual float64) {
	summary := &entity.Notification{
		UserID:   userID,
		Type:     entity.NotificationTransfer,
		Title:    "Transfer organized",
		Priority: entity.PriorityNormal,
		Message: fmt.Sprintf(utils.MSG_TRANSFER_PASSENGER,
			location,
			agentDisplayName(arrivalAgent),
			agentDisplayName(departureAgent),
			actual,
			required),
		Metadata: map[string]interface{}{
			"arrival_agent":   arrivalAgent.AgentID,
			"departure_agent": departureAgent.AgentID,
		},
	}
	if err := p.notifRepo.Create(ctx, summary); err != nil {
		p.logger.Error("Failed to notify passenger of transfer plan", "userId", userID, "error", err)
		p.metrics.ErrorsCount.WithLabelValues("notification").Inc()
		return
	}
	p.metrics.NotificationsEmitted.Inc()
}
