package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"pmr-assist-service/internal/domain/entity"
	"pmr-assist-service/internal/domain/repository"
	"pmr-assist-service/pkg/clock"
	"pmr-assist-service/pkg/logger"
	"pmr-assist-service/pkg/metrics"
	"pmr-assist-service/pkg/utils"
)

// Minutes of slack above the required transfer time below which a still
// feasible connection is classified as at risk.
const riskWindowMinutes = 10

// Delay at or above which passenger notifications escalate to high priority.
const highPriorityDelayMinutes = 30

// ErrVoyageNotFound is returned when a delay event references an unknown
// voyage. Absence is a clean failure, never a panic inside notification code.
var ErrVoyageNotFound = errors.New("voyage not found")

// ErrSegmentNotFound is returned when a delay event references a segment
// that does not belong to the voyage.
var ErrSegmentNotFound = errors.New("segment not found in voyage")

// PerturbationMonitor watches active voyages, reacts to delay events and
// reclassifies downstream connection feasibility.
type PerturbationMonitor struct {
	registry       SessionRegistry
	voyageRepo     repository.VoyageRepository
	agentRepo      repository.AgentRepository
	notifRepo      repository.NotificationRepository
	bookingRepo    repository.BookingRecordRepository
	disruptionRepo repository.DisruptionRepository
	calc           *TransferCalculator
	suggester      *AlternativeSuggester
	validate       *validator.Validate
	clock          clock.Clock
	interval       time.Duration
	metrics        *metrics.Metrics
	logger         logger.Logger
}

// NewPerturbationMonitor creates a new perturbation monitor.
func NewPerturbationMonitor(
	registry SessionRegistry,
	voyageRepo repository.VoyageRepository,
	agentRepo repository.AgentRepository,
	notifRepo repository.NotificationRepository,
	bookingRepo repository.BookingRecordRepository,
	disruptionRepo repository.DisruptionRepository,
	calc *TransferCalculator,
	suggester *AlternativeSuggester,
	clk clock.Clock,
	interval time.Duration,
	m *metrics.Metrics,
	log logger.Logger,
) *PerturbationMonitor {
	return &PerturbationMonitor{
		registry:       registry,
		voyageRepo:     voyageRepo,
		agentRepo:      agentRepo,
		notifRepo:      notifRepo,
		bookingRepo:    bookingRepo,
		disruptionRepo: disruptionRepo,
		calc:           calc,
		suggester:      suggester,
		validate:       validator.New(),
		clock:          clk,
		interval:       interval,
		metrics:        m,
		logger:         log,
	}
}

// MonitorRealTimeData starts periodic monitoring for a voyage. Idempotent:
// a voyage already being monitored is not double-scheduled.
func (m *PerturbationMonitor) MonitorRealTimeData(ctx context.Context, voyageID string) (*entity.MonitoringResult, error) {
	voyage, err := m.voyageRepo.GetByID(ctx, voyageID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up voyage %s: %w", voyageID, err)
	}
	if voyage == nil {
		return nil, ErrVoyageNotFound
	}

	sessionCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	session := newVoyageSession(voyageID, m.clock.Now(), cancel)
	if !m.registry.PutIfAbsent(session) {
		cancel()
		return &entity.MonitoringResult{
			VoyageID:  voyageID,
			Monitored: true,
			Message:   "voyage is already monitored",
		}, nil
	}

	go m.runSession(sessionCtx, session)

	m.logger.Info("Monitoring started", "voyageId", voyageID, "interval", m.interval)
	return &entity.MonitoringResult{
		VoyageID:  voyageID,
		Monitored: true,
		Message:   "monitoring started",
	}, nil
}

// StopMonitoring cancels the voyage's polling task. Immediate and
// idempotent: stopping an unmonitored voyage reports "not monitored"
// rather than failing.
func (m *PerturbationMonitor) StopMonitoring(voyageID string) *entity.MonitoringResult {
	session, ok := m.registry.Remove(voyageID)
	if !ok {
		return &entity.MonitoringResult{
			VoyageID:  voyageID,
			Monitored: false,
			Message:   "voyage is not monitored",
		}
	}
	session.cancel()
	m.logger.Info("Monitoring stopped", "voyageId", voyageID)
	return &entity.MonitoringResult{
		VoyageID:  voyageID,
		Monitored: false,
		Message:   "monitoring stopped",
	}
}

// Session returns a snapshot of the monitoring session for a voyage.
func (m *PerturbationMonitor) Session(voyageID string) (entity.MonitoringSession, bool) {
	session, ok := m.registry.Get(voyageID)
	if !ok {
		return entity.MonitoringSession{}, false
	}
	return session.Snapshot(), true
}

// VoyageStatus reconciles the voyage's booking records, disruption history
// and current transfer feasibility into one read model. Booking status and
// connection feasibility stay independent facts: a confirmed booking is
// never flagged here, only its connections are.
func (m *PerturbationMonitor) VoyageStatus(ctx context.Context, voyageID string) (*entity.VoyageStatusView, error) {
	voyage, err := m.voyageRepo.GetByID(ctx, voyageID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up voyage %s: %w", voyageID, err)
	}
	if voyage == nil {
		return nil, ErrVoyageNotFound
	}

	view := &entity.VoyageStatusView{
		VoyageID:  voyage.ID,
		Status:    voyage.Status,
		Transfers: deriveTransferPoints(voyage, m.calc),
	}

	if session, ok := m.registry.Get(voyageID); ok {
		snapshot := session.Snapshot()
		view.Monitored = true
		view.LastChecked = snapshot.LastChecked
	}

	bookings, err := m.bookingRepo.FindByVoyage(ctx, voyageID)
	if err != nil {
		m.logger.Warn("Failed to load booking records for status view", "voyageId", voyageID, "error", err)
	}
	view.Bookings = bookings

	disruptions, err := m.disruptionRepo.FindByVoyage(ctx, voyageID)
	if err != nil {
		m.logger.Warn("Failed to load disruption log for status view", "voyageId", voyageID, "error", err)
	}
	view.Disruptions = disruptions

	return view, nil
}

// runSession is the per-voyage polling loop. Checks run to completion
// inside the loop before the next tick fires, so one voyage never has
// overlapping checks; different voyages run concurrently.
func (m *PerturbationMonitor) runSession(ctx context.Context, session *VoyageSession) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Debug("Monitoring loop exited", "voyageId", session.VoyageID)
			return
		case <-ticker.C:
			m.checkVoyage(ctx, session)
		}
	}
}

// checkVoyage re-derives every transfer point from current segment times
// and flags newly infeasible or at-risk connections. Completed voyages stop
// their own monitoring.
func (m *PerturbationMonitor) checkVoyage(ctx context.Context, session *VoyageSession) {
	now := m.clock.Now()
	defer session.markChecked(now)

	voyage, err := m.voyageRepo.GetByID(ctx, session.VoyageID)
	if err != nil {
		m.logger.Error("Periodic check failed to load voyage", "voyageId", session.VoyageID, "error", err)
		m.metrics.ErrorsCount.WithLabelValues("monitor_check").Inc()
		return
	}
	if voyage == nil {
		m.logger.Warn("Monitored voyage vanished, stopping", "voyageId", session.VoyageID)
		m.StopMonitoring(session.VoyageID)
		return
	}

	if len(voyage.Segments) > 0 && voyage.Segments[len(voyage.Segments)-1].ArrivalUTC.Before(now) {
		m.logger.Info("Voyage completed, stopping monitoring", "voyageId", session.VoyageID)
		m.markVoyageStatus(ctx, session.VoyageID, entity.VoyageStatusCompleted)
		m.StopMonitoring(session.VoyageID)
		return
	}

	for i := 0; i+1 < len(voyage.Segments); i++ {
		from := &voyage.Segments[i]
		to := &voyage.Segments[i+1]
		if to.DepartureUTC.Before(now) {
			continue
		}
		required := m.calc.RequiredMinutes(from.Mode, to.Mode, voyage.Profile.MobilityAid)
		available := to.DepartureUTC.Sub(from.ArrivalUTC).Minutes()
		if available >= required+riskWindowMinutes {
			continue
		}
		if !session.flagOnce(from.ID + ">" + to.ID) {
			continue
		}
		m.logger.Warn("Periodic check found a tight connection",
			"voyageId", voyage.ID,
			"location", from.ToLocation,
			"requiredMinutes", required,
			"availableMinutes", available)
		m.notifyRisk(ctx, voyage, from, to, required, available)
	}
}

// HandleDelay processes a delay event for one segment, runs synchronously
// to completion and classifies the connection impact for the immediate
// successor. The passenger delay notification is emitted before feasibility
// is recomputed, so the raw delay is always announced.
func (m *PerturbationMonitor) HandleDelay(ctx context.Context, event entity.DelayEvent) (*entity.DelayAssessment, error) {
	if err := m.validate.Struct(event); err != nil {
		return nil, fmt.Errorf("invalid delay event: %w", err)
	}

	start := m.clock.Now()
	defer func() {
		m.metrics.DelayProcessingTime.Observe(time.Since(start).Seconds())
	}()

	voyage, err := m.voyageRepo.GetByID(ctx, event.VoyageID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up voyage %s: %w", event.VoyageID, err)
	}
	if voyage == nil {
		return nil, ErrVoyageNotFound
	}

	delayed, index := voyage.SegmentByID(event.SegmentID)
	if delayed == nil {
		return nil, ErrSegmentNotFound
	}

	m.notifyDelay(ctx, voyage, delayed, event)

	newDeparture := delayed.DepartureUTC
	if err := m.voyageRepo.UpdateSegmentTimes(ctx, voyage.ID, delayed.ID, newDeparture, event.NewArrivalUTC); err != nil {
		m.logger.Error("Failed to persist delayed segment times",
			"voyageId", voyage.ID,
			"segmentId", delayed.ID,
			"error", err)
		m.metrics.ErrorsCount.WithLabelValues("segment_update").Inc()
	}

	assessment := &entity.DelayAssessment{
		VoyageID:  voyage.ID,
		SegmentID: delayed.ID,
	}

	// Last segment: no downstream pair exists.
	if index == len(voyage.Segments)-1 {
		assessment.Impact = entity.ImpactNone
		assessment.Message = "delay on the final segment, no connection affected"
		m.recordDisruption(ctx, voyage.ID, delayed.ID, event.DelayMinutes, assessment.Impact)
		m.metrics.DelayEvents.WithLabelValues(assessment.Impact).Inc()
		return assessment, nil
	}

	next := &voyage.Segments[index+1]
	required := m.calc.RequiredMinutes(delayed.Mode, next.Mode, voyage.Profile.MobilityAid)
	available := next.DepartureUTC.Sub(event.NewArrivalUTC).Minutes()
	assessment.RequiredMinutes = required
	assessment.AvailableMinutes = available

	switch {
	case available < required:
		assessment.Impact = entity.ImpactConnectionLost
		assessment.ActionRequired = true
		assessment.Alternatives = m.suggester.SuggestAlternatives(ctx, voyage.ID, next.ID, event.NewArrivalUTC)
		assessment.Message = fmt.Sprintf("connection at %s lost: %.0f minutes available, %.0f required",
			delayed.ToLocation, available, required)
		m.markVoyageStatus(ctx, voyage.ID, entity.VoyageStatusDisrupted)
		m.notifyLost(ctx, voyage, delayed, required, available)

	case available < required+riskWindowMinutes:
		assessment.Impact = entity.ImpactConnectionRisk
		assessment.Message = fmt.Sprintf("connection at %s at risk: %.0f minutes available, %.0f required",
			delayed.ToLocation, available, required)
		m.reassignAgents(ctx, voyage, delayed, next, required, available)

	default:
		assessment.Impact = entity.ImpactAbsorbed
		assessment.Message = fmt.Sprintf("delay absorbed: %.0f minutes available, %.0f required",
			available, required)
		m.notifyAbsorbed(ctx, voyage, delayed, required, available)
	}

	m.recordDisruption(ctx, voyage.ID, delayed.ID, event.DelayMinutes, assessment.Impact)
	m.metrics.DelayEvents.WithLabelValues(assessment.Impact).Inc()
	m.logger.Info("Delay assessed",
		"voyageId", voyage.ID,
		"segmentId", delayed.ID,
		"delayMinutes", event.DelayMinutes,
		"impact", assessment.Impact)
	return assessment, nil
}

// notifyDelay announces the raw delay to the passenger, escalating to high
// priority at 30 minutes or more.
func (m *PerturbationMonitor) notifyDelay(ctx context.Context, voyage *entity.Voyage, delayed *entity.Segment, event entity.DelayEvent) {
	priority := entity.PriorityNormal
	if event.DelayMinutes >= highPriorityDelayMinutes {
		priority = entity.PriorityHigh
	}
	notification := &entity.Notification{
		UserID:   voyage.UserID,
		Type:     entity.NotificationDelay,
		Title:    "Delay on your journey",
		Priority: priority,
		Message: fmt.Sprintf(utils.MSG_DELAY,
			delayed.ID,
			event.DelayMinutes,
			event.NewArrivalUTC.Format("15:04")),
		Metadata: map[string]interface{}{"segment_id": delayed.ID, "delay_minutes": event.DelayMinutes},
	}
	if err := m.notifRepo.Create(ctx, notification); err != nil {
		m.logger.Error("Failed to send delay notification", "voyageId", voyage.ID, "error", err)
		m.metrics.ErrorsCount.WithLabelValues("notification").Inc()
		return
	}
	m.metrics.NotificationsEmitted.Inc()
}

func (m *PerturbationMonitor) notifyLost(ctx context.Context, voyage *entity.Voyage, delayed *entity.Segment, required, available float64) {
	notification := &entity.Notification{
		UserID:   voyage.UserID,
		Type:     entity.NotificationConnectionLost,
		Title:    "Connection lost",
		Priority: entity.PriorityHigh,
		Message: fmt.Sprintf(utils.MSG_CONNECTION_LOST,
			delayed.ToLocation, available, required),
		Metadata: map[string]interface{}{"segment_id": delayed.ID, "action_required": true},
	}
	if err := m.notifRepo.Create(ctx, notification); err != nil {
		m.logger.Error("Failed to send connection-lost notification", "voyageId", voyage.ID, "error", err)
		m.metrics.ErrorsCount.WithLabelValues("notification").Inc()
		return
	}
	m.metrics.NotificationsEmitted.Inc()
}

func (m *PerturbationMonitor) notifyAbsorbed(ctx context.Context, voyage *entity.Voyage, delayed *entity.Segment, required, available float64) {
	notification := &entity.Notification{
		UserID:   voyage.UserID,
		Type:     entity.NotificationInfo,
		Title:    "Connection unaffected",
		Priority: entity.PriorityLow,
		Message: fmt.Sprintf(utils.MSG_DELAY_ABSORBED,
			delayed.ToLocation, available, required),
	}
	if err := m.notifRepo.Create(ctx, notification); err != nil {
		m.logger.Error("Failed to send delay-absorbed notification", "voyageId", voyage.ID, "error", err)
		m.metrics.ErrorsCount.WithLabelValues("notification").Inc()
		return
	}
	m.metrics.NotificationsEmitted.Inc()
}

// reassignAgents re-requests both handover agents with elevated priority
// and alerts both sides plus the passenger of a tight connection.
func (m *PerturbationMonitor) reassignAgents(ctx context.Context, voyage *entity.Voyage, delayed, next *entity.Segment, required, available float64) {
	arrivalAgent := m.agentRepo.AssignByLocationWithPriority(ctx, delayed.ToLocation, entity.PriorityHigh)
	departureAgent := m.agentRepo.AssignByLocationWithPriority(ctx, next.FromLocation, entity.PriorityHigh)

	for _, target := range []struct {
		userID string
		title  string
	}{
		{arrivalAgent.AgentID, "Expedite transfer, tight connection"},
		{departureAgent.AgentID, "Passenger on a tight connection"},
	} {
		notification := &entity.Notification{
			UserID:   target.userID,
			Type:     entity.NotificationConnectionRisk,
			Title:    target.title,
			Priority: entity.PriorityHigh,
			Message: fmt.Sprintf(utils.MSG_CONNECTION_AT_RISK,
				delayed.ToLocation, available, required),
			Metadata: map[string]interface{}{"segment_id": delayed.ID},
		}
		if err := m.notifRepo.Create(ctx, notification); err != nil {
			m.logger.Error("Failed to alert agent of risk", "agentId", target.userID, "error", err)
			m.metrics.ErrorsCount.WithLabelValues("notification").Inc()
			continue
		}
		m.metrics.NotificationsEmitted.Inc()
	}

	m.notifyRisk(ctx, voyage, delayed, next, required, available)
}

func (m *PerturbationMonitor) notifyRisk(ctx context.Context, voyage *entity.Voyage, delayed, next *entity.Segment, required, available float64) {
	notification := &entity.Notification{
		UserID:   voyage.UserID,
		Type:     entity.NotificationConnectionRisk,
		Title:    "Tight connection",
		Priority: entity.PriorityHigh,
		Message: fmt.Sprintf(utils.MSG_CONNECTION_AT_RISK,
			delayed.ToLocation, available, required),
		Metadata: map[string]interface{}{"segment_id": delayed.ID, "next_segment_id": next.ID},
	}
	if err := m.notifRepo.Create(ctx, notification); err != nil {
		m.logger.Error("Failed to send risk notification", "voyageId", voyage.ID, "error", err)
		m.metrics.ErrorsCount.WithLabelValues("notification").Inc()
		return
	}
	m.metrics.NotificationsEmitted.Inc()
}

// recordDisruption appends the event to the session log (when the voyage is
// monitored) and persists it to the disruption log.
func (m *PerturbationMonitor) recordDisruption(ctx context.Context, voyageID, segmentID string, delayMinutes int, impact string) {
	event := entity.DisruptionEvent{
		ID:           uuid.NewString(),
		VoyageID:     voyageID,
		SegmentID:    segmentID,
		DelayMinutes: delayMinutes,
		Impact:       impact,
		OccurredAt:   m.clock.Now(),
	}
	if session, ok := m.registry.Get(voyageID); ok {
		session.RecordEvent(event)
	}
	if err := m.disruptionRepo.Save(ctx, &event); err != nil {
		m.logger.Error("Failed to persist disruption event", "voyageId", voyageID, "error", err)
		m.metrics.ErrorsCount.WithLabelValues("disruption_save").Inc()
	}
}

// markVoyageStatus persists a voyage status transition. Failures are logged
// only: the status is a derived convenience, not what feasibility logic
// depends on.
func (m *PerturbationMonitor) markVoyageStatus(ctx context.Context, voyageID, status string) {
	if err := m.voyageRepo.UpdateStatus(ctx, voyageID, status); err != nil {
		m.logger.Error("Failed to update voyage status",
			"voyageId", voyageID,
			"status", status,
			"error", err)
		m.metrics.ErrorsCount.WithLabelValues("voyage_status").Inc()
	}
}
