package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pmr-assist-service/internal/domain/entity"
	"pmr-assist-service/internal/domain/repository"
	"pmr-assist-service/pkg/clock"
	"pmr-assist-service/pkg/logger"
	"pmr-assist-service/pkg/metrics"
	"pmr-assist-service/pkg/utils"
)

// How long before departure the reminder notification is targeted. When the
// departure is already closer than this, the reminder is skipped.
const reminderLeadTime = 24 * time.Hour

// Placeholder agent name used when the dispatch service returned a fallback
// agent with no name.
const placeholderAgentName = "PMR"

// BookingOrchestrator validates deadlines, assigns agents, books assistance
// and schedules reminders for segments requiring operator assistance.
type BookingOrchestrator struct {
	validator   *DeadlineValidator
	agentRepo   repository.AgentRepository
	notifRepo   repository.NotificationRepository
	bookingRepo repository.BookingRecordRepository
	clock       clock.Clock
	metrics     *metrics.Metrics
	logger      logger.Logger
}

// NewBookingOrchestrator creates a new booking orchestrator.
func NewBookingOrchestrator(
	validator *DeadlineValidator,
	agentRepo repository.AgentRepository,
	notifRepo repository.NotificationRepository,
	bookingRepo repository.BookingRecordRepository,
	clk clock.Clock,
	m *metrics.Metrics,
	log logger.Logger,
) *BookingOrchestrator {
	return &BookingOrchestrator{
		validator:   validator,
		agentRepo:   agentRepo,
		notifRepo:   notifRepo,
		bookingRepo: bookingRepo,
		clock:       clk,
		metrics:     m,
		logger:      log,
	}
}

// BookAssistance books assistance for one segment. No side effect occurs
// when the deadline validation fails; collaborator failures after a valid
// deadline degrade gracefully and never abort the booking.
func (o *BookingOrchestrator) BookAssistance(ctx context.Context, voyageID string, segment *entity.Segment, profile entity.PassengerProfile, userID string) *entity.BookingResult {
	check := o.validator.Validate(segment.DepartureUTC, segment.Operator, segment.Mode)
	if !check.Valid {
		o.logger.Info("Booking rejected by deadline validation",
			"segmentId", segment.ID,
			"operator", segment.Operator,
			"hoursRemaining", check.HoursRemaining,
			"requiredHours", check.RequiredHours)
		return &entity.BookingResult{
			Success: false,
			Status:  entity.BookingStatusTooLate,
			Check:   check,
			Message: check.Message,
		}
	}

	reference := newBookingReference()
	agent := o.agentRepo.AssignByLocation(ctx, segment.FromLocation)

	status := entity.BookingStatusConfirmed
	if check.Kind == entity.DeadlineWarning {
		status = entity.BookingStatusWarning
	}

	record := &entity.BookingRecord{
		Reference: reference,
		VoyageID:  voyageID,
		SegmentID: segment.ID,
		UserID:    userID,
		Operator:  segment.Operator,
		Status:    status,
		AgentID:   agent.AgentID,
		PMRNeeds:  profile.Needs,
		BookedAt:  o.clock.Now(),
	}
	if err := o.bookingRepo.Save(ctx, record); err != nil {
		o.logger.Error("Failed to persist booking record", "reference", reference, "error", err)
		o.metrics.ErrorsCount.WithLabelValues("booking_save").Inc()
	}

	o.notifyConfirmation(ctx, userID, segment, agent, reference)
	o.scheduleReminder(ctx, userID, segment, agent, reference)

	o.metrics.BookingsCreated.Inc()
	o.logger.Info("Assistance booked",
		"reference", reference,
		"segmentId", segment.ID,
		"operator", segment.Operator,
		"agentId", agent.AgentID,
		"status", status)

	return &entity.BookingResult{
		Success:   true,
		Reference: reference,
		Status:    status,
		Agent:     agent,
		Check:     check,
		Message:   check.Message,
	}
}

// BookAssistanceForVoyage books assistance for every qualifying segment of
// a voyage. All deadlines are validated up front; if any qualifying segment
// fails, no booking call is made at all.
func (o *BookingOrchestrator) BookAssistanceForVoyage(ctx context.Context, voyage *entity.Voyage) *entity.VoyageBookingResult {
	var failed []string
	for i := range voyage.Segments {
		segment := &voyage.Segments[i]
		if !entity.NeedsAssistance(segment.Mode) {
			continue
		}
		check := o.validator.Validate(segment.DepartureUTC, segment.Operator, segment.Mode)
		if !check.Valid {
			failed = append(failed, fmt.Sprintf("%s (%s)", segment.ID, check.Message))
		}
	}
	if len(failed) > 0 {
		o.logger.Warn("Voyage booking aborted, deadline failures",
			"voyageId", voyage.ID,
			"failedSegments", len(failed))
		return &entity.VoyageBookingResult{
			Success:  false,
			VoyageID: voyage.ID,
			Message:  "deadline check failed for: " + strings.Join(failed, "; "),
		}
	}

	result := &entity.VoyageBookingResult{Success: true, VoyageID: voyage.ID}
	for i := range voyage.Segments {
		segment := &voyage.Segments[i]
		if !entity.NeedsAssistance(segment.Mode) {
			continue
		}
		segmentResult := o.BookAssistance(ctx, voyage.ID, segment, voyage.Profile, voyage.UserID)
		result.Results = append(result.Results, *segmentResult)
		if !segmentResult.Success {
			result.Success = false
		}
	}
	return result
}

func (o *BookingOrchestrator) notifyConfirmation(ctx context.Context, userID string, segment *entity.Segment, agent *entity.AgentInfo, reference string) {
	notification := &entity.Notification{
		UserID:   userID,
		Type:     entity.NotificationBookingConfirmed,
		Title:    "Assistance booked",
		Priority: entity.PriorityNormal,
		Message: fmt.Sprintf(utils.MSG_BOOKING_CONFIRMED,
			reference,
			segment.Operator,
			segment.FromLocation,
			segment.DepartureUTC.Format("2006-01-02 15:04"),
			agentDisplayName(agent),
			agent.Phone),
		AgentInfo: agent,
		Metadata:  map[string]interface{}{"reference": reference, "segment_id": segment.ID},
	}
	if err := o.notifRepo.Create(ctx, notification); err != nil {
		o.logger.Error("Failed to send booking confirmation", "reference", reference, "error", err)
		o.metrics.ErrorsCount.WithLabelValues("notification").Inc()
		return
	}
	o.metrics.NotificationsEmitted.Inc()
}

// scheduleReminder asks the push service to deliver a reminder 24h before
// departure. A departure already closer than 24h makes this a no-op.
func (o *BookingOrchestrator) scheduleReminder(ctx context.Context, userID string, segment *entity.Segment, agent *entity.AgentInfo, reference string) {
	reminderAt := segment.DepartureUTC.Add(-reminderLeadTime)
	if !reminderAt.After(o.clock.Now()) {
		o.logger.Debug("Departure within 24h, skipping reminder", "reference", reference)
		return
	}

	notification := &entity.Notification{
		UserID:   userID,
		Type:     entity.NotificationReminder,
		Title:    "Assisted departure tomorrow",
		Priority: entity.PriorityNormal,
		Message: fmt.Sprintf(utils.MSG_BOOKING_REMINDER,
			reference,
			segment.FromLocation,
			segment.DepartureUTC.Format("2006-01-02 15:04"),
			agentDisplayName(agent)),
		AgentInfo:  agent,
		ScheduleAt: reminderAt,
		Metadata:   map[string]interface{}{"reference": reference, "segment_id": segment.ID},
	}
	if err := o.notifRepo.Create(ctx, notification); err != nil {
		o.logger.Error("Failed to schedule reminder", "reference", reference, "error", err)
		o.metrics.ErrorsCount.WithLabelValues("notification").Inc()
		return
	}
	o.metrics.NotificationsEmitted.Inc()
}

func newBookingReference() string {
	return "PMR-" + strings.ToUpper(uuid.NewString()[:8])
}

func agentDisplayName(agent *entity.AgentInfo) string {
	if agent == nil || agent.Name == "" {
		return placeholderAgentName
	}
	return agent.Name
}
