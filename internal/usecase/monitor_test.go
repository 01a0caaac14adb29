package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pmr-assist-service/internal/domain/entity"
	"pmr-assist-service/pkg/clock"
	"pmr-assist-service/pkg/logger"
)

var monitorNow = time.Date(2026, 3, 6, 8, 0, 0, 0, time.UTC)

type monitorEnv struct {
	clock       *clock.MockClock
	registry    *InMemorySessionRegistry
	voyages     *fakeVoyageRepo
	agents      *fakeAgentRepo
	notifs      *fakeNotifRepo
	bookings    *fakeBookingRepo
	disruptions *fakeDisruptionRepo
	search      *fakeSearchRepo
	monitor     *PerturbationMonitor
}

func newMonitorEnv(voyages ...*entity.Voyage) *monitorEnv {
	env := &monitorEnv{
		clock:       clock.NewMockClock(monitorNow),
		registry:    NewInMemorySessionRegistry(),
		voyages:     newFakeVoyageRepo(voyages...),
		agents:      &fakeAgentRepo{},
		notifs:      &fakeNotifRepo{},
		bookings:    &fakeBookingRepo{},
		disruptions: &fakeDisruptionRepo{},
		search:      &fakeSearchRepo{result: &entity.RouteSearchResult{Success: true}},
	}
	suggester := NewAlternativeSuggester(env.voyages, env.search, logger.NewNopLogger())
	env.monitor = NewPerturbationMonitor(
		env.registry, env.voyages, env.agents, env.notifs, env.bookings,
		env.disruptions, NewTransferCalculator(), suggester, env.clock, time.Hour,
		newTestMetrics(), logger.NewNopLogger())
	return env
}

// twoTrainVoyage has a 40-minute connection against a 20-minute requirement.
func twoTrainVoyage() *entity.Voyage {
	return &entity.Voyage{
		ID:      "voy-1",
		UserID:  "user-1",
		Profile: entity.PassengerProfile{MobilityAid: entity.AidNone},
		Segments: []entity.Segment{
			{ID: "seg-1", Mode: entity.ModeTrain, Operator: "SNCF",
				FromLocation: "Paris Gare de Lyon", ToLocation: "Lyon Part-Dieu",
				DepartureUTC: monitorNow.Add(2 * time.Hour), ArrivalUTC: monitorNow.Add(4 * time.Hour)},
			{ID: "seg-2", Mode: entity.ModeTrain, Operator: "SNCF",
				FromLocation: "Lyon Part-Dieu", ToLocation: "Marseille St-Charles", Price: 45,
				DepartureUTC: monitorNow.Add(4*time.Hour + 40*time.Minute), ArrivalUTC: monitorNow.Add(8 * time.Hour)},
		},
	}
}

func delayEvent(available time.Duration, delayMinutes int) entity.DelayEvent {
	connection := monitorNow.Add(4*time.Hour + 40*time.Minute)
	return entity.DelayEvent{
		VoyageID:      "voy-1",
		SegmentID:     "seg-1",
		NewArrivalUTC: connection.Add(-available),
		DelayMinutes:  delayMinutes,
		Source:        "sncf@example.com",
	}
}

func TestHandleDelayAbsorbed(t *testing.T) {
	env := newMonitorEnv(twoTrainVoyage())

	// Exactly required+10 minutes remain: still outside the risk window.
	assessment, err := env.monitor.HandleDelay(context.Background(), delayEvent(30*time.Minute, 15))

	require.NoError(t, err)
	assert.Equal(t, entity.ImpactAbsorbed, assessment.Impact)
	assert.Equal(t, 20.0, assessment.RequiredMinutes)
	assert.Equal(t, 30.0, assessment.AvailableMinutes)
	assert.False(t, assessment.ActionRequired)

	// Delay announcement plus the all-clear.
	assert.Len(t, env.notifs.ofType(entity.NotificationDelay), 1)
	assert.Len(t, env.notifs.ofType(entity.NotificationInfo), 1)
	assert.Equal(t, []string{"voy-1/seg-1"}, env.voyages.segmentUpdates)
	require.Len(t, env.disruptions.saved, 1)
	assert.Equal(t, entity.ImpactAbsorbed, env.disruptions.saved[0].Impact)
}

func TestHandleDelayConnectionAtRisk(t *testing.T) {
	env := newMonitorEnv(twoTrainVoyage())

	assessment, err := env.monitor.HandleDelay(context.Background(), delayEvent(25*time.Minute, 35))

	require.NoError(t, err)
	assert.Equal(t, entity.ImpactConnectionRisk, assessment.Impact)
	assert.False(t, assessment.ActionRequired)

	// 35 minutes of delay escalates the passenger announcement.
	delays := env.notifs.ofType(entity.NotificationDelay)
	require.Len(t, delays, 1)
	assert.Equal(t, entity.PriorityHigh, delays[0].Priority)

	// Both handover agents are re-requested with elevated priority.
	require.Len(t, env.agents.assignments, 2)
	assert.Equal(t, entity.PriorityHigh, env.agents.assignments[0].Priority)
	assert.Equal(t, "Lyon Part-Dieu", env.agents.assignments[0].Location)
	assert.Len(t, env.notifs.ofType(entity.NotificationConnectionRisk), 3)
}

func TestHandleDelayConnectionLost(t *testing.T) {
	env := newMonitorEnv(twoTrainVoyage())
	env.search.result = &entity.RouteSearchResult{
		Success: true,
		Routes: []entity.SearchedRoute{
			{TotalPrice: 80, TotalDurationMinutes: 200, AccessibilityScore: 0.9},
		},
	}

	assessment, err := env.monitor.HandleDelay(context.Background(), delayEvent(19*time.Minute, 60))

	require.NoError(t, err)
	assert.Equal(t, entity.ImpactConnectionLost, assessment.Impact)
	assert.True(t, assessment.ActionRequired)
	require.Len(t, assessment.Alternatives, 1)
	assert.Len(t, env.notifs.ofType(entity.NotificationConnectionLost), 1)
	assert.Equal(t, "Lyon Part-Dieu", env.search.lastOrigin)
	assert.Equal(t, "Marseille St-Charles", env.search.lastDestination)
	assert.Contains(t, env.voyages.statusUpdates, "voy-1="+entity.VoyageStatusDisrupted)
}

func TestHandleDelayOnFinalSegment(t *testing.T) {
	env := newMonitorEnv(twoTrainVoyage())
	event := entity.DelayEvent{
		VoyageID:      "voy-1",
		SegmentID:     "seg-2",
		NewArrivalUTC: monitorNow.Add(9 * time.Hour),
		DelayMinutes:  60,
	}

	assessment, err := env.monitor.HandleDelay(context.Background(), event)

	require.NoError(t, err)
	assert.Equal(t, entity.ImpactNone, assessment.Impact)
	// The raw delay is still announced.
	assert.Len(t, env.notifs.ofType(entity.NotificationDelay), 1)
	assert.Empty(t, env.agents.assignments)
}

func TestHandleDelayUnknownVoyage(t *testing.T) {
	env := newMonitorEnv()

	_, err := env.monitor.HandleDelay(context.Background(), delayEvent(30*time.Minute, 15))

	assert.ErrorIs(t, err, ErrVoyageNotFound)
	assert.Empty(t, env.notifs.sent)
}

func TestHandleDelayUnknownSegment(t *testing.T) {
	env := newMonitorEnv(twoTrainVoyage())
	event := delayEvent(30*time.Minute, 15)
	event.SegmentID = "seg-99"

	_, err := env.monitor.HandleDelay(context.Background(), event)

	assert.ErrorIs(t, err, ErrSegmentNotFound)
}

func TestHandleDelayRejectsInvalidEvent(t *testing.T) {
	env := newMonitorEnv(twoTrainVoyage())
	event := delayEvent(30*time.Minute, 15)
	event.VoyageID = ""

	_, err := env.monitor.HandleDelay(context.Background(), event)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid delay event")
}

func TestMonitorRealTimeDataIsIdempotent(t *testing.T) {
	env := newMonitorEnv(twoTrainVoyage())

	first, err := env.monitor.MonitorRealTimeData(context.Background(), "voy-1")
	require.NoError(t, err)
	assert.True(t, first.Monitored)
	assert.Equal(t, "monitoring started", first.Message)

	second, err := env.monitor.MonitorRealTimeData(context.Background(), "voy-1")
	require.NoError(t, err)
	assert.Equal(t, "voyage is already monitored", second.Message)
	assert.Equal(t, 1, env.registry.Len())

	env.monitor.StopMonitoring("voy-1")
}

func TestMonitorRealTimeDataUnknownVoyage(t *testing.T) {
	env := newMonitorEnv()

	_, err := env.monitor.MonitorRealTimeData(context.Background(), "voy-404")

	assert.ErrorIs(t, err, ErrVoyageNotFound)
	assert.Equal(t, 0, env.registry.Len())
}

func TestStopMonitoring(t *testing.T) {
	env := newMonitorEnv(twoTrainVoyage())

	_, err := env.monitor.MonitorRealTimeData(context.Background(), "voy-1")
	require.NoError(t, err)

	stopped := env.monitor.StopMonitoring("voy-1")
	assert.False(t, stopped.Monitored)
	assert.Equal(t, "monitoring stopped", stopped.Message)
	assert.Equal(t, 0, env.registry.Len())

	again := env.monitor.StopMonitoring("voy-1")
	assert.Equal(t, "voyage is not monitored", again.Message)
}

func TestSessionRecordsDisruptions(t *testing.T) {
	env := newMonitorEnv(twoTrainVoyage())

	_, err := env.monitor.MonitorRealTimeData(context.Background(), "voy-1")
	require.NoError(t, err)
	defer env.monitor.StopMonitoring("voy-1")

	_, err = env.monitor.HandleDelay(context.Background(), delayEvent(30*time.Minute, 15))
	require.NoError(t, err)

	session, ok := env.monitor.Session("voy-1")
	require.True(t, ok)
	require.Len(t, session.Events, 1)
	assert.Equal(t, entity.ImpactAbsorbed, session.Events[0].Impact)
}

func TestPeriodicCheckFlagsTightConnectionOnce(t *testing.T) {
	voyage := twoTrainVoyage()
	// Shrink the connection to 25 minutes, inside the risk window.
	voyage.Segments[1].DepartureUTC = voyage.Segments[0].ArrivalUTC.Add(25 * time.Minute)
	env := newMonitorEnv(voyage)

	_, err := env.monitor.MonitorRealTimeData(context.Background(), "voy-1")
	require.NoError(t, err)
	defer env.monitor.StopMonitoring("voy-1")

	session, ok := env.registry.Get("voy-1")
	require.True(t, ok)

	env.monitor.checkVoyage(context.Background(), session)
	env.monitor.checkVoyage(context.Background(), session)

	// The same tight pair is reported a single time.
	assert.Len(t, env.notifs.ofType(entity.NotificationConnectionRisk), 1)
}

func TestPeriodicCheckStopsCompletedVoyage(t *testing.T) {
	env := newMonitorEnv(twoTrainVoyage())

	_, err := env.monitor.MonitorRealTimeData(context.Background(), "voy-1")
	require.NoError(t, err)

	session, ok := env.registry.Get("voy-1")
	require.True(t, ok)

	env.clock.Set(monitorNow.Add(9 * time.Hour))
	env.monitor.checkVoyage(context.Background(), session)

	assert.Equal(t, 0, env.registry.Len())
	assert.Contains(t, env.voyages.statusUpdates, "voy-1="+entity.VoyageStatusCompleted)
}

func TestVoyageStatusReadModel(t *testing.T) {
	voyage := twoTrainVoyage()
	voyage.Status = entity.VoyageStatusActive
	env := newMonitorEnv(voyage)

	_, err := env.monitor.MonitorRealTimeData(context.Background(), "voy-1")
	require.NoError(t, err)

	env.bookings.Save(context.Background(), &entity.BookingRecord{
		Reference: "PMR-AB12CD34", VoyageID: "voy-1", SegmentID: "seg-1",
		Status: entity.BookingStatusConfirmed,
	})
	env.disruptions.Save(context.Background(), &entity.DisruptionEvent{
		VoyageID: "voy-1", SegmentID: "seg-1",
		DelayMinutes: 15, Impact: entity.ImpactAbsorbed,
	})

	view, err := env.monitor.VoyageStatus(context.Background(), "voy-1")

	require.NoError(t, err)
	assert.Equal(t, entity.VoyageStatusActive, view.Status)
	assert.True(t, view.Monitored)
	require.Len(t, view.Bookings, 1)
	assert.Equal(t, "PMR-AB12CD34", view.Bookings[0].Reference)
	require.Len(t, view.Disruptions, 1)
	assert.Equal(t, entity.ImpactAbsorbed, view.Disruptions[0].Impact)
	// 40-minute train/train connection against a 20-minute requirement
	require.Len(t, view.Transfers, 1)
	assert.Equal(t, float64(20), view.Transfers[0].RequiredMinutes)
	assert.Equal(t, float64(40), view.Transfers[0].ActualMinutes)
	assert.True(t, view.Transfers[0].Feasible())
}

func TestVoyageStatusUnknownVoyage(t *testing.T) {
	env := newMonitorEnv()

	_, err := env.monitor.VoyageStatus(context.Background(), "voy-missing")

	assert.ErrorIs(t, err, ErrVoyageNotFound)
}
