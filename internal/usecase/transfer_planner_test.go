package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pmr-assist-service/internal/domain/entity"
	"pmr-assist-service/pkg/logger"
)

type plannerEnv struct {
	agents  *fakeAgentRepo
	notifs  *fakeNotifRepo
	planner *TransferPlanner
}

func newPlannerEnv() *plannerEnv {
	env := &plannerEnv{
		agents: &fakeAgentRepo{},
		notifs: &fakeNotifRepo{},
	}
	env.planner = NewTransferPlanner(
		NewTransferCalculator(), env.agents, env.notifs,
		newTestMetrics(), logger.NewNopLogger())
	return env
}

var transferArrival = time.Date(2026, 3, 6, 10, 0, 0, 0, time.UTC)

func connectingSegments(fromMode, toMode string, gap time.Duration) (*entity.Segment, *entity.Segment) {
	seg1 := &entity.Segment{
		ID:           "seg-1",
		Mode:         fromMode,
		FromLocation: "Lyon Part-Dieu",
		ToLocation:   "Paris CDG",
		ArrivalUTC:   transferArrival,
	}
	seg2 := &entity.Segment{
		ID:           "seg-2",
		Mode:         toMode,
		FromLocation: "Paris CDG",
		ToLocation:   "Amsterdam",
		DepartureUTC: transferArrival.Add(gap),
	}
	return seg1, seg2
}

func TestPlanTransferInfeasible(t *testing.T) {
	env := newPlannerEnv()
	seg1, seg2 := connectingSegments(entity.ModePlane, entity.ModeTrain, 12*time.Minute)

	plan := env.planner.PlanTransfer(context.Background(), seg1, seg2, "Paris CDG", "user-1", entity.PassengerProfile{MobilityAid: entity.AidNone})

	assert.False(t, plan.Feasible)
	assert.Equal(t, 60.0, plan.RequiredMinutes)
	assert.Equal(t, 12.0, plan.ActualMinutes)
	assert.NotEmpty(t, plan.Suggestion)
	assert.Nil(t, plan.ArrivalAgent)
	// No agents are engaged for an infeasible transfer.
	assert.Empty(t, env.agents.assignments)
	assert.Empty(t, env.notifs.sent)
}

func TestPlanTransferFeasibleAssignsBothSides(t *testing.T) {
	env := newPlannerEnv()
	seg1, seg2 := connectingSegments(entity.ModeTrain, entity.ModeTrain, 60*time.Minute)

	plan := env.planner.PlanTransfer(context.Background(), seg1, seg2, "Paris CDG", "user-1", entity.PassengerProfile{MobilityAid: entity.AidNone})

	require.True(t, plan.Feasible)
	assert.Equal(t, 20.0, plan.RequiredMinutes)
	assert.Equal(t, 60.0, plan.ActualMinutes)
	require.NotNil(t, plan.ArrivalAgent)
	require.NotNil(t, plan.DepartureAgent)

	// Always two assignment calls, one per side of the handover.
	require.Len(t, env.agents.assignments, 2)
	assert.Equal(t, "Paris CDG", env.agents.assignments[0].Location)
	assert.Equal(t, "Paris CDG", env.agents.assignments[1].Location)

	// Both agents plus the passenger are notified.
	require.Len(t, env.notifs.sent, 3)
	assert.Equal(t, plan.ArrivalAgent.AgentID, env.notifs.sent[0].UserID)
	assert.Equal(t, plan.DepartureAgent.AgentID, env.notifs.sent[1].UserID)
	assert.Equal(t, "user-1", env.notifs.sent[2].UserID)
}

func TestPlanTransferMobilityAidTightensFeasibility(t *testing.T) {
	env := newPlannerEnv()
	// 30 minutes covers train→train for an unaided passenger (20) but not
	// for an electric wheelchair (45).
	seg1, seg2 := connectingSegments(entity.ModeTrain, entity.ModeTrain, 30*time.Minute)

	plan := env.planner.PlanTransfer(context.Background(), seg1, seg2, "Paris CDG", "user-1", entity.PassengerProfile{MobilityAid: entity.AidWheelchairElectric})

	assert.False(t, plan.Feasible)
	assert.Equal(t, 45.0, plan.RequiredMinutes)
}

func TestPlanTransferNotificationFailureDoesNotAbort(t *testing.T) {
	env := newPlannerEnv()
	env.notifs.createErr = errors.New("push service down")
	seg1, seg2 := connectingSegments(entity.ModeTrain, entity.ModeTrain, 60*time.Minute)

	plan := env.planner.PlanTransfer(context.Background(), seg1, seg2, "Paris CDG", "user-1", entity.PassengerProfile{})

	require.True(t, plan.Feasible)
	// All three notifications are still attempted.
	assert.Len(t, env.notifs.sent, 3)
}

func TestIdentifyTransferPoints(t *testing.T) {
	env := newPlannerEnv()
	base := transferArrival
	voyage := &entity.Voyage{
		ID:      "voy-1",
		Profile: entity.PassengerProfile{MobilityAid: entity.AidNone},
		Segments: []entity.Segment{
			{ID: "seg-1", Mode: entity.ModePlane, ToLocation: "Paris CDG", ArrivalUTC: base},
			{ID: "seg-2", Mode: entity.ModeTrain, FromLocation: "Paris CDG", ToLocation: "Lyon Part-Dieu",
				DepartureUTC: base.Add(90 * time.Minute), ArrivalUTC: base.Add(4 * time.Hour)},
			{ID: "seg-3", Mode: entity.ModeBus, FromLocation: "Lyon Part-Dieu",
				DepartureUTC: base.Add(5 * time.Hour)},
		},
	}

	points := env.planner.IdentifyTransferPoints(voyage)

	require.Len(t, points, 2)

	assert.Equal(t, "Paris CDG", points[0].Location)
	assert.Equal(t, "seg-1", points[0].FromSegmentID)
	assert.Equal(t, "seg-2", points[0].ToSegmentID)
	assert.Equal(t, 60.0, points[0].RequiredMinutes)
	assert.Equal(t, 90.0, points[0].ActualMinutes)
	assert.True(t, points[0].Critical)
	assert.True(t, points[0].Feasible())

	assert.Equal(t, "Lyon Part-Dieu", points[1].Location)
	assert.False(t, points[1].Critical)
}

func TestIdentifyTransferPointsSingleSegment(t *testing.T) {
	env := newPlannerEnv()
	voyage := &entity.Voyage{
		ID:       "voy-1",
		Segments: []entity.Segment{{ID: "seg-1", Mode: entity.ModeTrain}},
	}

	assert.Empty(t, env.planner.IdentifyTransferPoints(voyage))
}
