package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"pmr-assist-service/internal/domain/entity"
	"pmr-assist-service/pkg/metrics"
)

func newTestMetrics() *metrics.Metrics {
	return metrics.NewMetrics(prometheus.NewRegistry(), "test")
}

// fakeVoyageRepo is an in-memory voyage store for tests.
type fakeVoyageRepo struct {
	mu             sync.Mutex
	voyages        map[string]*entity.Voyage
	getErr         error
	segmentUpdates []string
	statusUpdates  []string
}

func newFakeVoyageRepo(voyages ...*entity.Voyage) *fakeVoyageRepo {
	repo := &fakeVoyageRepo{voyages: make(map[string]*entity.Voyage)}
	for _, v := range voyages {
		repo.voyages[v.ID] = v
	}
	return repo
}

func (r *fakeVoyageRepo) Save(ctx context.Context, voyage *entity.Voyage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.voyages[voyage.ID] = voyage
	return nil
}

func (r *fakeVoyageRepo) GetByID(ctx context.Context, id string) (*entity.Voyage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.voyages[id], nil
}

func (r *fakeVoyageRepo) UpdateSegmentTimes(ctx context.Context, voyageID, segmentID string, departure, arrival time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.segmentUpdates = append(r.segmentUpdates, voyageID+"/"+segmentID)
	if voyage, ok := r.voyages[voyageID]; ok {
		if segment, _ := voyage.SegmentByID(segmentID); segment != nil {
			segment.DepartureUTC = departure
			segment.ArrivalUTC = arrival
		}
	}
	return nil
}

func (r *fakeVoyageRepo) ReplaceSegmentsFrom(ctx context.Context, voyageID string, fromIndex int, segments []entity.Segment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	voyage, ok := r.voyages[voyageID]
	if !ok {
		return nil
	}
	voyage.Segments = append(voyage.Segments[:fromIndex], segments...)
	return nil
}

func (r *fakeVoyageRepo) UpdateStatus(ctx context.Context, voyageID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statusUpdates = append(r.statusUpdates, voyageID+"="+status)
	return nil
}

type agentAssignment struct {
	Location string
	Priority string
}

// fakeAgentRepo records assignment calls and returns deterministic agents.
type fakeAgentRepo struct {
	mu          sync.Mutex
	assignments []agentAssignment
}

func (r *fakeAgentRepo) AssignByLocation(ctx context.Context, location string) *entity.AgentInfo {
	return r.assign(location, "")
}

func (r *fakeAgentRepo) AssignByLocationWithPriority(ctx context.Context, location, priority string) *entity.AgentInfo {
	return r.assign(location, priority)
}

func (r *fakeAgentRepo) assign(location, priority string) *entity.AgentInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assignments = append(r.assignments, agentAssignment{Location: location, Priority: priority})
	return &entity.AgentInfo{
		AgentID:  "agent-" + location,
		Name:     "Agent " + location,
		Phone:    "+33100000000",
		Location: location,
	}
}

// fakeNotifRepo records every notification handed to it.
type fakeNotifRepo struct {
	mu        sync.Mutex
	createErr error
	sent      []*entity.Notification
}

func (r *fakeNotifRepo) Create(ctx context.Context, notification *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, notification)
	return r.createErr
}

func (r *fakeNotifRepo) ofType(notificationType string) []*entity.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Notification
	for _, n := range r.sent {
		if n.Type == notificationType {
			out = append(out, n)
		}
	}
	return out
}

// fakeBookingRepo stores booking records in memory.
type fakeBookingRepo struct {
	mu      sync.Mutex
	saveErr error
	saved   []*entity.BookingRecord
}

func (r *fakeBookingRepo) Save(ctx context.Context, record *entity.BookingRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, record)
	return r.saveErr
}

func (r *fakeBookingRepo) FindByReference(ctx context.Context, reference string) (*entity.BookingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.saved {
		if record.Reference == reference {
			return record, nil
		}
	}
	return nil, nil
}

func (r *fakeBookingRepo) FindByVoyage(ctx context.Context, voyageID string) ([]*entity.BookingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.BookingRecord
	for _, record := range r.saved {
		if record.VoyageID == voyageID {
			out = append(out, record)
		}
	}
	return out, nil
}

// fakeDisruptionRepo stores disruption events in memory.
type fakeDisruptionRepo struct {
	mu    sync.Mutex
	saved []*entity.DisruptionEvent
}

func (r *fakeDisruptionRepo) Save(ctx context.Context, event *entity.DisruptionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, event)
	return nil
}

func (r *fakeDisruptionRepo) FindByVoyage(ctx context.Context, voyageID string) ([]*entity.DisruptionEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.DisruptionEvent
	for _, event := range r.saved {
		if event.VoyageID == voyageID {
			out = append(out, event)
		}
	}
	return out, nil
}

// fakeSearchRepo returns a canned route-search result.
type fakeSearchRepo struct {
	result *entity.RouteSearchResult
	err    error

	lastOrigin      string
	lastDestination string
}

func (r *fakeSearchRepo) SearchRoute(ctx context.Context, origin, destination string, date time.Time, pmrNeeds []string) (*entity.RouteSearchResult, error) {
	r.lastOrigin = origin
	r.lastDestination = destination
	return r.result, r.err
}

// fakeRuleRepo returns canned reference-data overrides.
type fakeRuleRepo struct {
	leadTimes map[string]entity.LeadTimeRule
	transfers map[entity.ModePair]int
	err       error
}

func (r *fakeRuleRepo) LoadLeadTimeOverrides(ctx context.Context) (map[string]entity.LeadTimeRule, error) {
	return r.leadTimes, r.err
}

func (r *fakeRuleRepo) LoadTransferOverrides(ctx context.Context) (map[entity.ModePair]int, error) {
	return r.transfers, r.err
}
