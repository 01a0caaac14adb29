package usecase

import (
	"context"
	"sync"
	"time"

	"pmr-assist-service/internal/domain/entity"
)

// VoyageSession is the live monitoring state for one voyage: the polling
// task handle, the disruption log and bookkeeping timestamps. State is
// partitioned by voyage id, so sessions never share mutable data.
type VoyageSession struct {
	VoyageID  string
	StartedAt time.Time

	cancel context.CancelFunc

	mu          sync.Mutex
	lastChecked time.Time
	events      []entity.DisruptionEvent
	flagged     map[string]bool
}

func newVoyageSession(voyageID string, startedAt time.Time, cancel context.CancelFunc) *VoyageSession {
	return &VoyageSession{
		VoyageID:  voyageID,
		StartedAt: startedAt,
		cancel:    cancel,
		flagged:   make(map[string]bool),
	}
}

// RecordEvent appends a disruption event to the session log.
func (s *VoyageSession) RecordEvent(event entity.DisruptionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

// Snapshot returns a read-only copy of the session state.
func (s *VoyageSession) Snapshot() entity.MonitoringSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := make([]entity.DisruptionEvent, len(s.events))
	copy(events, s.events)
	return entity.MonitoringSession{
		VoyageID:    s.VoyageID,
		StartedAt:   s.StartedAt,
		LastChecked: s.lastChecked,
		Events:      events,
	}
}

func (s *VoyageSession) markChecked(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastChecked = t
}

// flagOnce returns true the first time a transfer point key is flagged.
func (s *VoyageSession) flagOnce(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flagged[key] {
		return false
	}
	s.flagged[key] = true
	return true
}

// SessionRegistry is the keyed registry of active monitoring sessions, the
// only shared mutable structure of the monitor. Injectable so lifecycle and
// testability are explicit rather than relying on module-level state.
type SessionRegistry interface {
	Get(voyageID string) (*VoyageSession, bool)
	// PutIfAbsent inserts the session and returns true, or returns false
	// when a session already exists for the voyage id.
	PutIfAbsent(session *VoyageSession) bool
	// Remove deletes and returns the session for the voyage id.
	Remove(voyageID string) (*VoyageSession, bool)
	Len() int
}

// InMemorySessionRegistry is a mutex-guarded map implementation of
// SessionRegistry.
type InMemorySessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*VoyageSession
}

// NewInMemorySessionRegistry creates an empty registry.
func NewInMemorySessionRegistry() *InMemorySessionRegistry {
	return &InMemorySessionRegistry{sessions: make(map[string]*VoyageSession)}
}

// Get returns the session for a voyage id.
func (r *InMemorySessionRegistry) Get(voyageID string) (*VoyageSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[voyageID]
	return session, ok
}

// PutIfAbsent inserts the session unless one already exists.
func (r *InMemorySessionRegistry) PutIfAbsent(session *VoyageSession) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[session.VoyageID]; exists {
		return false
	}
	r.sessions[session.VoyageID] = session
	return true
}

// Remove deletes and returns the session for a voyage id.
func (r *InMemorySessionRegistry) Remove(voyageID string) (*VoyageSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[voyageID]
	if ok {
		delete(r.sessions, voyageID)
	}
	return session, ok
}

// Len returns the number of active sessions.
func (r *InMemorySessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
