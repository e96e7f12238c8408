package contact

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sessions keeps one Controller per web visitor so that the form state
// survives between the page and its HTMX fragments.
type Sessions struct {
	mu      sync.Mutex
	entries map[string]*sessionEntry
	ttl     time.Duration
	factory func() *Controller
	now     func() time.Time

	lastPrune time.Time
}

type sessionEntry struct {
	controller *Controller
	lastSeen   time.Time
}

// NewSessions creates a session store. Sessions untouched for ttl are dropped
// unless their form is still sending. The sweep runs at most every ttl/2.
func NewSessions(ttl time.Duration, factory func() *Controller) *Sessions {
	return &Sessions{
		entries: make(map[string]*sessionEntry),
		ttl:     ttl,
		factory: factory,
		now:     time.Now,
	}
}

// Get returns the controller for id, creating a new session when id is empty
// or unknown. The returned id is the one the caller should keep using.
func (s *Sessions) Get(id string) (*Controller, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)

	if e, ok := s.entries[id]; ok && id != "" {
		e.lastSeen = now
		return e.controller, id
	}

	id = uuid.NewString()
	e := &sessionEntry{controller: s.factory(), lastSeen: now}
	s.entries[id] = e
	return e.controller, id
}

// Lookup returns the controller for id without creating a session.
func (s *Sessions) Lookup(id string) (*Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)

	e, ok := s.entries[id]
	if !ok || id == "" {
		return nil, false
	}
	e.lastSeen = now
	return e.controller, true
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Sessions) pruneLocked(now time.Time) {
	if s.ttl <= 0 || now.Sub(s.lastPrune) < s.ttl/2 {
		return
	}
	s.lastPrune = now
	for id, e := range s.entries {
		if now.Sub(e.lastSeen) > s.ttl && e.controller.Status() != StatusSending {
			delete(s.entries, id)
		}
	}
}
