// Package session holds the last rendered chart.
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/newthinker/sigchart/internal/chart"
	"github.com/newthinker/sigchart/internal/core"
)

// Ticket orders chart renders. Tickets are handed out before work starts,
// so a slow render cannot overwrite a newer one.
type Ticket uint64

// Store is the in-memory chart state shared by all requests.
type Store struct {
	mu        sync.RWMutex
	next      Ticket
	committed Ticket
	current   *chart.Payload
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Begin reserves a ticket for a render that is about to start.
func (s *Store) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	return s.next
}

// Commit publishes p if no newer ticket has been committed. It assigns the
// payload an ID and reports whether p became current.
func (s *Store) Commit(t Ticket, p *chart.Payload) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t <= s.committed || p == nil {
		return false
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.committed = t
	s.current = p
	return true
}

// Current returns the last committed chart.
func (s *Store) Current() (*chart.Payload, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, false
	}
	return s.current, true
}

// Markers returns the current chart's signal markers and its ID. The slice
// must not be modified.
func (s *Store) Markers() ([]core.Marker, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, ""
	}
	return s.current.Signals, s.current.ID
}
