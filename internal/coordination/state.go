// Package coordination holds per-domain pause/resume flags consulted
// before actions that must yield to another agent's activity.
package coordination

import (
	"sync"
	"time"
)

// Flag is the pause state of one coordination domain.
type Flag struct {
	Paused bool      `json:"paused"`
	Reason string    `json:"reason,omitempty"`
	SetAt  time.Time `json:"set_at,omitempty"`
	SetBy  string    `json:"set_by,omitempty"`
}

// State tracks pause flags keyed by coordination domain, e.g.
// "scaling-vs-fraud". Transitions happen only via Pause and Resume.
type State struct {
	mu      sync.RWMutex
	domains map[string]Flag
}

// New creates an empty coordination state.
func New() *State {
	return &State{domains: make(map[string]Flag)}
}

// Pause marks a domain paused with the given reason and originator.
func (s *State) Pause(domain, reason, setBy string) {
	s.mu.Lock()
	s.domains[domain] = Flag{Paused: true, Reason: reason, SetAt: time.Now().UTC(), SetBy: setBy}
	s.mu.Unlock()
}

// Resume clears the pause flag and its reason for a domain.
func (s *State) Resume(domain string) {
	s.mu.Lock()
	delete(s.domains, domain)
	s.mu.Unlock()
}

// IsPaused reports whether a domain is paused, and the pause reason.
func (s *State) IsPaused(domain string) (bool, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	flag := s.domains[domain]
	return flag.Paused, flag.Reason
}

// Status returns the full flag for a domain.
func (s *State) Status(domain string) Flag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.domains[domain]
}
