package wizard

import (
	"sync"
	"time"
)

type sessionEntry struct {
	controller *Controller
	lastUsed   time.Time
}

// Sessions keeps one Controller per owner key (account, chat, ...).
type Sessions struct {
	mu        sync.Mutex
	entries   map[string]*sessionEntry
	submitter Submitter
	now       func() time.Time
}

// NewSessions creates an empty registry whose controllers use s.
func NewSessions(s Submitter) *Sessions {
	return &Sessions{
		entries:   make(map[string]*sessionEntry),
		submitter: s,
		now:       time.Now,
	}
}

// Get returns the controller for key, creating one on first use.
func (s *Sessions) Get(key string) *Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		e = &sessionEntry{controller: NewController(s.submitter)}
		s.entries[key] = e
	}
	e.lastUsed = s.now()
	return e.controller
}

// Lookup returns the controller for key without creating one.
func (s *Sessions) Lookup(key string) (*Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	e.lastUsed = s.now()
	return e.controller, true
}

// Has reports whether a session exists for key. Unlike Lookup it does not
// count as use.
func (s *Sessions) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[key]
	return ok
}

// Drop forgets the session for key.
func (s *Sessions) Drop(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Prune drops sessions idle for longer than maxIdle and returns how many
// were removed. Sessions with a submission in flight are kept.
func (s *Sessions) Prune(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxIdle)
	removed := 0
	for key, e := range s.entries {
		if e.lastUsed.Before(cutoff) && !e.controller.State().IsSubmitting {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}
