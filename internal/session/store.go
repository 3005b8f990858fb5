package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned for an unknown or expired session id.
var ErrNotFound = errors.New("session not found")

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 30 * time.Minute

type entry struct {
	state   State
	touched time.Time
}

// Store keeps session state in memory. All mutations are serialised by a
// single mutex so each action is applied atomically.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	now      func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates a Store expiring sessions idle longer than ttl.
func NewStore(ttl time.Duration, opts ...StoreOption) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the idle expiry.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Create starts a new empty session with a random id.
func (s *Store) Create() State {
	st := New(uuid.NewString())

	s.mu.Lock()
	s.sessions[st.ID] = &entry{state: st, touched: s.now()}
	s.mu.Unlock()

	return st
}

// Get returns the session state and marks it as used.
func (s *Store) Get(id string) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(id)
	if !ok {
		return State{}, false
	}
	e.touched = s.now()
	return e.state, true
}

// Ensure returns the session for id, creating a fresh one when id is
// unknown or expired. The returned state's ID may differ from id.
func (s *Store) Ensure(id string) State {
	if st, ok := s.Get(id); ok {
		return st
	}
	return s.Create()
}

// Update replaces the session state with fn's result.
func (s *Store) Update(id string, fn func(State) State) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(id)
	if !ok {
		return State{}, ErrNotFound
	}
	e.state = fn(e.state)
	e.state.ID = id
	e.touched = s.now()
	return e.state, nil
}

// Dispatch applies a to the session through Reduce.
func (s *Store) Dispatch(id string, a Action) (State, error) {
	return s.Update(id, func(st State) State {
		return Reduce(st, a)
	})
}

// Delete removes a session.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Sweep removes sessions idle since before now minus the TTL and returns
// how many were removed.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		if now.Sub(e.touched) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// live returns the entry for id if it has not expired. s.mu must be held.
func (s *Store) live(id string) (*entry, bool) {
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if s.now().Sub(e.touched) > s.ttl {
		delete(s.sessions, id)
		return nil, false
	}
	return e, true
}
