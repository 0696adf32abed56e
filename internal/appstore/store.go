package appstore

import (
	"fmt"
	"slices"
	"sync"

	"github.com/roach88/stationcache/internal/value"
)

// Listener observes committed mutations. s is the state after m was applied.
type Listener func(m Mutation, s State)

type subscription struct {
	id int
	fn Listener
}

// Store holds the application state.
//
// Thread-safety model:
//   - State(), Subscribe(): safe from any goroutine
//   - Commit(): safe from any goroutine; commits are serialized
//   - Listeners: called synchronously, in Seq order, with commits held off
type Store struct {
	dispatch sync.Mutex // serializes apply + notify

	mu     sync.RWMutex // guards state and subs
	state  State
	subs   []subscription
	nextID int

	clock *Clock
}

// Option configures a Store.
type Option func(*Store)

// WithState sets the initial state. Nil containers are replaced by empty ones.
func WithState(s State) Option {
	return func(st *Store) {
		base := NewState()
		if s.Dashboard != nil {
			base.Dashboard = s.Dashboard
		}
		if s.Sensors != nil {
			base.Sensors = s.Sensors
		}
		if s.Settings != nil {
			base.Settings = s.Settings
		}
		if s.Stations != nil {
			base.Stations = s.Stations
		}
		if s.Measurements != nil {
			base.Measurements = s.Measurements
		}
		base.Online = s.Online
		st.state = base
	}
}

// WithClock sets the clock used to stamp mutations.
func WithClock(c *Clock) Option {
	return func(st *Store) {
		st.clock = c
	}
}

// New creates a Store with the initial state.
func New(opts ...Option) *Store {
	s := &Store{
		state: NewState(),
		clock: NewClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state.Seq = s.clock.Current()
	return s
}

// State returns the current state snapshot.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Commit applies a mutation and notifies listeners before returning.
// An invalid payload returns an error; the state is unchanged and no
// listener runs.
func (s *Store) Commit(kind MutationKind, payload value.Value) error {
	s.dispatch.Lock()
	defer s.dispatch.Unlock()
	return s.commit(kind, payload)
}

// commit must be called with the dispatch lock held.
func (s *Store) commit(kind MutationKind, payload value.Value) error {
	apply, ok := reducers[kind]
	if !ok {
		return fmt.Errorf("commit: unknown mutation kind %v", kind)
	}

	// Callers keep ownership of what they passed in
	payload = value.Clone(payload)

	s.mu.RLock()
	cur := s.state
	s.mu.RUnlock()

	next, err := apply(cur, payload)
	if err != nil {
		return fmt.Errorf("commit %s: %w", kind, err)
	}
	next.Seq = s.clock.Next()

	s.mu.Lock()
	s.state = next
	subs := slices.Clone(s.subs)
	s.mu.Unlock()

	m := Mutation{Kind: kind, Payload: payload, Seq: next.Seq}
	for _, sub := range subs {
		sub.fn(m, next)
	}
	return nil
}

// Subscribe registers fn for every subsequent mutation.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.subs = slices.DeleteFunc(s.subs, func(sub subscription) bool {
				return sub.id == id
			})
		})
	}
}

// Exclusive runs fn while every other Commit waits.
// Inside fn, use the Session to read, commit and subscribe.
func (s *Store) Exclusive(fn func(*Session) error) error {
	s.dispatch.Lock()
	defer s.dispatch.Unlock()
	return fn(&Session{store: s})
}

// Session is the view of a Store handed to an Exclusive function.
// It must not be used after the function returns.
type Session struct {
	store *Store
}

// State returns the current state snapshot.
func (x *Session) State() State {
	return x.store.State()
}

// Commit applies a mutation without waiting for the dispatch lock, which the
// enclosing Exclusive call already holds.
func (x *Session) Commit(kind MutationKind, payload value.Value) error {
	return x.store.commit(kind, payload)
}

// Subscribe registers a listener; see Store.Subscribe.
func (x *Session) Subscribe(fn Listener) (unsubscribe func()) {
	return x.store.Subscribe(fn)
}
