package game

import "sync"

// Listener is notified with the new state after every applied action.
// Listeners run synchronously on the dispatching goroutine and must not
// call back into the store.
type Listener func(State)

// Store holds the current state for one session and advances it atomically:
// actions apply one at a time, and no transition interleaves with another
// within the same store.
//
// Store is a container, not a singleton; construct one per session (or per
// test) and pass it to whichever component needs it.
type Store struct {
	mu        sync.Mutex
	state     State
	listeners []Listener
}

// NewStore creates a store starting from the given state, typically
// Initial() or a bootstrap state hydrated from durable storage.
func NewStore(initial State) *Store {
	return &Store{state: initial}
}

// State returns a snapshot of the current state. The snapshot shares
// underlying slices with the store; treat it as read-only. Reduce never
// mutates state in place, so a held snapshot stays consistent across later
// dispatches.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies an action and returns the resulting state. Unknown
// actions leave the state unchanged but still notify listeners.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	next := s.state
	listeners := s.listeners
	s.mu.Unlock()

	for _, l := range listeners {
		l(next)
	}
	return next
}

// Subscribe registers a listener for future state changes.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}
