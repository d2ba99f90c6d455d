// Package bus is a minimal in-process publish/subscribe channel used to
// propagate timer-state changes between sessions.
//
// Delivery contract: last write observed wins, no ordering guarantee across
// concurrent publishers, no delivery to subscribers registered after the
// fact, and no conflict resolution. A publisher never receives its own
// events, mirroring how same-origin storage change notifications only fire
// in other browsing contexts.
package bus

import "sync"

// Event is one timer-state change notification.
type Event struct {
	// GameStarted and TimerEndTime carry the new value when the entry was
	// written. TimerEndTime is nil when the payload had no timer.
	GameStarted  bool
	TimerEndTime *int64

	// Removed is true when the entry was deleted rather than written.
	Removed bool
}

// Handler consumes events. Handlers run synchronously on the publishing
// goroutine and should return quickly.
type Handler func(Event)

// Bus fans events out to every subscriber except the sender.
type Bus struct {
	mu   sync.RWMutex
	subs map[string]Handler
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[string]Handler)}
}

// Subscribe registers a handler under the given subscriber ID and returns a
// function that removes it. Publishing with the same ID as sender skips
// this handler.
func (b *Bus) Subscribe(id string, h Handler) func() {
	b.mu.Lock()
	b.subs[id] = h
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Publish delivers the event to all subscribers other than sender.
func (b *Bus) Publish(sender string, ev Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs))
	for id, h := range b.subs {
		if id == sender {
			continue
		}
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}
