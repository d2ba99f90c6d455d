// Package bridge mirrors the timer subset of game state into durable
// storage and folds changes made by other sessions back in, giving every
// session a consistent view of whether the game is running and when it ends.
//
// Coordination is eventually consistent and best effort: two sessions may
// briefly disagree between a write in one and the notification's delivery in
// the other. Storage failures never propagate past this package; the
// in-memory state stays authoritative for the local session.
package bridge

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mememadness/server/internal/bus"
	"github.com/mememadness/server/internal/game"
	"github.com/mememadness/server/internal/storage"
)

// Bridge connects one session's store to the durable entry and the bus.
type Bridge struct {
	sessionID string
	store     *game.Store
	kv        storage.GameStateStore
	bus       *bus.Bus
	logger    *slog.Logger

	mu   sync.Mutex
	last *storage.TimerState // last value written or observed; nil = removed

	unsubscribe func()
}

// Bootstrap loads the durable entry and returns the state a new session
// should start from. An entry whose timer has already expired is discarded:
// the session starts in the lobby instead of resuming a finished game.
// Read failures fall back to the initial state.
func Bootstrap(ctx context.Context, kv storage.GameStateStore, logger *slog.Logger, now time.Time) game.State {
	saved, err := kv.Load(ctx)
	if err != nil {
		logger.Error("could not load saved game state, starting fresh", "error", err)
		return game.Initial()
	}
	if saved == nil {
		return game.Initial()
	}
	if saved.GameStarted && saved.TimerEndTime != 0 && saved.TimerEndTime < now.UnixMilli() {
		logger.Info("discarding expired game timer", "timer_end", saved.TimerEndTime)
		return game.Initial()
	}

	state := game.Initial()
	state.GameStarted = saved.GameStarted
	state.TimerEndTime = saved.TimerEndTime
	return state
}

// Attach wires a bridge between the store and the shared bus/entry. The
// sessionID distinguishes this session's own writes from everyone else's;
// events it publishes are not delivered back to it.
func Attach(sessionID string, store *game.Store, kv storage.GameStateStore, b *bus.Bus, logger *slog.Logger) *Bridge {
	br := &Bridge{
		sessionID: sessionID,
		store:     store,
		kv:        kv,
		bus:       b,
		logger:    logger,
	}

	// Seed the change filter from the bootstrapped state so attaching does
	// not immediately re-publish a value every session already agrees on.
	if s := store.State(); s.GameStarted && s.TimerEndTime != 0 {
		br.last = &storage.TimerState{GameStarted: s.GameStarted, TimerEndTime: s.TimerEndTime}
	}

	store.Subscribe(br.onStateChange)
	br.unsubscribe = b.Subscribe(sessionID, br.onBusEvent)
	return br
}

// Close detaches the bridge from the bus. The store subscription stays;
// further writes are still mirrored but nothing is received.
func (br *Bridge) Close() {
	if br.unsubscribe != nil {
		br.unsubscribe()
	}
}

// onStateChange mirrors the timer fields after every local transition.
// Only an actual change in the mirrored subset triggers a write, matching
// the platform rule that rewriting an identical value fires no notification.
func (br *Bridge) onStateChange(s game.State) {
	var next *storage.TimerState
	if s.GameStarted && s.TimerEndTime != 0 {
		next = &storage.TimerState{GameStarted: true, TimerEndTime: s.TimerEndTime}
	}

	br.mu.Lock()
	if sameTimerState(br.last, next) {
		br.mu.Unlock()
		return
	}
	br.last = next
	br.mu.Unlock()

	ctx := context.Background()
	if next != nil {
		if err := br.kv.Save(ctx, *next); err != nil {
			br.logger.Error("could not save game state", "error", err)
		}
		end := next.TimerEndTime
		br.bus.Publish(br.sessionID, bus.Event{GameStarted: true, TimerEndTime: &end})
		return
	}

	if err := br.kv.Clear(ctx); err != nil {
		br.logger.Error("could not clear game state", "error", err)
	}
	br.bus.Publish(br.sessionID, bus.Event{Removed: true})
}

// onBusEvent folds in a change made by another session. A removal resets
// the game; a value overwrites only the timer fields.
func (br *Bridge) onBusEvent(ev bus.Event) {
	if ev.Removed {
		br.mu.Lock()
		br.last = nil
		br.mu.Unlock()
		br.store.Dispatch(game.ResetGame{})
		return
	}

	observed := &storage.TimerState{GameStarted: ev.GameStarted}
	if ev.TimerEndTime != nil {
		observed.TimerEndTime = *ev.TimerEndTime
	}
	br.mu.Lock()
	br.last = observed
	br.mu.Unlock()

	br.store.Dispatch(game.SyncGameState{
		GameStarted:  observed.GameStarted,
		TimerEndTime: observed.TimerEndTime,
	})
}

func sameTimerState(a, b *storage.TimerState) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.GameStarted == b.GameStarted && a.TimerEndTime == b.TimerEndTime
}
