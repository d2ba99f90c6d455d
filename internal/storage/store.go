// Package storage provides abstractions for durable game-state storage.
package storage

import "context"

// TimerState is the subset of game state mirrored to durable storage for
// cross-session timer continuity. Nothing else is persisted.
type TimerState struct {
	GameStarted  bool  `json:"gameStarted"`
	TimerEndTime int64 `json:"timerEndTime"`
}

// GameStateStore is the durable key-value entry holding the timer state.
// This abstraction allows swapping backends without changing the bridge.
//
// Absence of the entry means "no active game"; consumers must not assume
// any fields beyond TimerState are present in the stored payload.
type GameStateStore interface {
	// Load reads the current entry. It returns (nil, nil) when the entry
	// is absent.
	Load(ctx context.Context) (*TimerState, error)

	// Save writes the entry, replacing any prior value.
	Save(ctx context.Context, state TimerState) error

	// Clear deletes the entry. Clearing an absent entry is not an error.
	Clear(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
