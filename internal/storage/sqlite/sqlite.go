// Package sqlite provides a SQLite-backed implementation of the
// storage.GameStateStore interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mememadness/server/internal/storage"
)

// gameStateKey is the well-known key under which the timer state lives.
// There is exactly one entry; the table is keyed anyway so other records
// could share it later without a migration.
const gameStateKey = "meme_madness_game_state"

// Ensure SQLiteStore implements storage.GameStateStore
var _ storage.GameStateStore = (*SQLiteStore)(nil)

// SQLiteStore implements storage.GameStateStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// timerPayload is the stored JSON shape. TimerEndTime serializes as null
// when unset so external consumers see `{gameStarted, timerEndTime|null}`.
type timerPayload struct {
	GameStarted  bool   `json:"gameStarted"`
	TimerEndTime *int64 `json:"timerEndTime"`
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load reads the timer state, returning (nil, nil) when no entry exists.
func (s *SQLiteStore) Load(ctx context.Context) (*storage.TimerState, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		"SELECT payload FROM game_state WHERE key = ?",
		gameStateKey,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load game state: %w", err)
	}

	var payload timerPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse game state payload: %w", err)
	}

	state := &storage.TimerState{GameStarted: payload.GameStarted}
	if payload.TimerEndTime != nil {
		state.TimerEndTime = *payload.TimerEndTime
	}
	return state, nil
}

// Save writes the timer state, replacing any prior entry.
func (s *SQLiteStore) Save(ctx context.Context, state storage.TimerState) error {
	payload := timerPayload{GameStarted: state.GameStarted}
	if state.TimerEndTime != 0 {
		end := state.TimerEndTime
		payload.TimerEndTime = &end
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode game state: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO game_state (key, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		gameStateKey, string(raw), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save game state: %w", err)
	}
	return nil
}

// Clear deletes the timer state entry if present.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM game_state WHERE key = ?",
		gameStateKey,
	)
	if err != nil {
		return fmt.Errorf("failed to clear game state: %w", err)
	}
	return nil
}
