// Package game holds the authoritative game state and the transitions that
// advance it.
//
// State moves exclusively through Reduce, a pure function from (state,
// action) to state: no side effects, no partial application, unknown actions
// are no-ops. Store wraps a State behind a mutex so a session applies one
// action at a time; multiple independent stores can be constructed, one per
// session.
package game

import (
	"strings"
	"time"

	"github.com/mememadness/server/internal/models"
)

// Limits enforced by the reducer.
const (
	// MaxGroups is the maximum number of groups in one game.
	MaxGroups = 8

	// MaxWinners is the maximum number of winners per judging round.
	MaxWinners = 2
)

// State is the complete game state for one session.
//
// The overall game phase is derived rather than stored: Lobby when
// GameStarted is false, Active once started, Judged once Winners is
// non-empty, and back to Lobby via reset. IsAdmin is an orthogonal overlay
// that can be true in any phase.
type State struct {
	// User is the session's current user, nil before name entry.
	User *models.User

	// Groups holds every group in creation order, at most MaxGroups.
	Groups []models.Group

	// GameStarted reports whether the submission window is open (or was
	// opened; it stays true after the timer expires, until reset).
	GameStarted bool

	// TimerEndTime is the absolute end of the submission window in Unix
	// milliseconds. Zero means unset; it is set iff GameStarted is true.
	TimerEndTime int64

	// Winners holds the results of the last judging round, at most
	// MaxWinners entries.
	Winners []models.Winner

	// IsAdmin reports whether this session is an authenticated admin.
	IsAdmin bool
}

// Initial returns the empty lobby state.
func Initial() State {
	return State{}
}

// FindGroup returns the group with the given ID, or nil if it does not
// exist. The returned pointer is into the state's slice; callers must treat
// it as read-only.
func (s *State) FindGroup(groupID string) *models.Group {
	for i := range s.Groups {
		if s.Groups[i].ID == groupID {
			return &s.Groups[i]
		}
	}
	return nil
}

// GroupNameTaken reports whether a group with the given name already
// exists, compared case-insensitively.
func (s *State) GroupNameTaken(name string) bool {
	for i := range s.Groups {
		if strings.EqualFold(s.Groups[i].Name, name) {
			return true
		}
	}
	return false
}

// SubmittedCount returns the number of groups with a current submission.
func (s *State) SubmittedCount() int {
	n := 0
	for i := range s.Groups {
		if s.Groups[i].Meme != nil {
			n++
		}
	}
	return n
}

// TimeUp reports whether the submission window has closed: the timer is set
// and its end time has passed. Submissions are read-only from then on.
func (s *State) TimeUp(now time.Time) bool {
	return s.TimerEndTime != 0 && now.UnixMilli() > s.TimerEndTime
}

// Countdown returns the minutes and seconds remaining until end (a Unix
// millisecond timestamp), clamped to 00:00 once the end has passed.
func Countdown(end int64, now time.Time) (minutes, seconds int) {
	diff := end - now.UnixMilli()
	if diff <= 0 {
		return 0, 0
	}
	return int(diff/1000/60) % 60, int(diff/1000) % 60
}
