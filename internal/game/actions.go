package game

import "github.com/mememadness/server/internal/models"

// Action is one state transition request. The concrete types below are the
// only transitions; Reduce treats anything else (including nil) as a no-op.
//
// Preconditions listed on each action are the caller's responsibility; the
// reducer itself never fails, it silently leaves the state unchanged when a
// precondition does not hold.
type Action interface {
	actionName() string
}

// SetUser sets the session's current user, replacing any prior one.
type SetUser struct {
	User models.User
}

// CreateGroup appends a new group whose single member is the creator.
// The caller supplies the group ID and validates the name (non-empty,
// unique); the reducer only enforces the MaxGroups cap.
type CreateGroup struct {
	ID      string
	Name    string
	Creator models.User
}

// JoinGroup appends a user to an existing group's member list.
// An unknown group ID is a no-op.
type JoinGroup struct {
	GroupID string
	User    models.User
}

// UploadMeme sets or replaces a group's submission. The overwrite is
// unconditional; no history is retained. An unknown group ID is a no-op.
type UploadMeme struct {
	Meme models.Meme
}

// DeleteMeme clears a group's submission. An unknown group ID is a no-op.
type DeleteMeme struct {
	GroupID string
}

// StartGame opens the submission window: sets the timer to the supplied
// absolute end time (Unix milliseconds, in the future) and clears any
// winners from a previous round.
type StartGame struct {
	TimerEndTime int64
}

// AdminLogin marks the session as an authenticated admin.
type AdminLogin struct{}

// AdminLogout clears the admin flag and the current user.
type AdminLogout struct{}

// SetWinners replaces the winners list. The caller truncates to the top
// MaxWinners entries before dispatching.
type SetWinners struct {
	Winners []models.Winner
}

// ResetGame returns to the initial lobby state, preserving the admin flag
// and, for an admin session, the current user.
type ResetGame struct{}

// SyncGameState folds in an externally observed timer state. It overwrites
// only GameStarted and TimerEndTime, never groups, winners, or the user.
type SyncGameState struct {
	GameStarted  bool
	TimerEndTime int64
}

func (SetUser) actionName() string       { return "set_user" }
func (CreateGroup) actionName() string   { return "create_group" }
func (JoinGroup) actionName() string     { return "join_group" }
func (UploadMeme) actionName() string    { return "upload_meme" }
func (DeleteMeme) actionName() string    { return "delete_meme" }
func (StartGame) actionName() string     { return "start_game" }
func (AdminLogin) actionName() string    { return "admin_login" }
func (AdminLogout) actionName() string   { return "admin_logout" }
func (SetWinners) actionName() string    { return "set_winners" }
func (ResetGame) actionName() string     { return "reset_game" }
func (SyncGameState) actionName() string { return "sync_game_state" }

// ActionName returns a stable label for an action, used for logging and
// metrics. Unknown or nil actions are labeled "unknown".
func ActionName(a Action) string {
	if a == nil {
		return "unknown"
	}
	return a.actionName()
}
