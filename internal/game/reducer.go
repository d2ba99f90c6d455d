package game

import "github.com/mememadness/server/internal/models"

// Reduce applies one action to a state and returns the resulting state.
//
// Reduce is total and side-effect-free: it never fails, never mutates its
// input, and returns the input unchanged for unknown actions or violated
// preconditions. This keeps transitions unit-testable as plain (state,
// action) pairs, independent of storage or transport.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SetUser:
		u := a.User
		s.User = &u
		return s

	case CreateGroup:
		if len(s.Groups) >= MaxGroups {
			return s
		}
		groups := make([]models.Group, len(s.Groups), len(s.Groups)+1)
		copy(groups, s.Groups)
		s.Groups = append(groups, models.Group{
			ID:      a.ID,
			Name:    a.Name,
			Members: []models.User{a.Creator},
		})
		return s

	case JoinGroup:
		return updateGroup(s, a.GroupID, func(g models.Group) models.Group {
			members := make([]models.User, len(g.Members), len(g.Members)+1)
			copy(members, g.Members)
			g.Members = append(members, a.User)
			return g
		})

	case UploadMeme:
		return updateGroup(s, a.Meme.GroupID, func(g models.Group) models.Group {
			meme := a.Meme
			g.Meme = &meme
			return g
		})

	case DeleteMeme:
		return updateGroup(s, a.GroupID, func(g models.Group) models.Group {
			g.Meme = nil
			return g
		})

	case StartGame:
		s.GameStarted = true
		s.TimerEndTime = a.TimerEndTime
		s.Winners = nil
		return s

	case AdminLogin:
		s.IsAdmin = true
		return s

	case AdminLogout:
		s.IsAdmin = false
		s.User = nil
		return s

	case SetWinners:
		s.Winners = append([]models.Winner(nil), a.Winners...)
		return s

	case ResetGame:
		next := Initial()
		next.IsAdmin = s.IsAdmin
		if s.IsAdmin {
			next.User = s.User
		}
		return next

	case SyncGameState:
		s.GameStarted = a.GameStarted
		s.TimerEndTime = a.TimerEndTime
		return s

	default:
		return s
	}
}

// updateGroup returns a state where the group with the given ID has been
// replaced by fn's result, copying the slice so the input state's groups
// are left untouched. An unknown ID returns the state unchanged.
func updateGroup(s State, groupID string, fn func(models.Group) models.Group) State {
	for i := range s.Groups {
		if s.Groups[i].ID != groupID {
			continue
		}
		groups := make([]models.Group, len(s.Groups))
		copy(groups, s.Groups)
		groups[i] = fn(groups[i])
		s.Groups = groups
		return s
	}
	return s
}
