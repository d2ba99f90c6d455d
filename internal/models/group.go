package models

// Group represents a team of users sharing one submission slot.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group. Names are unique across the
	// game, compared case-insensitively. Uniqueness is enforced at creation
	// time by the service layer, not re-checked by the reducer.
	Name string

	// Members is the list of users in this group, in join order.
	// Membership is append-only; there is no leave or kick.
	Members []User

	// Meme is the group's current submission, or nil if none has been
	// uploaded (or the last one was deleted).
	Meme *Meme
}

// HasMember reports whether a user with the given ID has joined the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}
