package models

// User represents a participant in the game.
//
// A user is created once, when they enter their name, and is immutable from
// then on. Group membership copies the user by value, so a User appearing in
// Group.Members is a snapshot taken at join time.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Name is the display name the user entered.
	Name string
}
