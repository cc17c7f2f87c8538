package users

import "github.com/google/uuid"

// Actor is the explicit identity context passed into every core call. It is
// resolved once per request by the auth middleware; services never read
// ambient session state.
type Actor struct {
	ID       uuid.UUID
	Username string
	FullName string
	Role     Role
}

// ActorFor builds the acting identity snapshot for a user.
func ActorFor(u *User) Actor {
	return Actor{ID: u.ID, Username: u.Username, FullName: u.FullName, Role: u.Role}
}
