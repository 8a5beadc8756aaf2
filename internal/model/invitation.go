package model

import "time"

// Invitation is a pending direct invite between two known identities. It is
// transient: it exists only between the invite-send event and the
// accept/decline event and is never part of the public room listing.
type Invitation struct {
	From      PlayerID
	FromName  string
	Invitee   string // display name of the invited player
	RoomID    RoomID
	CreatedAt time.Time
}
