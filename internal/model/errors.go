package model

import "errors"

// Common errors used across the application
var (
	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrPlayerNotFound  = errors.New("player not found")

	// Room errors
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
	ErrNotInRoom    = errors.New("player is not seated in room")

	// Game errors
	ErrGameNotStarted     = errors.New("game has not started")
	ErrGameAlreadyStarted = errors.New("game has already started")
	ErrGameEnded          = errors.New("game has ended")
	ErrNotPlayersTurn     = errors.New("not this player's turn")
	ErrIllegalMove        = errors.New("illegal move")

	// Invitation errors
	ErrInviteeOffline     = errors.New("invited player is not online")
	ErrInvitationNotFound = errors.New("invitation not found")
)
