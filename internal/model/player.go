package model

// PlayerID uniquely identifies a player across connections. It is minted once
// per session and survives transport reconnects.
type PlayerID string

// SessionToken is the opaque bearer token a client presents to be recognised
// as the same player after a reconnect.
type SessionToken string

// Color is a chess side.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Opponent returns the other side.
func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

// Player is a seated participant in a room. Spectators are never represented
// as Players; they only subscribe to the room's events.
type Player struct {
	ID    PlayerID `json:"id"`
	Name  string   `json:"name"`
	Color Color    `json:"color"`
}
