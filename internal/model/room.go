package model

import "time"

// RoomID uniquely identifies a room for its lifetime.
type RoomID string

// GameStatus is the lifecycle state of the game hosted by a room.
type GameStatus string

const (
	StatusWaiting GameStatus = "waiting"
	StatusPlaying GameStatus = "playing"
	StatusEnded   GameStatus = "ended"
)

// StartingFEN is the standard chess initial position.
const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// MaxPlayers is the number of seats in a room; everyone past that is a
// spectator.
const MaxPlayers = 2

// Room holds one game between at most two seated players plus any number of
// spectators. Rooms are volatile: they exist only for the process lifetime and
// are destroyed the moment the player list empties.
type Room struct {
	ID          RoomID     `json:"id"`
	Name        string     `json:"name"`
	Players     []Player   `json:"players"`
	GameStarted bool       `json:"gameStarted"`
	GameFEN     string     `json:"gameFen"`
	MoveHistory []string   `json:"moveHistory"`
	GameStatus  GameStatus `json:"gameStatus"`
	CreatedAt   time.Time  `json:"-"`
	UpdatedAt   time.Time  `json:"-"`
}

// NewRoom returns a waiting room seeded with the creator seated as white.
func NewRoom(id RoomID, name string, creator Player, now time.Time) *Room {
	creator.Color = White
	return &Room{
		ID:          id,
		Name:        name,
		Players:     []Player{creator},
		GameStarted: false,
		GameFEN:     StartingFEN,
		MoveHistory: []string{},
		GameStatus:  StatusWaiting,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// PlayerByID returns the seated player with the given identity, or nil.
func (r *Room) PlayerByID(id PlayerID) *Player {
	for i := range r.Players {
		if r.Players[i].ID == id {
			return &r.Players[i]
		}
	}
	return nil
}

// PlayerByColor returns the seated player holding the given color, or nil.
func (r *Room) PlayerByColor(c Color) *Player {
	for i := range r.Players {
		if r.Players[i].Color == c {
			return &r.Players[i]
		}
	}
	return nil
}

// VacantColor returns the color not held by any seated player. With both seats
// taken it reports false.
func (r *Room) VacantColor() (Color, bool) {
	if len(r.Players) >= MaxPlayers {
		return "", false
	}
	if r.PlayerByColor(White) == nil {
		return White, true
	}
	return Black, true
}

// Snapshot returns a self-consistent value copy of the room. Broadcasts and
// directory listings always carry snapshots, never the live room.
func (r *Room) Snapshot() Room {
	cp := *r
	cp.Players = make([]Player, len(r.Players))
	copy(cp.Players, r.Players)
	cp.MoveHistory = make([]string, len(r.MoveHistory))
	copy(cp.MoveHistory, r.MoveHistory)
	return cp
}
