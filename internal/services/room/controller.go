// Package room implements the per-room state machine: seating, color
// negotiation and the waiting → playing transition.
package room

import (
	"context"
	"log/slog"

	"github.com/chessrooms/chessrooms-go/internal/model"
	"github.com/chessrooms/chessrooms-go/internal/services/directory"
)

// JoinOutcome reports how a join request was resolved.
type JoinOutcome string

const (
	// OutcomeRejoined means the identity was already seated; the same seat
	// and color are restored, only the display name refreshes.
	OutcomeRejoined JoinOutcome = "rejoined"
	// OutcomePlayer means a free seat was taken.
	OutcomePlayer JoinOutcome = "player"
	// OutcomeSpectator means both seats were taken; the connection only
	// subscribes to the room's events.
	OutcomeSpectator JoinOutcome = "spectator"
)

// JoinResult carries the outcome and a post-join snapshot for broadcasting.
type JoinResult struct {
	Outcome JoinOutcome
	Player  model.Player // zero value for spectators
	Room    model.Room
}

// LeaveResult reports the vacated seat, if any.
type LeaveResult struct {
	Left       bool
	Color      model.Color
	Name       string
	RoomClosed bool
	Room       model.Room // zero value when the room closed
}

// StartResult carries the seated players on a successful start.
type StartResult struct {
	Started bool
	White   model.Player
	Black   model.Player
	Room    model.Room
}

// Controller processes join/leave/switch/start events for rooms. All
// mutations run on the room's owner goroutine via the directory.
type Controller struct {
	directory *directory.Directory
	logger    *slog.Logger
}

// NewController creates a new room Controller
func NewController(directory *directory.Directory, logger *slog.Logger) *Controller {
	return &Controller{
		directory: directory,
		logger:    logger.With(slog.String("component", "room")),
	}
}

// Join seats an identity in a room, restores its existing seat, or admits it
// as a spectator when both seats are taken.
func (c *Controller) Join(ctx context.Context, roomID model.RoomID, id model.PlayerID, name string) (JoinResult, error) {
	var result JoinResult
	err := c.directory.Update(ctx, roomID, func(r *model.Room) error {
		if existing := r.PlayerByID(id); existing != nil {
			// Same token, same seat: a reconnect never duplicates the entry
			// or reassigns the color.
			existing.Name = name
			result = JoinResult{Outcome: OutcomeRejoined, Player: *existing, Room: r.Snapshot()}
			return nil
		}

		if color, free := r.VacantColor(); free {
			player := model.Player{ID: id, Name: name, Color: color}
			r.Players = append(r.Players, player)
			result = JoinResult{Outcome: OutcomePlayer, Player: player, Room: r.Snapshot()}
			return nil
		}

		result = JoinResult{Outcome: OutcomeSpectator, Room: r.Snapshot()}
		return nil
	})
	if err != nil {
		return JoinResult{}, err
	}
	return result, nil
}

// Leave removes the identity's seat if it holds one. The room is destroyed
// when the last seat empties; otherwise the game reverts to not-started so
// the remaining player can wait for a new opponent.
func (c *Controller) Leave(ctx context.Context, roomID model.RoomID, id model.PlayerID) (LeaveResult, error) {
	var result LeaveResult
	err := c.directory.Update(ctx, roomID, func(r *model.Room) error {
		for i := range r.Players {
			if r.Players[i].ID != id {
				continue
			}
			p := r.Players[i]
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			result = LeaveResult{Left: true, Color: p.Color, Name: p.Name}
			if len(r.Players) == 0 {
				result.RoomClosed = true
			} else {
				r.GameStarted = false
				result.Room = r.Snapshot()
			}
			return nil
		}
		// Spectators leaving do not touch room state.
		result = LeaveResult{Room: r.Snapshot()}
		return nil
	})
	if err != nil {
		return LeaveResult{}, err
	}
	return result, nil
}

// SwitchSides swaps the two seated colors. Valid only with both seats taken
// and the game not started; anything else is a silent no-op.
func (c *Controller) SwitchSides(ctx context.Context, roomID model.RoomID) ([]model.Player, bool, error) {
	var players []model.Player
	var switched bool
	err := c.directory.Update(ctx, roomID, func(r *model.Room) error {
		if len(r.Players) != model.MaxPlayers || r.GameStarted {
			return nil
		}
		r.Players[0].Color, r.Players[1].Color = r.Players[1].Color, r.Players[0].Color
		snapshot := r.Snapshot()
		players = snapshot.Players
		switched = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return players, switched, nil
}

// Start moves the room from waiting to playing. Preconditions are the same as
// SwitchSides; failures are logged, not surfaced, because clients only offer
// start when eligible.
func (c *Controller) Start(ctx context.Context, roomID model.RoomID) (StartResult, error) {
	var result StartResult
	err := c.directory.Update(ctx, roomID, func(r *model.Room) error {
		if len(r.Players) != model.MaxPlayers || r.GameStarted {
			c.logger.Info("start ignored",
				slog.String("room_id", string(roomID)),
				slog.Int("players", len(r.Players)),
				slog.Bool("started", r.GameStarted))
			return nil
		}
		r.GameStarted = true
		r.GameStatus = model.StatusPlaying
		result = StartResult{
			Started: true,
			White:   *r.PlayerByColor(model.White),
			Black:   *r.PlayerByColor(model.Black),
			Room:    r.Snapshot(),
		}
		return nil
	})
	if err != nil {
		return StartResult{}, err
	}
	return result, nil
}
