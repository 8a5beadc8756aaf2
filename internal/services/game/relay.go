// Package game relays moves between seated players and the rules oracle, and
// settles the game when the oracle or the players declare it over.
package game

import (
	"context"
	"log/slog"

	"github.com/chessrooms/chessrooms-go/internal/chess"
	"github.com/chessrooms/chessrooms-go/internal/model"
	"github.com/chessrooms/chessrooms-go/internal/services/directory"
)

// MoveOutcome describes an accepted move: the canonical spelling, the position
// it produced, and the settled result when the move ended the game.
type MoveOutcome struct {
	SAN    string
	FEN    string
	Result *model.GameResult // nil while the game continues
	Room   model.Room
}

// EndOutcome describes a game settled by agreement or resignation.
type EndOutcome struct {
	Result model.GameResult
	Room   model.Room
}

// Relay owns the playing-phase transitions of a room. Every method routes
// through the directory so mutations run on the room's owner goroutine.
type Relay struct {
	directory *directory.Directory
	oracle    chess.Oracle
	logger    *slog.Logger
}

func NewRelay(directory *directory.Directory, oracle chess.Oracle, logger *slog.Logger) *Relay {
	return &Relay{
		directory: directory,
		oracle:    oracle,
		logger:    logger.With(slog.String("component", "game_relay")),
	}
}

// Move validates and applies a move on behalf of the given identity.
//
// The mover must hold the seat whose color is to move in the current
// position; a seated opponent moving out of turn gets ErrNotPlayersTurn
// rather than ErrIllegalMove so the client can tell the cases apart.
func (g *Relay) Move(ctx context.Context, roomID model.RoomID, id model.PlayerID, move string) (MoveOutcome, error) {
	var outcome MoveOutcome
	err := g.directory.Update(ctx, roomID, func(r *model.Room) error {
		if err := requirePlaying(r); err != nil {
			return err
		}
		mover := r.PlayerByID(id)
		if mover == nil {
			return model.ErrNotInRoom
		}
		turn, err := g.oracle.SideToMove(r.GameFEN)
		if err != nil {
			return err
		}
		if mover.Color != turn {
			return model.ErrNotPlayersTurn
		}
		verdict, err := g.oracle.Apply(r.MoveHistory, move)
		if err != nil {
			return err
		}
		r.MoveHistory = append(r.MoveHistory, verdict.SAN)
		r.GameFEN = verdict.FEN
		if verdict.Outcome != nil {
			r.GameStatus = model.StatusEnded
		}
		outcome = MoveOutcome{
			SAN:    verdict.SAN,
			FEN:    verdict.FEN,
			Result: verdict.Outcome,
			Room:   r.Snapshot(),
		}
		return nil
	})
	if err != nil {
		return MoveOutcome{}, err
	}
	if outcome.Result != nil {
		g.logger.InfoContext(ctx, "game over",
			slog.String("room_id", string(roomID)),
			slog.String("winner", string(outcome.Result.Winner)),
			slog.String("reason", string(outcome.Result.Reason)))
	}
	return outcome, nil
}

// OfferDraw validates that the offering identity may offer a draw and reports
// the color the offer comes from. The offer itself carries no room state; it
// lives only in the broadcast to the opponent.
func (g *Relay) OfferDraw(ctx context.Context, roomID model.RoomID, id model.PlayerID) (model.Color, error) {
	var color model.Color
	err := g.directory.Update(ctx, roomID, func(r *model.Room) error {
		if err := requirePlaying(r); err != nil {
			return err
		}
		p := r.PlayerByID(id)
		if p == nil {
			return model.ErrNotInRoom
		}
		color = p.Color
		return nil
	})
	if err != nil {
		return "", err
	}
	return color, nil
}

// AcceptDraw settles the game as drawn by agreement.
func (g *Relay) AcceptDraw(ctx context.Context, roomID model.RoomID, id model.PlayerID) (EndOutcome, error) {
	return g.settle(ctx, roomID, id, func(model.Color) model.GameResult {
		return model.GameResult{Winner: model.WinnerDraw, Reason: model.ReasonDraw}
	})
}

// DeclineDraw validates that the declining identity is seated in a live game.
// Nothing about the room changes; the decline lives only in the broadcast.
func (g *Relay) DeclineDraw(ctx context.Context, roomID model.RoomID, id model.PlayerID) (model.Color, error) {
	return g.OfferDraw(ctx, roomID, id)
}

// Resign settles the game in the opponent's favor.
func (g *Relay) Resign(ctx context.Context, roomID model.RoomID, id model.PlayerID) (EndOutcome, error) {
	return g.settle(ctx, roomID, id, func(resigning model.Color) model.GameResult {
		return model.GameResult{
			Winner: model.WinnerFor(resigning.Opponent()),
			Reason: model.ReasonResignation,
		}
	})
}

// Snapshot returns the room's current state for a gameState reply.
func (g *Relay) Snapshot(ctx context.Context, roomID model.RoomID) (model.Room, error) {
	r, err := g.directory.Get(ctx, roomID)
	if err != nil {
		return model.Room{}, err
	}
	return *r, nil
}

func (g *Relay) settle(ctx context.Context, roomID model.RoomID, id model.PlayerID, result func(actor model.Color) model.GameResult) (EndOutcome, error) {
	var out EndOutcome
	err := g.directory.Update(ctx, roomID, func(r *model.Room) error {
		if err := requirePlaying(r); err != nil {
			return err
		}
		p := r.PlayerByID(id)
		if p == nil {
			return model.ErrNotInRoom
		}
		r.GameStatus = model.StatusEnded
		out = EndOutcome{Result: result(p.Color), Room: r.Snapshot()}
		return nil
	})
	if err != nil {
		return EndOutcome{}, err
	}
	g.logger.InfoContext(ctx, "game over",
		slog.String("room_id", string(roomID)),
		slog.String("winner", string(out.Result.Winner)),
		slog.String("reason", string(out.Result.Reason)))
	return out, nil
}

func requirePlaying(r *model.Room) error {
	switch r.GameStatus {
	case model.StatusPlaying:
		return nil
	case model.StatusEnded:
		return model.ErrGameEnded
	default:
		return model.ErrGameNotStarted
	}
}
