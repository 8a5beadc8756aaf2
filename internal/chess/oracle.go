// Package chess adapts a chess rules engine into the move legality oracle the
// game relay depends on. The relay itself never inspects piece placement; it
// only forwards moves here and relays the verdict.
package chess

import (
	"github.com/chessrooms/chessrooms-go/internal/model"
)

// MoveResult is the oracle's verdict on a legal move.
type MoveResult struct {
	// FEN is the position after the move.
	FEN string
	// SAN is the canonical algebraic spelling of the move, appended to the
	// room's move history.
	SAN string
	// Outcome is non-nil when the move ends the game.
	Outcome *model.GameResult
}

// Oracle validates moves and classifies terminal positions.
//
// Moves are evaluated against the full history rather than a bare position:
// repetition draws depend on positions the FEN alone cannot carry.
type Oracle interface {
	// Apply validates a move against the game reconstructed from history and
	// returns the resulting position. Returns model.ErrIllegalMove when the
	// rules engine rejects the move.
	Apply(history []string, move string) (MoveResult, error)

	// SideToMove reports which color moves next in the given position.
	SideToMove(fen string) (model.Color, error)

	// Replay applies a move history to the initial position and returns the
	// final FEN.
	Replay(history []string) (string, error)
}
