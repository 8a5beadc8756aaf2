package chess

import (
	"fmt"

	nchess "github.com/corentings/chess/v2"

	"github.com/chessrooms/chessrooms-go/internal/model"
)

// Rules implements Oracle on top of github.com/corentings/chess/v2.
type Rules struct{}

// NewRules returns the standard-chess oracle.
func NewRules() *Rules {
	return &Rules{}
}

var _ Oracle = (*Rules)(nil)

func (r *Rules) Apply(history []string, move string) (MoveResult, error) {
	game, err := rebuild(history)
	if err != nil {
		return MoveResult{}, err
	}

	pos := game.Position()

	// Clients submit SAN; fall back to UCI for programmatic clients.
	if err := game.PushNotationMove(move, nchess.AlgebraicNotation{}, nil); err != nil {
		if uciErr := game.PushNotationMove(move, nchess.UCINotation{}, nil); uciErr != nil {
			return MoveResult{}, fmt.Errorf("%w: %q", model.ErrIllegalMove, move)
		}
	}

	moves := game.Moves()
	last := moves[len(moves)-1]
	san := nchess.AlgebraicNotation{}.Encode(pos, last)

	// Threefold repetition must be claimed; the room settles it automatically.
	if game.Outcome() == nchess.NoOutcome {
		for _, m := range game.EligibleDraws() {
			if m == nchess.ThreefoldRepetition {
				_ = game.Draw(nchess.ThreefoldRepetition)
				break
			}
		}
	}

	return MoveResult{
		FEN:     game.FEN(),
		SAN:     san,
		Outcome: outcome(game),
	}, nil
}

func (r *Rules) SideToMove(fen string) (model.Color, error) {
	opt, err := nchess.FEN(fen)
	if err != nil {
		return "", fmt.Errorf("parse fen: %w", err)
	}
	game := nchess.NewGame(opt)
	if game.Position().Turn() == nchess.White {
		return model.White, nil
	}
	return model.Black, nil
}

func (r *Rules) Replay(history []string) (string, error) {
	game, err := rebuild(history)
	if err != nil {
		return "", err
	}
	return game.FEN(), nil
}

// rebuild replays a SAN history onto the initial position.
func rebuild(history []string) (*nchess.Game, error) {
	game := nchess.NewGame()
	for i, mv := range history {
		if err := game.PushNotationMove(mv, nchess.AlgebraicNotation{}, nil); err != nil {
			return nil, fmt.Errorf("replay move %d (%q): %w", i+1, mv, err)
		}
	}
	return game, nil
}

// outcome maps the engine's verdict onto a settled game result, or nil while
// the game continues.
func outcome(game *nchess.Game) *model.GameResult {
	switch game.Outcome() {
	case nchess.WhiteWon:
		return &model.GameResult{Winner: model.WinnerWhite, Reason: reason(game.Method())}
	case nchess.BlackWon:
		return &model.GameResult{Winner: model.WinnerBlack, Reason: reason(game.Method())}
	case nchess.Draw:
		return &model.GameResult{Winner: model.WinnerDraw, Reason: reason(game.Method())}
	default:
		return nil
	}
}

func reason(m nchess.Method) model.EndReason {
	switch m {
	case nchess.Checkmate:
		return model.ReasonCheckmate
	case nchess.Stalemate:
		return model.ReasonStalemate
	case nchess.InsufficientMaterial:
		return model.ReasonInsufficientMaterial
	case nchess.ThreefoldRepetition, nchess.FivefoldRepetition:
		return model.ReasonThreefoldRepetition
	default:
		return model.ReasonDraw
	}
}
