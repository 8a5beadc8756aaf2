package model

// Winner identifies who won a finished game.
type Winner string

const (
	WinnerWhite Winner = "white"
	WinnerBlack Winner = "black"
	WinnerDraw  Winner = "draw"
)

// WinnerFor converts a color into the corresponding winner value.
func WinnerFor(c Color) Winner {
	if c == White {
		return WinnerWhite
	}
	return WinnerBlack
}

// EndReason classifies how a game ended.
type EndReason string

const (
	ReasonCheckmate            EndReason = "checkmate"
	ReasonStalemate            EndReason = "stalemate"
	ReasonInsufficientMaterial EndReason = "insufficient material"
	ReasonThreefoldRepetition  EndReason = "threefold repetition"
	ReasonDraw                 EndReason = "draw"
	ReasonResignation          EndReason = "resignation"
)

// GameResult is the settled outcome of a game, broadcast with gameOver.
type GameResult struct {
	Winner Winner    `json:"winner"`
	Reason EndReason `json:"reason"`
}
