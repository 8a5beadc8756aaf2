package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/chessrooms/chessrooms-go/internal/chess"
	"github.com/chessrooms/chessrooms-go/internal/dependencies/mocks"
	"github.com/chessrooms/chessrooms-go/internal/model"
	"github.com/chessrooms/chessrooms-go/internal/services/directory"
	"github.com/chessrooms/chessrooms-go/internal/services/room"
	"github.com/chessrooms/chessrooms-go/internal/storage/memory"
	"github.com/chessrooms/chessrooms-go/internal/testutil"
)

type RelaySuite struct {
	suite.Suite
	directory *directory.Directory
	rooms     *room.Controller
	relay     *Relay
	ctx       context.Context
}

func TestRelaySuite(t *testing.T) {
	suite.Run(t, new(RelaySuite))
}

func (s *RelaySuite) SetupTest() {
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	logger := testutil.NopLogger()
	s.directory = directory.New(memory.New(), clk, logger)
	s.rooms = room.NewController(s.directory, logger)
	s.relay = NewRelay(s.directory, chess.NewRules(), logger)
	s.ctx = context.Background()
}

// startedRoom seats "white" and "black" and starts the game.
func (s *RelaySuite) startedRoom() model.RoomID {
	r, err := s.directory.Create(s.ctx, "match", model.Player{ID: "white", Name: "Alice"})
	s.Require().NoError(err)
	_, err = s.rooms.Join(s.ctx, r.ID, "black", "Bob")
	s.Require().NoError(err)
	start, err := s.rooms.Start(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Require().True(start.Started)
	return r.ID
}

func (s *RelaySuite) TestMoveBeforeStart() {
	r, err := s.directory.Create(s.ctx, "match", model.Player{ID: "white", Name: "Alice"})
	s.Require().NoError(err)

	_, err = s.relay.Move(s.ctx, r.ID, "white", "e4")
	s.ErrorIs(err, model.ErrGameNotStarted)
}

func (s *RelaySuite) TestMoveAppliesAndAppendsHistory() {
	id := s.startedRoom()

	outcome, err := s.relay.Move(s.ctx, id, "white", "e4")
	s.Require().NoError(err)

	s.Equal("e4", outcome.SAN)
	s.Nil(outcome.Result)
	s.Equal([]string{"e4"}, outcome.Room.MoveHistory)
	s.Equal(outcome.FEN, outcome.Room.GameFEN)
	s.NotEqual(model.StartingFEN, outcome.FEN)
}

func (s *RelaySuite) TestMoveOutOfTurn() {
	id := s.startedRoom()

	_, err := s.relay.Move(s.ctx, id, "black", "e5")
	s.ErrorIs(err, model.ErrNotPlayersTurn)

	snap, err := s.relay.Snapshot(s.ctx, id)
	s.Require().NoError(err)
	s.Empty(snap.MoveHistory)
}

func (s *RelaySuite) TestMoveBySpectator() {
	id := s.startedRoom()

	_, err := s.relay.Move(s.ctx, id, "ghost", "e4")
	s.ErrorIs(err, model.ErrNotInRoom)
}

func (s *RelaySuite) TestIllegalMoveLeavesStateUntouched() {
	id := s.startedRoom()

	_, err := s.relay.Move(s.ctx, id, "white", "e5")
	s.ErrorIs(err, model.ErrIllegalMove)

	snap, err := s.relay.Snapshot(s.ctx, id)
	s.Require().NoError(err)
	s.Empty(snap.MoveHistory)
	s.Equal(model.StartingFEN, snap.GameFEN)
	s.Equal(model.StatusPlaying, snap.GameStatus)
}

func (s *RelaySuite) TestCheckmateEndsGame() {
	id := s.startedRoom()

	for _, mv := range []struct {
		player model.PlayerID
		move   string
	}{
		{"white", "f3"}, {"black", "e5"}, {"white", "g4"},
	} {
		_, err := s.relay.Move(s.ctx, id, mv.player, mv.move)
		s.Require().NoError(err)
	}

	outcome, err := s.relay.Move(s.ctx, id, "black", "Qh4#")
	s.Require().NoError(err)

	s.Require().NotNil(outcome.Result)
	s.Equal(model.WinnerBlack, outcome.Result.Winner)
	s.Equal(model.ReasonCheckmate, outcome.Result.Reason)
	s.Equal(model.StatusEnded, outcome.Room.GameStatus)

	_, err = s.relay.Move(s.ctx, id, "white", "e4")
	s.ErrorIs(err, model.ErrGameEnded)
}

func (s *RelaySuite) TestOfferDrawReportsColor() {
	id := s.startedRoom()

	color, err := s.relay.OfferDraw(s.ctx, id, "black")
	s.Require().NoError(err)
	s.Equal(model.Black, color)

	snap, err := s.relay.Snapshot(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(model.StatusPlaying, snap.GameStatus)
}

func (s *RelaySuite) TestOfferDrawBySpectator() {
	id := s.startedRoom()

	_, err := s.relay.OfferDraw(s.ctx, id, "ghost")
	s.ErrorIs(err, model.ErrNotInRoom)
}

func (s *RelaySuite) TestAcceptDrawSettlesGame() {
	id := s.startedRoom()

	out, err := s.relay.AcceptDraw(s.ctx, id, "white")
	s.Require().NoError(err)

	s.Equal(model.WinnerDraw, out.Result.Winner)
	s.Equal(model.ReasonDraw, out.Result.Reason)
	s.Equal(model.StatusEnded, out.Room.GameStatus)
}

func (s *RelaySuite) TestDeclineDrawLeavesGameRunning() {
	id := s.startedRoom()

	color, err := s.relay.DeclineDraw(s.ctx, id, "white")
	s.Require().NoError(err)
	s.Equal(model.White, color)

	snap, err := s.relay.Snapshot(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(model.StatusPlaying, snap.GameStatus)
}

func (s *RelaySuite) TestResignAwardsOpponent() {
	id := s.startedRoom()

	out, err := s.relay.Resign(s.ctx, id, "white")
	s.Require().NoError(err)

	s.Equal(model.WinnerBlack, out.Result.Winner)
	s.Equal(model.ReasonResignation, out.Result.Reason)
	s.Equal(model.StatusEnded, out.Room.GameStatus)
}

func (s *RelaySuite) TestResignAfterEnd() {
	id := s.startedRoom()
	_, err := s.relay.Resign(s.ctx, id, "white")
	s.Require().NoError(err)

	_, err = s.relay.Resign(s.ctx, id, "black")
	s.ErrorIs(err, model.ErrGameEnded)
}

func (s *RelaySuite) TestSnapshotUnknownRoom() {
	_, err := s.relay.Snapshot(s.ctx, "missing")
	s.ErrorIs(err, model.ErrRoomNotFound)
}
