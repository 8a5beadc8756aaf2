package room

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/chessrooms/chessrooms-go/internal/dependencies/mocks"
	"github.com/chessrooms/chessrooms-go/internal/model"
	"github.com/chessrooms/chessrooms-go/internal/services/directory"
	"github.com/chessrooms/chessrooms-go/internal/storage/memory"
	"github.com/chessrooms/chessrooms-go/internal/testutil"
)

type ControllerSuite struct {
	suite.Suite
	directory  *directory.Directory
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	logger := testutil.NopLogger()
	s.directory = directory.New(memory.New(), clk, logger)
	s.controller = NewController(s.directory, logger)
	s.ctx = context.Background()
}

func (s *ControllerSuite) createRoom(creatorID, creatorName string) model.Room {
	room, err := s.directory.Create(s.ctx, "casual", model.Player{
		ID:   model.PlayerID(creatorID),
		Name: creatorName,
	})
	s.Require().NoError(err)
	return room
}

// Join

func (s *ControllerSuite) TestJoinUnknownRoom() {
	_, err := s.controller.Join(s.ctx, "missing", "p1", "Alice")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *ControllerSuite) TestJoinSecondPlayerTakesVacantColor() {
	room := s.createRoom("a", "Alice")

	result, err := s.controller.Join(s.ctx, room.ID, "b", "Bob")
	s.Require().NoError(err)

	s.Equal(OutcomePlayer, result.Outcome)
	s.Equal(model.Black, result.Player.Color)
	s.Require().Len(result.Room.Players, 2)
	s.Equal(model.White, result.Room.Players[0].Color)
	s.Equal(model.Black, result.Room.Players[1].Color)
}

func (s *ControllerSuite) TestJoinThirdIsSpectator() {
	room := s.createRoom("a", "Alice")
	_, err := s.controller.Join(s.ctx, room.ID, "b", "Bob")
	s.Require().NoError(err)

	result, err := s.controller.Join(s.ctx, room.ID, "c", "Carol")
	s.Require().NoError(err)

	s.Equal(OutcomeSpectator, result.Outcome)
	s.Len(result.Room.Players, 2)
	s.Empty(result.Player.ID)
}

func (s *ControllerSuite) TestRejoinKeepsColorAndDoesNotDuplicate() {
	room := s.createRoom("a", "Alice")
	_, err := s.controller.Join(s.ctx, room.ID, "b", "Bob")
	s.Require().NoError(err)

	result, err := s.controller.Join(s.ctx, room.ID, "b", "Bobby")
	s.Require().NoError(err)

	s.Equal(OutcomeRejoined, result.Outcome)
	s.Equal(model.Black, result.Player.Color)
	s.Equal("Bobby", result.Player.Name)
	s.Len(result.Room.Players, 2)
}

func (s *ControllerSuite) TestTwoColorsAlwaysDistinct() {
	room := s.createRoom("a", "Alice")
	result, err := s.controller.Join(s.ctx, room.ID, "b", "Bob")
	s.Require().NoError(err)

	colors := map[model.Color]int{}
	for _, p := range result.Room.Players {
		colors[p.Color]++
	}
	s.Equal(1, colors[model.White])
	s.Equal(1, colors[model.Black])
}

// Leave

func (s *ControllerSuite) TestLeaveReportsVacatedSeat() {
	room := s.createRoom("a", "Alice")
	_, err := s.controller.Join(s.ctx, room.ID, "b", "Bob")
	s.Require().NoError(err)

	result, err := s.controller.Leave(s.ctx, room.ID, "b")
	s.Require().NoError(err)

	s.True(result.Left)
	s.Equal(model.Black, result.Color)
	s.Equal("Bob", result.Name)
	s.False(result.RoomClosed)
	s.Len(result.Room.Players, 1)
}

func (s *ControllerSuite) TestLeaveResetsStarted() {
	room := s.createRoom("a", "Alice")
	_, err := s.controller.Join(s.ctx, room.ID, "b", "Bob")
	s.Require().NoError(err)
	start, err := s.controller.Start(s.ctx, room.ID)
	s.Require().NoError(err)
	s.Require().True(start.Started)

	result, err := s.controller.Leave(s.ctx, room.ID, "b")
	s.Require().NoError(err)

	s.False(result.RoomClosed)
	s.False(result.Room.GameStarted)
}

func (s *ControllerSuite) TestLastPlayerLeavingClosesRoom() {
	room := s.createRoom("a", "Alice")

	result, err := s.controller.Leave(s.ctx, room.ID, "a")
	s.Require().NoError(err)
	s.True(result.RoomClosed)

	rooms, err := s.directory.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(rooms)
}

func (s *ControllerSuite) TestSpectatorLeaveDoesNotCloseRoom() {
	room := s.createRoom("a", "Alice")

	result, err := s.controller.Leave(s.ctx, room.ID, "ghost")
	s.Require().NoError(err)
	s.False(result.Left)
	s.False(result.RoomClosed)

	_, err = s.directory.Get(s.ctx, room.ID)
	s.NoError(err)
}

// SwitchSides

func (s *ControllerSuite) TestSwitchSidesSwapsColors() {
	room := s.createRoom("a", "Alice")
	_, err := s.controller.Join(s.ctx, room.ID, "b", "Bob")
	s.Require().NoError(err)

	players, switched, err := s.controller.SwitchSides(s.ctx, room.ID)
	s.Require().NoError(err)
	s.True(switched)
	s.Equal(model.Black, players[0].Color)
	s.Equal(model.White, players[1].Color)
}

func (s *ControllerSuite) TestSwitchSidesNoOpWithOnePlayer() {
	room := s.createRoom("a", "Alice")

	_, switched, err := s.controller.SwitchSides(s.ctx, room.ID)
	s.Require().NoError(err)
	s.False(switched)
}

func (s *ControllerSuite) TestSwitchSidesNoOpAfterStart() {
	room := s.createRoom("a", "Alice")
	_, err := s.controller.Join(s.ctx, room.ID, "b", "Bob")
	s.Require().NoError(err)
	_, err = s.controller.Start(s.ctx, room.ID)
	s.Require().NoError(err)

	_, switched, err := s.controller.SwitchSides(s.ctx, room.ID)
	s.Require().NoError(err)
	s.False(switched)

	got, err := s.directory.Get(s.ctx, room.ID)
	s.Require().NoError(err)
	s.Equal(model.White, got.Players[0].Color)
}

// Start

func (s *ControllerSuite) TestStartRequiresTwoPlayers() {
	room := s.createRoom("a", "Alice")

	result, err := s.controller.Start(s.ctx, room.ID)
	s.Require().NoError(err)
	s.False(result.Started)

	got, err := s.directory.Get(s.ctx, room.ID)
	s.Require().NoError(err)
	s.Equal(model.StatusWaiting, got.GameStatus)
}

func (s *ControllerSuite) TestStartTransitionsToPlaying() {
	room := s.createRoom("a", "Alice")
	_, err := s.controller.Join(s.ctx, room.ID, "b", "Bob")
	s.Require().NoError(err)

	result, err := s.controller.Start(s.ctx, room.ID)
	s.Require().NoError(err)

	s.True(result.Started)
	s.Equal("Alice", result.White.Name)
	s.Equal("Bob", result.Black.Name)
	s.Equal(model.StatusPlaying, result.Room.GameStatus)
	s.True(result.Room.GameStarted)
	s.Empty(result.Room.MoveHistory)
}

func (s *ControllerSuite) TestStartTwiceIsNoOp() {
	room := s.createRoom("a", "Alice")
	_, err := s.controller.Join(s.ctx, room.ID, "b", "Bob")
	s.Require().NoError(err)
	_, err = s.controller.Start(s.ctx, room.ID)
	s.Require().NoError(err)

	result, err := s.controller.Start(s.ctx, room.ID)
	s.Require().NoError(err)
	s.False(result.Started)
}
