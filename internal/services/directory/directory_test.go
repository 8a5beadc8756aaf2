package directory

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/chessrooms/chessrooms-go/internal/dependencies/mocks"
	"github.com/chessrooms/chessrooms-go/internal/model"
	"github.com/chessrooms/chessrooms-go/internal/storage/memory"
	"github.com/chessrooms/chessrooms-go/internal/testutil"
)

type DirectorySuite struct {
	suite.Suite
	directory *Directory
	clock     *mocks.MockClock
	ctx       context.Context
}

func TestDirectorySuite(t *testing.T) {
	suite.Run(t, new(DirectorySuite))
}

func (s *DirectorySuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.directory = New(memory.New(), s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *DirectorySuite) creator(id string) model.Player {
	return model.Player{ID: model.PlayerID(id), Name: "creator-" + id}
}

func (s *DirectorySuite) TestCreateSeatsCreatorAsWhite() {
	room, err := s.directory.Create(s.ctx, "casual", s.creator("p1"))
	s.Require().NoError(err)

	s.NotEmpty(room.ID)
	s.Equal("casual", room.Name)
	s.Require().Len(room.Players, 1)
	s.Equal(model.White, room.Players[0].Color)
	s.Equal(model.StatusWaiting, room.GameStatus)
	s.False(room.GameStarted)
	s.Equal(model.StartingFEN, room.GameFEN)
}

func (s *DirectorySuite) TestListReturnsSnapshotsOldestFirst() {
	first, err := s.directory.Create(s.ctx, "one", s.creator("p1"))
	s.Require().NoError(err)
	s.clock.Advance(time.Minute)
	second, err := s.directory.Create(s.ctx, "two", s.creator("p2"))
	s.Require().NoError(err)

	rooms, err := s.directory.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rooms, 2)
	s.Equal(first.ID, rooms[0].ID)
	s.Equal(second.ID, rooms[1].ID)

	// Listings are value copies, not live references.
	rooms[0].Players = nil
	again, err := s.directory.Get(s.ctx, first.ID)
	s.Require().NoError(err)
	s.Len(again.Players, 1)
}

func (s *DirectorySuite) TestUpdateUnknownRoom() {
	err := s.directory.Update(s.ctx, "missing", func(*model.Room) error { return nil })
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *DirectorySuite) TestUpdatePersistsMutation() {
	room, err := s.directory.Create(s.ctx, "casual", s.creator("p1"))
	s.Require().NoError(err)

	err = s.directory.Update(s.ctx, room.ID, func(r *model.Room) error {
		r.MoveHistory = append(r.MoveHistory, "e4")
		return nil
	})
	s.Require().NoError(err)

	got, err := s.directory.Get(s.ctx, room.ID)
	s.Require().NoError(err)
	s.Equal([]string{"e4"}, got.MoveHistory)
}

func (s *DirectorySuite) TestUpdateErrorIsReturned() {
	room, err := s.directory.Create(s.ctx, "casual", s.creator("p1"))
	s.Require().NoError(err)

	err = s.directory.Update(s.ctx, room.ID, func(*model.Room) error {
		return model.ErrGameNotStarted
	})
	s.ErrorIs(err, model.ErrGameNotStarted)
}

func (s *DirectorySuite) TestEmptyPlayerListDestroysRoom() {
	room, err := s.directory.Create(s.ctx, "casual", s.creator("p1"))
	s.Require().NoError(err)

	err = s.directory.Update(s.ctx, room.ID, func(r *model.Room) error {
		r.Players = nil
		return nil
	})
	s.Require().NoError(err)

	_, err = s.directory.Get(s.ctx, room.ID)
	s.ErrorIs(err, model.ErrRoomNotFound)

	rooms, err := s.directory.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(rooms)

	err = s.directory.Update(s.ctx, room.ID, func(*model.Room) error { return nil })
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *DirectorySuite) TestDeleteRemovesRoom() {
	room, err := s.directory.Create(s.ctx, "casual", s.creator("p1"))
	s.Require().NoError(err)

	s.directory.Delete(s.ctx, room.ID)

	_, err = s.directory.Get(s.ctx, room.ID)
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *DirectorySuite) TestUpdatesSerialisePerRoom() {
	room, err := s.directory.Create(s.ctx, "casual", s.creator("p1"))
	s.Require().NoError(err)

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_ = s.directory.Update(s.ctx, room.ID, func(r *model.Room) error {
				r.MoveHistory = append(r.MoveHistory, strconv.Itoa(i))
				return nil
			})
		}(i)
	}
	wg.Wait()

	got, err := s.directory.Get(s.ctx, room.ID)
	s.Require().NoError(err)
	s.Len(got.MoveHistory, n)
}

func (s *DirectorySuite) TestDeleteQueuesBehindInFlightUpdate() {
	room, err := s.directory.Create(s.ctx, "contested", s.creator("p1"))
	s.Require().NoError(err)

	entered := make(chan struct{})
	release := make(chan struct{})
	updateErr := make(chan error, 1)
	go func() {
		updateErr <- s.directory.Update(s.ctx, room.ID, func(r *model.Room) error {
			close(entered)
			<-release
			r.Name = "mutated"
			return nil
		})
	}()

	// Delete while the update is still executing; it must wait its turn on
	// the runner rather than tearing the room down underneath the task.
	<-entered
	deleted := make(chan struct{})
	go func() {
		s.directory.Delete(s.ctx, room.ID)
		close(deleted)
	}()

	time.Sleep(10 * time.Millisecond)
	close(release)
	s.Require().NoError(<-updateErr)
	<-deleted

	// The update's save must not have resurrected the room.
	_, err = s.directory.Get(s.ctx, room.ID)
	s.ErrorIs(err, model.ErrRoomNotFound)

	rooms, err := s.directory.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(rooms)

	err = s.directory.Update(s.ctx, room.ID, func(*model.Room) error { return nil })
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *DirectorySuite) TestNotifierFiresOnChanges() {
	var mu sync.Mutex
	fired := 0
	s.directory.SetNotifier(func() {
		mu.Lock()
		fired++
		mu.Unlock()
	})

	room, err := s.directory.Create(s.ctx, "casual", s.creator("p1"))
	s.Require().NoError(err)
	count := func() int {
		mu.Lock()
		defer mu.Unlock()
		return fired
	}
	s.Equal(1, count())

	err = s.directory.Update(s.ctx, room.ID, func(r *model.Room) error {
		r.Name = "renamed"
		return nil
	})
	s.Require().NoError(err)
	s.Equal(2, count())

	s.directory.Delete(s.ctx, room.ID)
	s.Equal(3, count())
}

func (s *DirectorySuite) TestNotifierSkippedOnFailedUpdate() {
	room, err := s.directory.Create(s.ctx, "casual", s.creator("p1"))
	s.Require().NoError(err)

	fired := false
	s.directory.SetNotifier(func() { fired = true })

	err = s.directory.Update(s.ctx, room.ID, func(r *model.Room) error {
		return model.ErrRoomFull
	})
	s.ErrorIs(err, model.ErrRoomFull)
	s.False(fired)
}
