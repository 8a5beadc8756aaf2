// Package directory owns the set of live rooms. Every mutation of a room's
// fields runs on that room's exclusive owner goroutine, so handlers never
// interleave mid-execution and no lock is held around room state.
package directory

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/chessrooms/chessrooms-go/internal/dependencies/clock"
	"github.com/chessrooms/chessrooms-go/internal/model"
	"github.com/chessrooms/chessrooms-go/internal/storage"
)

// Directory creates, lists and destroys rooms, and serialises access to each
// room through its runner.
type Directory struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger

	mu      sync.RWMutex
	runners map[model.RoomID]*runner

	notifyMu sync.RWMutex
	notify   func()
}

// runner is the exclusive owner of one room's mutable state.
type runner struct {
	room  *model.Room
	tasks chan task
	quit  chan struct{}
}

type task struct {
	fn   func(*model.Room) error
	done chan error
}

// New creates a new Directory
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Directory {
	return &Directory{
		storage: storage,
		clock:   clock,
		logger:  logger.With(slog.String("component", "directory")),
		runners: make(map[model.RoomID]*runner),
	}
}

// SetNotifier registers a callback invoked after any change to the room set
// or a room's listed state. The callback must not block; it runs on whichever
// goroutine performed the change.
func (d *Directory) SetNotifier(fn func()) {
	d.notifyMu.Lock()
	d.notify = fn
	d.notifyMu.Unlock()
}

func (d *Directory) notifyChanged() {
	d.notifyMu.RLock()
	fn := d.notify
	d.notifyMu.RUnlock()
	if fn != nil {
		fn()
	}
}

// Create allocates a fresh room with the creator seated as white and starts
// its runner. Returns a snapshot of the new room.
func (d *Directory) Create(ctx context.Context, name string, creator model.Player) (model.Room, error) {
	room := model.NewRoom(model.RoomID(uuid.NewString()), name, creator, d.clock.Now())

	if err := d.storage.SaveRoom(ctx, room); err != nil {
		return model.Room{}, err
	}

	r := &runner{
		room:  room,
		tasks: make(chan task),
		quit:  make(chan struct{}),
	}

	d.mu.Lock()
	d.runners[room.ID] = r
	d.mu.Unlock()

	go d.run(r)

	d.logger.Info("room created",
		slog.String("room_id", string(room.ID)),
		slog.String("name", room.Name),
		slog.String("creator", string(creator.ID)))

	d.notifyChanged()
	return room.Snapshot(), nil
}

// Get returns a snapshot of a single room.
func (d *Directory) Get(ctx context.Context, id model.RoomID) (*model.Room, error) {
	return d.storage.GetRoom(ctx, id)
}

// List returns value copies of all rooms, oldest first.
func (d *Directory) List(ctx context.Context) ([]*model.Room, error) {
	rooms, err := d.storage.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].CreatedAt.Equal(rooms[j].CreatedAt) {
			return rooms[i].ID < rooms[j].ID
		}
		return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
	})
	return rooms, nil
}

// Update runs fn on the room's owner goroutine, run-to-completion. fn must
// validate before it mutates: when it returns an error the room is assumed
// untouched and nothing is persisted. A room whose player list is empty after
// fn is destroyed before Update returns.
func (d *Directory) Update(ctx context.Context, id model.RoomID, fn func(*model.Room) error) error {
	d.mu.RLock()
	r, ok := d.runners[id]
	d.mu.RUnlock()
	if !ok {
		return model.ErrRoomNotFound
	}

	t := task{fn: fn, done: make(chan error, 1)}
	select {
	case r.tasks <- t:
	case <-r.quit:
		return model.ErrRoomNotFound
	case <-ctx.Done():
		return ctx.Err()
	}

	// Once accepted the runner always replies.
	return <-t.done
}

// Delete empties the room on its owner goroutine, so teardown queues behind
// any update already in flight. Deleting an unknown room is a no-op.
func (d *Directory) Delete(ctx context.Context, id model.RoomID) {
	err := d.Update(ctx, id, func(r *model.Room) error {
		r.Players = nil
		return nil
	})
	if err != nil && !errors.Is(err, model.ErrRoomNotFound) {
		d.logger.Error("room delete failed",
			slog.String("room_id", string(id)),
			slog.Any("error", err))
	}
}

// run is the owner loop for a single room. It exits through teardown when a
// task leaves the player list empty.
func (d *Directory) run(r *runner) {
	ctx := context.Background()
	for t := range r.tasks {
		err := t.fn(r.room)
		if err == nil && len(r.room.Players) == 0 {
			// Spectators alone do not keep a room alive.
			d.teardown(ctx, r)
			t.done <- nil
			return
		}
		if err == nil {
			r.room.UpdatedAt = d.clock.Now()
			if saveErr := d.storage.SaveRoom(ctx, r.room); saveErr != nil {
				d.logger.Error("room save failed",
					slog.String("room_id", string(r.room.ID)),
					slog.Any("error", saveErr))
			}
			d.notifyChanged()
		}
		t.done <- err
	}
}

// teardown removes the room after its final task. It runs on the owner
// goroutine, so no other task can interleave with it and nothing can
// re-persist the room afterwards.
func (d *Directory) teardown(ctx context.Context, r *runner) {
	d.mu.Lock()
	delete(d.runners, r.room.ID)
	d.mu.Unlock()

	// Wakes any caller parked handing this runner a task.
	close(r.quit)

	if err := d.storage.DeleteRoom(ctx, r.room.ID); err != nil {
		d.logger.Error("room delete failed",
			slog.String("room_id", string(r.room.ID)),
			slog.Any("error", err))
	}
	d.logger.Info("room deleted", slog.String("room_id", string(r.room.ID)))
	d.notifyChanged()
}
