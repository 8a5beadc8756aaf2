package storage

import (
	"context"

	"github.com/chessrooms/chessrooms-go/internal/model"
)

// Storage defines the interface for the server's volatile state. Everything
// behind it lives for the process lifetime only; there is deliberately no
// durable backend.
type Storage interface {
	// Player operations. Display names are keyed by stable identity and
	// indexed by name for invitation lookup.
	SavePlayerName(ctx context.Context, id model.PlayerID, name string) error
	GetPlayerName(ctx context.Context, id model.PlayerID) (string, error)
	GetPlayerByName(ctx context.Context, name string) (model.PlayerID, error)

	// Room operations. Implementations store and return value copies so
	// readers never alias a room owned by its runner.
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error)
	DeleteRoom(ctx context.Context, id model.RoomID) error
	ListRooms(ctx context.Context) ([]*model.Room, error)
}
