package memory

import (
	"context"
	"sync"

	"github.com/chessrooms/chessrooms-go/internal/model"
	"github.com/chessrooms/chessrooms-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	playerNames map[model.PlayerID]string
	nameIndex   map[string]model.PlayerID
	rooms       map[model.RoomID]*model.Room
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		playerNames: make(map[model.PlayerID]string),
		nameIndex:   make(map[string]model.PlayerID),
		rooms:       make(map[model.RoomID]*model.Room),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayerName(ctx context.Context, id model.PlayerID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.playerNames[id]; ok && s.nameIndex[prev] == id {
		delete(s.nameIndex, prev)
	}
	s.playerNames[id] = name
	s.nameIndex[name] = id
	return nil
}

func (s *Storage) GetPlayerName(ctx context.Context, id model.PlayerID) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.playerNames[id]
	if !ok {
		return "", model.ErrPlayerNotFound
	}
	return name, nil
}

func (s *Storage) GetPlayerByName(ctx context.Context, name string) (model.PlayerID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.nameIndex[name]
	if !ok {
		return "", model.ErrPlayerNotFound
	}
	return id, nil
}

// Room operations
//
// Rooms are stored and served as value copies: the authoritative room lives
// with its runner, and readers must never observe its fields mid-mutation.

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	snapshot := room.Snapshot()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = &snapshot
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	snapshot := room.Snapshot()
	return &snapshot, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
	return nil
}

func (s *Storage) ListRooms(ctx context.Context) ([]*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rooms := make([]*model.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		snapshot := room.Snapshot()
		rooms = append(rooms, &snapshot)
	}
	return rooms, nil
}
