package game

import (
	"sync"

	"github.com/google/uuid"
)

// RoomStore is the directory of live rooms. Every operation holds the lock
// only across the single map mutation; nothing under the lock touches
// room-internal state.
type RoomStore struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]*Room
}

func NewRoomStore() *RoomStore {
	return &RoomStore{
		rooms: make(map[uuid.UUID]*Room),
	}
}

// Add stores room under a freshly generated random id and returns the id.
// The id space makes collisions a non-issue; an accidental collision would
// overwrite, not error.
func (s *RoomStore) Add(room *Room) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	room.ID = id
	s.rooms[id] = room
	return id
}

func (s *RoomStore) Get(id uuid.UUID) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, exists := s.rooms[id]
	return r, exists
}

// Delete removes the room if present. Deleting an absent id is a no-op.
func (s *RoomStore) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
}
