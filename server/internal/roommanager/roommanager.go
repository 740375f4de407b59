// Package roommanager owns the authoritative set of lobby rooms and the
// index from player to the room they currently occupy. It is the single
// source of truth the game loop consults and mutates on every room
// operation.
package roommanager

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/phuhao00/minigames-server/server/internal/model"
)

// ErrAlreadySeated is returned by CreateRoom when the requesting player
// already occupies a room.
var ErrAlreadySeated = errors.New("roommanager: player already seated in a room")

// ErrTitleTaken is returned by CreateRoom when another live room already
// uses the requested title.
var ErrTitleTaken = errors.New("roommanager: title already in use")

// Manager tracks every live room and a player→room index, guarded by a
// single mutex since room operations are infrequent relative to message
// traffic and always run from the single game-loop goroutine in the
// Centralized architecture — the mutex makes every method safe to call
// from any other goroutine as well.
type Manager struct {
	mu sync.RWMutex

	nextRoomID atomic.Int32

	// roomOrder holds room IDs newest-first, mirroring the recency
	// ordering a room list request expects.
	roomOrder []int32
	rooms     map[int32]*model.Room
	playerLoc map[*model.Player]int32
}

// New returns an empty Manager.
func New() *Manager {
	return &Manager{
		rooms:     make(map[int32]*model.Room),
		playerLoc: make(map[*model.Player]int32),
	}
}

// CreateRoom allocates a new room, adds it to the directory, and joins
// the given player to it as its owner. It fails if owner already
// occupies a room or title collides with another live room's.
func (m *Manager) CreateRoom(title string, maxPlayers int32, owner *model.Player) (*model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, already := m.playerLoc[owner]; already {
		return nil, ErrAlreadySeated
	}
	for _, id := range m.roomOrder {
		if m.rooms[id].Title == title {
			return nil, ErrTitleTaken
		}
	}

	id := m.nextRoomID.Add(1)
	room := model.NewRoom(id, title, maxPlayers)
	room.AddPlayer(owner)

	m.rooms[id] = room
	m.roomOrder = append([]int32{id}, m.roomOrder...)
	m.playerLoc[owner] = id
	return room, nil
}

// JoinRoom adds player to the room named by roomID, rejecting the
// request if the room doesn't exist, is full, or the player is already
// seated somewhere.
func (m *Manager) JoinRoom(roomID int32, player *model.Player) (*model.Room, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, already := m.playerLoc[player]; already {
		return nil, false
	}
	room, ok := m.rooms[roomID]
	if !ok || !room.AddPlayer(player) {
		return nil, false
	}
	m.playerLoc[player] = roomID
	return room, true
}

// LeaveRoom removes player from whatever room they currently occupy. The
// room is deleted from the directory if that leaves it empty. Reports
// whether the player was actually seated anywhere.
func (m *Manager) LeaveRoom(player *model.Player) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.leaveLocked(player)
}

func (m *Manager) leaveLocked(player *model.Player) bool {
	roomID, ok := m.playerLoc[player]
	if !ok {
		return false
	}
	room := m.rooms[roomID]
	room.RemovePlayer(player)
	delete(m.playerLoc, player)
	if room.IsEmpty() {
		m.deleteRoomLocked(roomID)
	}
	return true
}

func (m *Manager) deleteRoomLocked(roomID int32) {
	delete(m.rooms, roomID)
	for i, id := range m.roomOrder {
		if id == roomID {
			m.roomOrder = append(m.roomOrder[:i], m.roomOrder[i+1:]...)
			break
		}
	}
}

// FindRoom looks up a room by ID.
func (m *Manager) FindRoom(roomID int32) (*model.Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[roomID]
	return r, ok
}

// FindRoomByTitle looks up the first room matching title exactly.
func (m *Manager) FindRoomByTitle(title string) (*model.Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.roomOrder {
		if r := m.rooms[id]; r.Title == title {
			return r, true
		}
	}
	return nil, false
}

// FindRoomByPlayer reports the room the given player currently occupies,
// if any.
func (m *Manager) FindRoomByPlayer(player *model.Player) (*model.Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	roomID, ok := m.playerLoc[player]
	if !ok {
		return nil, false
	}
	return m.rooms[roomID], true
}

// RoomList returns a snapshot of every room, newest first.
func (m *Manager) RoomList() []*model.Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Room, 0, len(m.roomOrder))
	for _, id := range m.roomOrder {
		out = append(out, m.rooms[id])
	}
	return out
}

// RoomCount reports the number of live rooms.
func (m *Manager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// TotalPlayerCount reports the number of players currently seated in any
// room.
func (m *Manager) TotalPlayerCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.playerLoc)
}

// RemovePlayerEverywhere is a disconnect-time convenience: it removes
// the player from their room (if any) exactly as LeaveRoom would. It is
// safe to call for a player who is not seated anywhere.
func (m *Manager) RemovePlayerEverywhere(player *model.Player) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaveLocked(player)
}
