package roommanager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phuhao00/minigames-server/server/internal/model"
	"github.com/phuhao00/minigames-server/server/internal/session"
)

func newTestPlayer(unique uint64) *model.Player {
	return model.NewPlayer(session.Make(0, unique), "acct")
}

func TestCreateRoomMakesCreatorOwner(t *testing.T) {
	m := New()
	p := newTestPlayer(1)
	room, err := m.CreateRoom("den", 4, p)
	require.NoError(t, err)
	assert.Same(t, p, room.Owner())
	assert.Equal(t, 1, m.RoomCount())
}

func TestCreateRoomRejectsDuplicateTitle(t *testing.T) {
	m := New()
	m.CreateRoom("den", 4, newTestPlayer(1))

	_, err := m.CreateRoom("den", 4, newTestPlayer(2))
	assert.ErrorIs(t, err, ErrTitleTaken)
	assert.Equal(t, 1, m.RoomCount())
}

func TestJoinRoomRejectsWhenAlreadySeated(t *testing.T) {
	m := New()
	owner := newTestPlayer(1)
	room, _ := m.CreateRoom("den", 4, owner)

	_, ok := m.JoinRoom(room.ID, owner)
	assert.False(t, ok, "a player already seated cannot join another room")
}

func TestJoinRoomRejectsMissingOrFullRoom(t *testing.T) {
	m := New()
	owner := newTestPlayer(1)
	room, _ := m.CreateRoom("den", 1, owner)

	_, ok := m.JoinRoom(room.ID+999, newTestPlayer(2))
	assert.False(t, ok, "joining a nonexistent room must fail")

	_, ok = m.JoinRoom(room.ID, newTestPlayer(3))
	assert.False(t, ok, "joining a full room must fail")
}

func TestLeaveRoomDeletesEmptyRoom(t *testing.T) {
	m := New()
	owner := newTestPlayer(1)
	room, _ := m.CreateRoom("den", 4, owner)

	require.True(t, m.LeaveRoom(owner))
	_, ok := m.FindRoom(room.ID)
	assert.False(t, ok, "room with no players left must be removed from the directory")
	assert.Equal(t, 0, m.RoomCount())
}

func TestLeaveRoomReassignsOwnerAndKeepsRoomAlive(t *testing.T) {
	m := New()
	owner, other := newTestPlayer(1), newTestPlayer(2)
	room, _ := m.CreateRoom("den", 4, owner)
	_, ok := m.JoinRoom(room.ID, other)
	require.True(t, ok)

	require.True(t, m.LeaveRoom(owner))
	assert.Same(t, other, room.Owner())
	_, stillThere := m.FindRoom(room.ID)
	assert.True(t, stillThere)
}

func TestPlayerToRoomIndexConsistency(t *testing.T) {
	m := New()
	owner := newTestPlayer(1)
	room, _ := m.CreateRoom("den", 4, owner)

	got, ok := m.FindRoomByPlayer(owner)
	require.True(t, ok)
	assert.Same(t, room, got)

	m.LeaveRoom(owner)
	_, ok = m.FindRoomByPlayer(owner)
	assert.False(t, ok, "index must be cleared once the player leaves")
}

func TestRoomListOrderedNewestFirst(t *testing.T) {
	m := New()
	r1, _ := m.CreateRoom("first", 4, newTestPlayer(1))
	r2, _ := m.CreateRoom("second", 4, newTestPlayer(2))

	list := m.RoomList()
	require.Len(t, list, 2)
	assert.Equal(t, r2.ID, list[0].ID)
	assert.Equal(t, r1.ID, list[1].ID)
}

func TestFindRoomByTitle(t *testing.T) {
	m := New()
	m.CreateRoom("unique-title", 4, newTestPlayer(1))
	got, ok := m.FindRoomByTitle("unique-title")
	require.True(t, ok)
	assert.Equal(t, "unique-title", got.Title)

	_, ok = m.FindRoomByTitle("does-not-exist")
	assert.False(t, ok)
}

func TestRemovePlayerEverywhereIsSafeForUnseatedPlayer(t *testing.T) {
	m := New()
	assert.NotPanics(t, func() {
		m.RemovePlayerEverywhere(newTestPlayer(1))
	})
}

func TestTotalPlayerCount(t *testing.T) {
	m := New()
	owner, other := newTestPlayer(1), newTestPlayer(2)
	room, _ := m.CreateRoom("den", 4, owner)
	m.JoinRoom(room.ID, other)
	assert.Equal(t, 2, m.TotalPlayerCount())
}
