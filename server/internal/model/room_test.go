package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phuhao00/minigames-server/server/internal/session"
)

func newTestPlayer(unique uint64) *Player {
	return NewPlayer(session.Make(0, unique), "acct")
}

func TestRoomOwnerIsFirstJoiner(t *testing.T) {
	r := NewRoom(1, "test", 4)
	p1, p2 := newTestPlayer(1), newTestPlayer(2)
	require.True(t, r.AddPlayer(p1))
	require.True(t, r.AddPlayer(p2))
	assert.Same(t, p1, r.Owner())
}

func TestRoomOwnershipPassesOnLeave(t *testing.T) {
	r := NewRoom(1, "test", 4)
	p1, p2, p3 := newTestPlayer(1), newTestPlayer(2), newTestPlayer(3)
	r.AddPlayer(p1)
	r.AddPlayer(p2)
	r.AddPlayer(p3)

	require.True(t, r.RemovePlayer(p1))
	assert.Same(t, p2, r.Owner())

	require.True(t, r.RemovePlayer(p2))
	assert.Same(t, p3, r.Owner())

	require.True(t, r.RemovePlayer(p3))
	assert.Nil(t, r.Owner())
	assert.True(t, r.IsEmpty())
}

func TestRoomRejectsJoinWhenFull(t *testing.T) {
	r := NewRoom(1, "test", 1)
	p1, p2 := newTestPlayer(1), newTestPlayer(2)
	require.True(t, r.AddPlayer(p1))
	assert.False(t, r.AddPlayer(p2))
	assert.True(t, r.IsFull())
	assert.Equal(t, StatusWaiting, r.Status(), "a full room still reports Waiting since no game has started")
}

func TestRoomRejectsDuplicateJoin(t *testing.T) {
	r := NewRoom(1, "test", 4)
	p1 := newTestPlayer(1)
	require.True(t, r.AddPlayer(p1))
	assert.False(t, r.AddPlayer(p1))
	assert.Equal(t, int32(1), r.CurrentPlayers())
}

func TestRoomRemoveNonMemberIsNoop(t *testing.T) {
	r := NewRoom(1, "test", 4)
	p1, p2 := newTestPlayer(1), newTestPlayer(2)
	r.AddPlayer(p1)
	assert.False(t, r.RemovePlayer(p2))
	assert.Equal(t, int32(1), r.CurrentPlayers())
}
