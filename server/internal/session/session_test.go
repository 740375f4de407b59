package session

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDPacksSlotAndUniqueIndependently(t *testing.T) {
	id := Make(0xBEEF, 0x0001020304)
	assert.Equal(t, uint16(0xBEEF), id.Slot())
	assert.Equal(t, uint64(0x0001020304), id.Unique())
}

func TestIDUniqueDoesNotBleedIntoSlot(t *testing.T) {
	id := Make(1, uniqueMask)
	assert.Equal(t, uint16(1), id.Slot())
	assert.Equal(t, uniqueMask, id.Unique())
}

func TestIDDistinguishesReusedSlotGenerations(t *testing.T) {
	first := Make(5, 100)
	second := Make(5, 101)
	assert.Equal(t, first.Slot(), second.Slot())
	assert.NotEqual(t, first.Unique(), second.Unique())
	assert.NotEqual(t, first, second)
}

func TestSessionResetAndSendGate(t *testing.T) {
	s := New(1024, 1024)
	c1, c2 := net.Pipe()
	defer c2.Close()
	s.Reset(c1, Make(3, 1))

	require.True(t, s.Valid())
	assert.True(t, s.TryAcquireSend())
	assert.False(t, s.TryAcquireSend(), "a second acquire must fail while the first holds the gate")
	s.ReleaseSend()
	assert.True(t, s.TryAcquireSend(), "releasing must allow a subsequent acquire")

	s.Invalidate()
	assert.False(t, s.Valid())
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "Close must be idempotent")
}
