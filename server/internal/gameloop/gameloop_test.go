package gameloop

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phuhao00/minigames-server/server/internal/eventqueue"
	"github.com/phuhao00/minigames-server/server/internal/protocol"
	"github.com/phuhao00/minigames-server/server/internal/roommanager"
	"github.com/phuhao00/minigames-server/server/internal/session"
)

// fakeSender records outbound bytes per session instead of touching a
// real socket, and treats every session ID it's told about as live.
type fakeSender struct {
	mu    sync.Mutex
	live  map[session.ID]*session.Session
	sent  map[session.ID][][]byte
}

func newFakeSender() *fakeSender {
	return &fakeSender{live: make(map[session.ID]*session.Session), sent: make(map[session.ID][][]byte)}
}

func (f *fakeSender) admit(id session.ID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.live[id] = &session.Session{ID: id}
}

func (f *fakeSender) Session(id session.ID) (*session.Session, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.live[id]
	return s, ok
}

func (f *fakeSender) RequestSend(sess *session.Session, data []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent[sess.ID] = append(f.sent[sess.ID], data)
	return true
}

func (f *fakeSender) lastSent(id session.ID) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.sent[id]
	if len(msgs) == 0 {
		return nil
	}
	return msgs[len(msgs)-1]
}

// lastSentOfType returns the most recent packet of type t sent to id, or
// nil if none was sent. Several handlers now reply with more than one
// packet per request (a result followed by an error), so tests that
// care about a specific message need to pick it out by type rather than
// assume it's the last thing sent.
func (f *fakeSender) lastSentOfType(id session.ID, t protocol.MsgType) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.sent[id]
	for i := len(msgs) - 1; i >= 0; i-- {
		h, err := protocol.ParseHeader(msgs[i])
		if err == nil && h.Type == t {
			return msgs[i]
		}
	}
	return nil
}

func newTestLoop() (*GameLoop, *eventqueue.Queue, *fakeSender, *roommanager.Manager) {
	events := eventqueue.New()
	rooms := roommanager.New()
	sender := newFakeSender()
	loop := New(Config{TickInterval: time.Hour}, events, rooms, sender, nil, nil)
	return loop, events, sender, rooms
}

func connectPlayer(id session.ID, loop *GameLoop, events *eventqueue.Queue, sender *fakeSender) {
	sender.admit(id)
	events.Push(eventqueue.Event{Kind: eventqueue.Connected, SessionID: id})
}

func TestGameLoopCreateAndJoinRoom(t *testing.T) {
	loop, events, sender, rooms := newTestLoop()
	owner := session.Make(1, 1)
	joiner := session.Make(2, 1)
	connectPlayer(owner, loop, events, sender)
	connectPlayer(joiner, loop, events, sender)
	loop.tick()

	createPkt, err := protocol.EncodeCreateRoom("arena", 4)
	require.NoError(t, err)
	events.Push(eventqueue.Event{Kind: eventqueue.Received, SessionID: owner, Data: createPkt})
	loop.tick()

	created, err := protocol.DecodeRoomCreated(sender.lastSent(owner)[protocol.HeaderSize:])
	require.NoError(t, err)
	require.True(t, created.Success)

	joinPkt := protocol.EncodeJoinRoom(created.RoomID)
	events.Push(eventqueue.Event{Kind: eventqueue.Received, SessionID: joiner, Data: joinPkt})
	loop.tick()

	joined, err := protocol.DecodeRoomJoined(sender.lastSent(joiner)[protocol.HeaderSize:])
	require.NoError(t, err)
	assert.True(t, joined.Success)
	assert.Equal(t, 1, rooms.RoomCount())
	assert.Equal(t, 2, rooms.TotalPlayerCount())
}

func TestGameLoopRejectsOversizedRoomRequest(t *testing.T) {
	loop, events, sender, _ := newTestLoop()
	owner := session.Make(1, 1)
	connectPlayer(owner, loop, events, sender)
	loop.tick()

	createPkt, err := protocol.EncodeCreateRoom("", 100)
	require.NoError(t, err)
	events.Push(eventqueue.Event{Kind: eventqueue.Received, SessionID: owner, Data: createPkt})
	loop.tick()

	created, err := protocol.DecodeRoomCreated(sender.lastSentOfType(owner, protocol.MsgRoomCreated)[protocol.HeaderSize:])
	require.NoError(t, err)
	assert.False(t, created.Success, "an empty title with 100 max players must fail validation")
	assert.EqualValues(t, -1, created.RoomID)

	errPkt := sender.lastSentOfType(owner, protocol.MsgError)
	require.NotNil(t, errPkt, "an invalid create_room request must be followed by an error message")
	msg, err := protocol.DecodeError(errPkt[protocol.HeaderSize:])
	require.NoError(t, err)
	assert.Equal(t, "Invalid room parameters", msg)
}

func TestGameLoopRejectsDuplicateRoomTitle(t *testing.T) {
	loop, events, sender, rooms := newTestLoop()
	first := session.Make(1, 1)
	second := session.Make(2, 1)
	connectPlayer(first, loop, events, sender)
	connectPlayer(second, loop, events, sender)
	loop.tick()

	createPkt, _ := protocol.EncodeCreateRoom("arena", 4)
	events.Push(eventqueue.Event{Kind: eventqueue.Received, SessionID: first, Data: createPkt})
	loop.tick()

	events.Push(eventqueue.Event{Kind: eventqueue.Received, SessionID: second, Data: createPkt})
	loop.tick()

	created, err := protocol.DecodeRoomCreated(sender.lastSentOfType(second, protocol.MsgRoomCreated)[protocol.HeaderSize:])
	require.NoError(t, err)
	assert.False(t, created.Success)
	assert.EqualValues(t, -1, created.RoomID)

	errPkt := sender.lastSentOfType(second, protocol.MsgError)
	require.NotNil(t, errPkt)
	msg, err := protocol.DecodeError(errPkt[protocol.HeaderSize:])
	require.NoError(t, err)
	assert.Equal(t, "Room title already exists", msg)
	assert.Equal(t, 1, rooms.RoomCount())
}

func TestGameLoopJoinFailureSendsErrorFollowUp(t *testing.T) {
	loop, events, sender, _ := newTestLoop()
	joiner := session.Make(1, 1)
	connectPlayer(joiner, loop, events, sender)
	loop.tick()

	joinPkt := protocol.EncodeJoinRoom(999)
	events.Push(eventqueue.Event{Kind: eventqueue.Received, SessionID: joiner, Data: joinPkt})
	loop.tick()

	joined, err := protocol.DecodeRoomJoined(sender.lastSentOfType(joiner, protocol.MsgRoomJoined)[protocol.HeaderSize:])
	require.NoError(t, err)
	assert.False(t, joined.Success)

	errPkt := sender.lastSentOfType(joiner, protocol.MsgError)
	require.NotNil(t, errPkt)
	msg, err := protocol.DecodeError(errPkt[protocol.HeaderSize:])
	require.NoError(t, err)
	assert.Equal(t, "Failed to join room", msg)
}

func TestGameLoopDisconnectLeavesRoom(t *testing.T) {
	loop, events, sender, rooms := newTestLoop()
	owner := session.Make(1, 1)
	connectPlayer(owner, loop, events, sender)
	loop.tick()

	createPkt, _ := protocol.EncodeCreateRoom("solo", 4)
	events.Push(eventqueue.Event{Kind: eventqueue.Received, SessionID: owner, Data: createPkt})
	loop.tick()
	require.Equal(t, 1, rooms.RoomCount())

	events.Push(eventqueue.Event{Kind: eventqueue.Disconnected, SessionID: owner})
	loop.tick()
	assert.Equal(t, 0, rooms.RoomCount(), "the only occupant leaving must delete the room")
}

func TestGameLoopReceivedFromUnknownSessionIsIgnored(t *testing.T) {
	loop, events, sender, _ := newTestLoop()
	ghost := session.Make(9, 1)
	pkt := protocol.EncodeRequestRoomList()
	events.Push(eventqueue.Event{Kind: eventqueue.Received, SessionID: ghost, Data: pkt})
	assert.NotPanics(t, func() { loop.tick() })
	assert.Nil(t, sender.lastSent(ghost))
}

func TestGameLoopRequestRoomListReturnsSnapshot(t *testing.T) {
	loop, events, sender, _ := newTestLoop()
	owner := session.Make(1, 1)
	connectPlayer(owner, loop, events, sender)
	loop.tick()

	createPkt, _ := protocol.EncodeCreateRoom("arena", 4)
	events.Push(eventqueue.Event{Kind: eventqueue.Received, SessionID: owner, Data: createPkt})
	loop.tick()

	listPkt := protocol.EncodeRequestRoomList()
	events.Push(eventqueue.Event{Kind: eventqueue.Received, SessionID: owner, Data: listPkt})
	loop.tick()

	rooms, err := protocol.DecodeRoomList(sender.lastSent(owner)[protocol.HeaderSize:])
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "arena", rooms[0].Title)
}
