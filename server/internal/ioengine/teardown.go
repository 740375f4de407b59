package ioengine

import (
	"errors"

	"github.com/phuhao00/minigames-server/server/internal/eventqueue"
	"github.com/phuhao00/minigames-server/server/internal/session"
)

var errProtocolViolation = errors.New("ioengine: malformed or oversized packet")

// teardown retires sess's current occupancy: it is idempotent, since a
// session can fail its recv and send paths independently at nearly the
// same moment and both paths call teardown on error.
func (e *Engine) teardown(sess *session.Session, cause error) {
	if !sess.Invalidate() {
		return // another goroutine is already tearing this session down
	}
	_ = sess.Close()
	e.instr.SessionTornDown()
	e.events.Push(eventqueue.Event{Kind: eventqueue.Disconnected, SessionID: sess.ID})
	if e.log != nil && cause != nil {
		e.log.Debug("session torn down", "session_id", uint64(sess.ID), "cause", cause)
	}
	e.pendingDisconnect <- sess.ID.Slot()
}
