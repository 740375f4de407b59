package ioengine

import (
	"net"

	"github.com/phuhao00/minigames-server/server/internal/eventqueue"
	"github.com/phuhao00/minigames-server/server/internal/protocol"
	"github.com/phuhao00/minigames-server/server/internal/session"
)

// postRecv issues the next asynchronous read for sess. The actual
// blocking Read happens in a transient goroutine standing in for the
// kernel completing an overlapped read; its result is funneled back
// through the shared completion channel exactly like a real completion
// port delivers to whichever worker thread picks it up.
func (e *Engine) postRecv(sess *session.Session) {
	first, _ := sess.RecvRing.WritePtrs()
	if first == nil {
		// The peer has sent more data than fits in the ring without a
		// complete, parseable message — treat it as a protocol
		// violation rather than growing the ring unboundedly.
		e.teardown(sess, errProtocolViolation)
		return
	}
	req := sess.RecvReq
	go func() {
		n, err := sess.Conn.Read(first)
		select {
		case e.completions <- completion{req: req, n: n, err: err}:
		case <-e.quit:
		}
	}()
}

func (e *Engine) processRecv(sess *session.Session, c completion) {
	if c.err != nil || c.n == 0 {
		e.teardown(sess, c.err)
		return
	}
	sess.RecvRing.MoveWrite(c.n)
	e.instr.BytesReceived(c.n)

	if !e.drainPackets(sess) {
		return // teardown already happened on a framing violation
	}
	if sess.Valid() {
		e.postRecv(sess)
	}
}

// drainPackets pulls every complete, framed packet currently buffered in
// sess's receive ring and publishes it as a Received event. Returns
// false if the session was torn down mid-drain.
func (e *Engine) drainPackets(sess *session.Session) bool {
	var header [protocol.HeaderSize]byte
	for {
		if sess.RecvRing.Peek(header[:]) == 0 {
			return true // not even a full header buffered yet
		}
		h, err := protocol.ParseHeader(header[:])
		if err != nil {
			e.instr.PacketDropped()
			e.teardown(sess, errProtocolViolation)
			return false
		}
		if sess.RecvRing.DataSize() < int(h.Size) {
			return true // header seen, payload still incomplete
		}
		packet := make([]byte, h.Size)
		sess.RecvRing.Dequeue(packet)
		e.instr.PacketReceived()
		e.events.Push(eventqueue.Event{Kind: eventqueue.Received, SessionID: sess.ID, Data: packet})
	}
}

// postSend issues (or re-issues) the vectored write draining sess's send
// ring. Callers must already hold the session's one-in-flight send gate.
func (e *Engine) postSend(sess *session.Session) {
	view := sess.SendRing.SendView()
	if view.DataSize == 0 {
		sess.ReleaseSend()
		// A producer may have enqueued between our snapshot and the
		// release above; re-check and reclaim the gate so that
		// message isn't stranded until the next unrelated send.
		if sess.SendRing.DataSize() > 0 && sess.TryAcquireSend() {
			e.postSend(sess)
		}
		return
	}

	bufs := make(net.Buffers, 0, 2)
	if view.First != nil {
		bufs = append(bufs, view.First)
	}
	if view.Second != nil {
		bufs = append(bufs, view.Second)
	}
	req := sess.SendReq
	go func() {
		n, err := bufs.WriteTo(sess.Conn)
		select {
		case e.completions <- completion{req: req, n: int(n), err: err}:
		case <-e.quit:
		}
	}()
}

func (e *Engine) processSend(sess *session.Session, c completion) {
	if c.err != nil {
		e.teardown(sess, c.err)
		return
	}
	sess.SendRing.Consume(c.n)
	e.instr.BytesSent(c.n)
	e.postSend(sess)
}
