// Package ioengine is the network I/O core: an acceptor goroutine plus a
// fixed pool of worker goroutines draining a completion channel, mirroring
// the shape of an IOCP completion-port server with Go's netpoller standing
// in for the kernel's asynchronous I/O. Each session owns a receive ring
// and a send ring; the engine's only job is to keep bytes flowing between
// sockets and rings and to report framed packets into an event queue for
// the game loop to consume.
package ioengine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/phuhao00/minigames-server/server/internal/eventqueue"
	"github.com/phuhao00/minigames-server/server/internal/session"
)

var errSlotsExhausted = errors.New("ioengine: no free session slots")

// completion is the adapted stand-in for an IOCP completion packet: which
// session and operation it refers to, how many bytes moved, and whether
// the underlying I/O failed.
type completion struct {
	req session.Request
	n   int
	err error
}

// Instruments is the subset of metrics the engine reports into. It is an
// interface so the engine's tests don't need the full metrics stack.
type Instruments interface {
	SessionAccepted()
	SessionTornDown()
	BytesReceived(n int)
	BytesSent(n int)
	PacketReceived()
	PacketDropped()
}

// NoopInstruments discards everything, for callers that don't care.
type NoopInstruments struct{}

func (NoopInstruments) SessionAccepted()     {}
func (NoopInstruments) SessionTornDown()     {}
func (NoopInstruments) BytesReceived(int)    {}
func (NoopInstruments) BytesSent(int)        {}
func (NoopInstruments) PacketReceived()      {}
func (NoopInstruments) PacketDropped()       {}

// Config controls the engine's capacity and concurrency.
type Config struct {
	MaxSessions int
	WorkerCount int
	RecvRing    int
	SendRing    int
}

func (c Config) withDefaults() Config {
	if c.MaxSessions <= 0 {
		c.MaxSessions = 1000
	}
	if c.WorkerCount <= 0 {
		c.WorkerCount = 2 * runtime.GOMAXPROCS(0)
	}
	if c.RecvRing <= 0 {
		c.RecvRing = session.DefaultRingSize
	}
	if c.SendRing <= 0 {
		c.SendRing = session.DefaultRingSize
	}
	return c
}

// Engine owns the session table, the acceptor, and the worker pool.
type Engine struct {
	cfg    Config
	log    *slog.Logger
	events *eventqueue.Queue
	instr  Instruments

	sessions  []*session.Session
	uniqueCtr []atomic.Uint64
	freeSlots chan uint16

	// pendingDisconnect queues slots freed by teardown, which can run on
	// any worker goroutine. Only acceptLoop drains it into freeSlots, so
	// index reuse is always sequenced after the acceptor observes the
	// prior occupant's teardown — no new session can be handed a slot
	// a stale I/O goroutine might still be touching.
	pendingDisconnect chan uint16

	completions chan completion
	quit        chan struct{}
	wg          sync.WaitGroup

	mu       sync.Mutex
	listener net.Listener
	running  atomic.Bool
}

// New builds an Engine with a session table sized to cfg.MaxSessions.
// The engine does not start listening until Start is called.
func New(cfg Config, events *eventqueue.Queue, instr Instruments, log *slog.Logger) *Engine {
	cfg = cfg.withDefaults()
	if instr == nil {
		instr = NoopInstruments{}
	}
	e := &Engine{
		cfg:               cfg,
		log:               log,
		events:            events,
		instr:             instr,
		sessions:          make([]*session.Session, cfg.MaxSessions),
		uniqueCtr:         make([]atomic.Uint64, cfg.MaxSessions),
		freeSlots:         make(chan uint16, cfg.MaxSessions),
		pendingDisconnect: make(chan uint16, cfg.MaxSessions),
		completions:       make(chan completion, cfg.WorkerCount*4),
		quit:              make(chan struct{}),
	}
	for i := 0; i < cfg.MaxSessions; i++ {
		e.sessions[i] = session.New(cfg.RecvRing, cfg.SendRing)
		e.freeSlots <- uint16(i)
	}
	return e
}

// Start binds addr and begins accepting connections, spawning the worker
// pool that drains completions.
func (e *Engine) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("ioengine: listen %s: %w", addr, err)
	}
	e.mu.Lock()
	e.listener = ln
	e.mu.Unlock()
	e.running.Store(true)

	for i := 0; i < e.cfg.WorkerCount; i++ {
		e.wg.Add(1)
		go e.workerLoop()
	}

	e.wg.Add(1)
	go e.acceptLoop()

	if e.log != nil {
		e.log.Info("ioengine started", "addr", ln.Addr().String(), "workers", e.cfg.WorkerCount)
	}
	return nil
}

// Addr reports the listener's bound address. Only meaningful after Start
// returns successfully.
func (e *Engine) Addr() net.Addr {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listener == nil {
		return nil
	}
	return e.listener.Addr()
}

// Stop closes the listener, tears down every live session, and waits for
// the worker pool and acceptor to exit, bounded by ctx.
func (e *Engine) Stop(ctx context.Context) error {
	if !e.running.CompareAndSwap(true, false) {
		return nil
	}
	e.mu.Lock()
	ln := e.listener
	e.mu.Unlock()
	if ln != nil {
		_ = ln.Close()
	}

	for _, sess := range e.sessions {
		if sess.Valid() {
			e.teardown(sess, nil)
		}
	}

	close(e.quit)

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) acceptLoop() {
	defer e.wg.Done()
	for {
		e.reclaimPendingDisconnects()
		conn, err := e.listener.Accept()
		if err != nil {
			select {
			case <-e.quit:
				return
			default:
			}
			if e.log != nil {
				e.log.Warn("accept failed", "error", err)
			}
			return
		}
		if err := e.admit(conn); err != nil {
			if e.log != nil {
				e.log.Warn("rejecting connection", "remote", conn.RemoteAddr(), "error", err)
			}
			_ = conn.Close()
		}
	}
}

// reclaimPendingDisconnects drains slots teardown staged from any
// worker goroutine, pushing each onto freeSlots. Called only from
// acceptLoop, so pendingDisconnect has exactly one reader and freeSlots
// is handed out and refilled by that one goroutine.
func (e *Engine) reclaimPendingDisconnects() {
	for {
		select {
		case slot := <-e.pendingDisconnect:
			e.freeSlots <- slot
		default:
			return
		}
	}
}

func (e *Engine) admit(conn net.Conn) error {
	// Linger 0 makes every later close abortive (RST), including the
	// close of a connection rejected for lack of a free slot.
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetLinger(0)
	}

	var slot uint16
	select {
	case slot = <-e.freeSlots:
	default:
		return errSlotsExhausted
	}

	unique := e.uniqueCtr[slot].Add(1)
	id := session.Make(slot, unique)
	sess := e.sessions[slot]
	sess.Reset(conn, id)

	e.instr.SessionAccepted()
	e.events.Push(eventqueue.Event{Kind: eventqueue.Connected, SessionID: id})
	e.postRecv(sess)
	return nil
}

func (e *Engine) workerLoop() {
	defer e.wg.Done()
	for {
		select {
		case <-e.quit:
			return
		case c := <-e.completions:
			e.dispatch(c)
		}
	}
}

func (e *Engine) dispatch(c completion) {
	slot := c.req.ID.Slot()
	if int(slot) >= len(e.sessions) {
		return
	}
	sess := e.sessions[slot]
	if sess.ID != c.req.ID || !sess.Valid() {
		// Stale completion for an occupant that has since torn down
		// or been replaced by slot reuse; drop it.
		return
	}
	switch c.req.Op {
	case session.OpRecv:
		e.processRecv(sess, c)
	case session.OpSend:
		e.processSend(sess, c)
	}
}

// Session looks up the live session behind id, applying the same
// slot-plus-unique-counter check the completion dispatcher uses so a
// caller can never be handed a stale or since-reused occupant.
func (e *Engine) Session(id session.ID) (*session.Session, bool) {
	slot := id.Slot()
	if int(slot) >= len(e.sessions) {
		return nil, false
	}
	sess := e.sessions[slot]
	if sess.ID != id || !sess.Valid() {
		return nil, false
	}
	return sess, true
}

// RequestSend enqueues data onto a session's send ring and ensures a
// drain is in flight. Safe to call from any goroutine.
func (e *Engine) RequestSend(sess *session.Session, data []byte) bool {
	if !sess.Valid() {
		return false
	}
	if sess.SendRing.Enqueue(data) == 0 {
		return false
	}
	if sess.TryAcquireSend() {
		e.postSend(sess)
	}
	return true
}
