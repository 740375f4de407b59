// Package gameloop is the single-threaded consumer of the I/O engine's
// event queue: it owns the player table, drives the room manager, and
// is the only goroutine that ever mutates lobby state. This is the
// Centralized architecture — the one mode with fully specified
// semantics; Partitioned and UnifiedStrand sharding schemes are left
// unimplemented.
package gameloop

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phuhao00/minigames-server/server/internal/eventqueue"
	"github.com/phuhao00/minigames-server/server/internal/model"
	"github.com/phuhao00/minigames-server/server/internal/roommanager"
	"github.com/phuhao00/minigames-server/server/internal/session"
)

// Sender is the subset of the I/O engine the game loop needs: resolving
// a session ID to its live session record, and queuing outbound bytes.
type Sender interface {
	Session(id session.ID) (*session.Session, bool)
	RequestSend(sess *session.Session, data []byte) bool
}

// TickInstruments is the subset of metrics reported once per tick.
type TickInstruments interface {
	ObserveTick(d time.Duration)
	SetActiveRooms(n int64)
	SetSeatedPlayers(n int64)
}

// NoopTickInstruments discards everything.
type NoopTickInstruments struct{}

func (NoopTickInstruments) ObserveTick(time.Duration) {}
func (NoopTickInstruments) SetActiveRooms(int64)       {}
func (NoopTickInstruments) SetSeatedPlayers(int64)     {}

// Config controls loop pacing.
type Config struct {
	TickInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.TickInterval <= 0 {
		c.TickInterval = 50 * time.Millisecond
	}
	return c
}

// GameLoop drains the shared event queue on a fixed tick, applying each
// event to the room manager and player table.
type GameLoop struct {
	cfg    Config
	events *eventqueue.Queue
	rooms  *roommanager.Manager
	sender Sender
	log    *slog.Logger
	instr  TickInstruments

	players map[session.ID]*model.Player
}

// New builds a GameLoop over the given event queue and room manager,
// replying to clients through sender.
func New(cfg Config, events *eventqueue.Queue, rooms *roommanager.Manager, sender Sender, log *slog.Logger, instr TickInstruments) *GameLoop {
	if instr == nil {
		instr = NoopTickInstruments{}
	}
	return &GameLoop{
		cfg:     cfg.withDefaults(),
		events:  events,
		rooms:   rooms,
		sender:  sender,
		log:     log,
		instr:   instr,
		players: make(map[session.ID]*model.Player),
	}
}

// Run drains events on cfg.TickInterval until ctx is cancelled.
func (g *GameLoop) Run(ctx context.Context) {
	ticker := time.NewTicker(g.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.tick()
		}
	}
}

func (g *GameLoop) tick() {
	start := time.Now()
	for {
		ev, ok := g.events.TryPop()
		if !ok {
			break
		}
		g.handle(ev)
	}
	g.instr.SetActiveRooms(int64(g.rooms.RoomCount()))
	g.instr.SetSeatedPlayers(int64(g.rooms.TotalPlayerCount()))
	g.instr.ObserveTick(time.Since(start))
}

func (g *GameLoop) handle(ev eventqueue.Event) {
	switch ev.Kind {
	case eventqueue.Connected:
		g.onConnected(ev.SessionID)
	case eventqueue.Disconnected:
		g.onDisconnected(ev.SessionID)
	case eventqueue.Received:
		g.onReceived(ev.SessionID, ev.Data)
	}
}

func (g *GameLoop) onConnected(id session.ID) {
	g.players[id] = model.NewPlayer(id, uuid.NewString())
	if g.log != nil {
		g.log.Debug("player connected", "session_id", uint64(id))
	}
}

func (g *GameLoop) onDisconnected(id session.ID) {
	if p, ok := g.players[id]; ok {
		g.rooms.RemovePlayerEverywhere(p)
		delete(g.players, id)
	}
	if g.log != nil {
		g.log.Debug("player disconnected", "session_id", uint64(id))
	}
}
