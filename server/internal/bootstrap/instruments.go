package bootstrap

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/phuhao00/minigames-server/server/internal/metrics"
)

// engineInstruments adapts the otel-backed metrics.Instruments to the
// small interface ioengine.Engine depends on, so that package doesn't
// need to import the metrics stack directly.
type engineInstruments struct {
	m *metrics.Instruments
}

func (e engineInstruments) SessionAccepted() { e.m.ActiveSessions.Add(context.Background(), 1); e.m.SessionsAccepted.Add(context.Background(), 1) }
func (e engineInstruments) SessionTornDown() { e.m.ActiveSessions.Add(context.Background(), -1); e.m.SessionsTornDown.Add(context.Background(), 1) }
func (e engineInstruments) BytesReceived(n int) { e.m.BytesReceived.Add(context.Background(), int64(n)) }
func (e engineInstruments) BytesSent(n int)     { e.m.BytesSent.Add(context.Background(), int64(n)) }
func (e engineInstruments) PacketReceived()     { e.m.PacketsReceived.Add(context.Background(), 1) }
func (e engineInstruments) PacketDropped()      { e.m.PacketsDropped.Add(context.Background(), 1) }

// tickInstruments adapts metrics.Instruments to gameloop's
// TickInstruments. ActiveRooms and SeatedPlayers are UpDownCounters, so
// this type tracks the last value it reported to translate the game
// loop's absolute counts into the deltas the instrument expects.
type tickInstruments struct {
	m           *metrics.Instruments
	lastRooms   atomic.Int64
	lastPlayers atomic.Int64
}

func newTickInstruments(m *metrics.Instruments) *tickInstruments {
	return &tickInstruments{m: m}
}

func (t *tickInstruments) ObserveTick(d time.Duration) {
	t.m.GameLoopTickMicros.Record(context.Background(), d.Microseconds())
}

func (t *tickInstruments) SetActiveRooms(n int64) {
	t.m.ActiveRooms.Add(context.Background(), n-t.lastRooms.Swap(n))
}

func (t *tickInstruments) SetSeatedPlayers(n int64) {
	t.m.SeatedPlayers.Add(context.Background(), n-t.lastPlayers.Swap(n))
}
