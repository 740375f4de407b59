// Package bootstrap wires the engine, game loop, and metrics server
// together behind a single graceful-shutdown coordinator, so main can
// stay a thin list of "build this, start that, wait, tear down".
package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"github.com/phuhao00/minigames-server/server/internal/config"
	"github.com/phuhao00/minigames-server/server/internal/eventqueue"
	"github.com/phuhao00/minigames-server/server/internal/gameloop"
	"github.com/phuhao00/minigames-server/server/internal/ioengine"
	"github.com/phuhao00/minigames-server/server/internal/metrics"
	"github.com/phuhao00/minigames-server/server/internal/roommanager"
)

// Server is the fully assembled process: I/O engine, game loop, and
// metrics/health HTTP surface.
type Server struct {
	log     *slog.Logger
	engine  *ioengine.Engine
	loop    *gameloop.GameLoop
	metrics *metrics.Server

	loopCancel context.CancelFunc
	loopDone   chan struct{}
}

// Build assembles a Server from configuration without starting anything.
func Build(cfg config.Config, log *slog.Logger) (*Server, error) {
	metricsSrv, err := metrics.New(cfg.Observability.MetricsAddr)
	if err != nil {
		return nil, err
	}

	events := eventqueue.New()
	rooms := roommanager.New()

	engine := ioengine.New(ioengine.Config{
		MaxSessions: cfg.Network.MaxSessions,
		WorkerCount: cfg.Network.WorkerCount,
		RecvRing:    cfg.Network.RecvRingBytes,
		SendRing:    cfg.Network.SendRingBytes,
	}, events, engineInstruments{&metricsSrv.Instr}, log)

	loop := gameloop.New(gameloop.Config{
		TickInterval: time.Duration(cfg.Game.TickIntervalMs) * time.Millisecond,
	}, events, rooms, engine, log, newTickInstruments(&metricsSrv.Instr))

	return &Server{
		log:     log,
		engine:  engine,
		loop:    loop,
		metrics: metricsSrv,
	}, nil
}

// Start brings up the metrics server, the I/O engine's listener, and the
// game loop's tick goroutine.
func (s *Server) Start(addr string) error {
	go func() {
		if err := s.metrics.Start(); err != nil && s.log != nil {
			s.log.Error("metrics server exited", "error", err)
		}
	}()

	if err := s.engine.Start(addr); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.loopCancel = cancel
	s.loopDone = make(chan struct{})
	go func() {
		s.loop.Run(ctx)
		close(s.loopDone)
	}()
	return nil
}

// Stop tears everything down in the reverse order it was started,
// bounded by ctx.
func (s *Server) Stop(ctx context.Context) error {
	if s.loopCancel != nil {
		s.loopCancel()
		select {
		case <-s.loopDone:
		case <-ctx.Done():
		}
	}
	if err := s.engine.Stop(ctx); err != nil {
		return err
	}
	return s.metrics.Stop(ctx)
}
