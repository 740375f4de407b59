// Package metrics exposes the server's runtime counters and gauges
// through an OpenTelemetry meter backed by a Prometheus exporter,
// surfaced on a small HTTP server alongside a liveness endpoint.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Instruments is the fixed set of counters and gauges the I/O engine and
// game loop report into.
type Instruments struct {
	ActiveSessions     metric.Int64UpDownCounter
	SessionsAccepted   metric.Int64Counter
	SessionsTornDown   metric.Int64Counter
	BytesReceived      metric.Int64Counter
	BytesSent          metric.Int64Counter
	PacketsReceived    metric.Int64Counter
	PacketsDropped     metric.Int64Counter
	ActiveRooms        metric.Int64UpDownCounter
	SeatedPlayers      metric.Int64UpDownCounter
	GameLoopTickMicros metric.Int64Histogram
}

// Server bundles the meter provider, its Prometheus exporter, and the
// HTTP endpoints that serve /metrics and /healthz.
type Server struct {
	provider *sdkmetric.MeterProvider
	http     *http.Server
	Instr    Instruments
}

// New builds the meter provider and instrument set, and prepares (but
// does not start) the HTTP server that will expose them at addr.
func New(addr string) (*Server, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("metrics: new prometheus exporter: %w", err)
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter("minigames-server")

	instr, err := newInstruments(meter)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &Server{
		provider: provider,
		http:     &http.Server{Addr: addr, Handler: mux},
		Instr:    instr,
	}, nil
}

func newInstruments(meter metric.Meter) (Instruments, error) {
	var instr Instruments
	var err error

	if instr.ActiveSessions, err = meter.Int64UpDownCounter("sessions_active",
		metric.WithDescription("Number of currently established sessions")); err != nil {
		return instr, err
	}
	if instr.SessionsAccepted, err = meter.Int64Counter("sessions_accepted_total",
		metric.WithDescription("Total number of sessions accepted since startup")); err != nil {
		return instr, err
	}
	if instr.SessionsTornDown, err = meter.Int64Counter("sessions_torn_down_total",
		metric.WithDescription("Total number of sessions torn down since startup")); err != nil {
		return instr, err
	}
	if instr.BytesReceived, err = meter.Int64Counter("bytes_received_total",
		metric.WithDescription("Total bytes received from clients")); err != nil {
		return instr, err
	}
	if instr.BytesSent, err = meter.Int64Counter("bytes_sent_total",
		metric.WithDescription("Total bytes sent to clients")); err != nil {
		return instr, err
	}
	if instr.PacketsReceived, err = meter.Int64Counter("packets_received_total",
		metric.WithDescription("Total well-formed packets parsed from clients")); err != nil {
		return instr, err
	}
	if instr.PacketsDropped, err = meter.Int64Counter("packets_dropped_total",
		metric.WithDescription("Total packets rejected for protocol violations")); err != nil {
		return instr, err
	}
	if instr.ActiveRooms, err = meter.Int64UpDownCounter("rooms_active",
		metric.WithDescription("Number of currently open rooms")); err != nil {
		return instr, err
	}
	if instr.SeatedPlayers, err = meter.Int64UpDownCounter("players_seated",
		metric.WithDescription("Number of players currently seated in a room")); err != nil {
		return instr, err
	}
	if instr.GameLoopTickMicros, err = meter.Int64Histogram("gameloop_tick_duration_microseconds",
		metric.WithDescription("Wall-clock duration of each game loop tick")); err != nil {
		return instr, err
	}
	return instr, nil
}

// Start runs the HTTP server until it is shut down, returning nil on a
// clean Stop.
func (s *Server) Start() error {
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts down the HTTP server and the meter provider.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return s.provider.Shutdown(shutdownCtx)
}
