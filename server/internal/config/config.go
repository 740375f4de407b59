// Package config loads the server's JSON configuration file, following
// the same load-once/get-singleton shape the rest of the ambient stack
// uses for shared, rarely-changing state.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// NetworkConfig controls the I/O engine.
type NetworkConfig struct {
	ListenAddr      string `json:"listen_addr"`
	MaxSessions     int    `json:"max_sessions"`
	WorkerCount     int    `json:"worker_count"`
	RecvRingBytes   int    `json:"recv_ring_bytes"`
	SendRingBytes   int    `json:"send_ring_bytes"`
}

// GameConfig controls lobby tick pacing. Room capacity is a fixed
// protocol bound ([2,10] players), not an operator-configurable value.
type GameConfig struct {
	TickIntervalMs int `json:"tick_interval_ms"`
}

// ObservabilityConfig controls the metrics/health HTTP surface.
type ObservabilityConfig struct {
	MetricsAddr string `json:"metrics_addr"`
	LogLevel    string `json:"log_level"`
	LogJSON     bool   `json:"log_json"`
}

// Config is the top-level server configuration document.
type Config struct {
	Network       NetworkConfig       `json:"network"`
	Game          GameConfig          `json:"game"`
	Observability ObservabilityConfig `json:"observability"`
}

// Defaults returns the built-in configuration with no file applied,
// useful when an operator runs without a config path.
func Defaults() Config { return defaults() }

func defaults() Config {
	return Config{
		Network: NetworkConfig{
			ListenAddr:    ":6000",
			MaxSessions:   1000,
			WorkerCount:   0, // resolved to 2*GOMAXPROCS at startup when zero
			RecvRingBytes: 64 * 1024,
			SendRingBytes: 64 * 1024,
		},
		Game: GameConfig{
			TickIntervalMs: 50,
		},
		Observability: ObservabilityConfig{
			MetricsAddr: ":9090",
			LogLevel:    "info",
			LogJSON:     false,
		},
	}
}

var (
	once sync.Once
	cfg  Config
)

// Load reads the JSON configuration at path, applying defaults for any
// zero-valued fields, and stores the result as the process-wide
// singleton retrievable via Get. Field values are not range-checked.
func Load(path string) (Config, error) {
	var err error
	once.Do(func() {
		cfg = defaults()
		var raw []byte
		raw, err = os.ReadFile(path)
		if err != nil {
			return
		}
		var fromFile Config
		if err = json.Unmarshal(raw, &fromFile); err != nil {
			return
		}
		mergeNonZero(&cfg, fromFile)
	})
	return cfg, err
}

// Get returns the previously Load-ed configuration singleton. Before any
// Load call it returns the zero Config; after a Load that failed to read
// or parse its file it returns the built-in defaults.
func Get() Config { return cfg }

// WriteExample writes a fully-populated example configuration file to
// path, for operators bootstrapping a new deployment.
func WriteExample(path string) error {
	raw, err := json.MarshalIndent(defaults(), "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshal example: %w", err)
	}
	return os.WriteFile(path, raw, 0o644)
}

func mergeNonZero(dst *Config, src Config) {
	if src.Network.ListenAddr != "" {
		dst.Network.ListenAddr = src.Network.ListenAddr
	}
	if src.Network.MaxSessions != 0 {
		dst.Network.MaxSessions = src.Network.MaxSessions
	}
	if src.Network.WorkerCount != 0 {
		dst.Network.WorkerCount = src.Network.WorkerCount
	}
	if src.Network.RecvRingBytes != 0 {
		dst.Network.RecvRingBytes = src.Network.RecvRingBytes
	}
	if src.Network.SendRingBytes != 0 {
		dst.Network.SendRingBytes = src.Network.SendRingBytes
	}
	if src.Game.TickIntervalMs != 0 {
		dst.Game.TickIntervalMs = src.Game.TickIntervalMs
	}
	if src.Observability.MetricsAddr != "" {
		dst.Observability.MetricsAddr = src.Observability.MetricsAddr
	}
	if src.Observability.LogLevel != "" {
		dst.Observability.LogLevel = src.Observability.LogLevel
	}
	dst.Observability.LogJSON = src.Observability.LogJSON
}
