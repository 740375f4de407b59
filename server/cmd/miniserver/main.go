// Command miniserver runs the lobby game server: a binary, length-
// prefixed TCP protocol in front of a room/player model, with
// Prometheus metrics and liveness exposed over HTTP.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phuhao00/minigames-server/server/internal/bootstrap"
	"github.com/phuhao00/minigames-server/server/internal/config"
	"github.com/phuhao00/minigames-server/server/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON config file (defaults are used if empty)")
	writeExample := flag.String("write-example-config", "", "write an example config file to this path and exit")
	flag.Parse()

	if *writeExample != "" {
		if err := config.WriteExample(*writeExample); err != nil {
			slog.Error("failed to write example config", "error", err)
			os.Exit(1)
		}
		return
	}

	cfg := config.Config{}
	var err error
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
		if err != nil {
			slog.Error("failed to load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
	} else {
		cfg = config.Defaults()
	}

	log := logging.New(cfg.Observability.LogLevel, cfg.Observability.LogJSON, nil)
	slog.SetDefault(log)

	srv, err := bootstrap.Build(cfg, log)
	if err != nil {
		log.Error("failed to build server", "error", err)
		os.Exit(1)
	}

	if err := srv.Start(cfg.Network.ListenAddr); err != nil {
		log.Error("failed to start server", "error", err)
		os.Exit(1)
	}
	log.Info("miniserver running", "listen_addr", cfg.Network.ListenAddr, "metrics_addr", cfg.Observability.MetricsAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		log.Error("shutdown did not complete cleanly", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
