package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"

	"github.com/taskbell/taskbell/internal/channel"
	"github.com/taskbell/taskbell/internal/config"
	"github.com/taskbell/taskbell/internal/diagnostics"
	"github.com/taskbell/taskbell/internal/logger"
	"github.com/taskbell/taskbell/internal/notifier"
)

// The worker is the background half of the engine. It runs detached from any
// foreground process, renders pushes on its own, and answers liveness probes
// so the foreground can tell it is alive.
func main() {
	config.LoadConfig()
	cfg := config.AppConfig

	log := logger.New(logger.FromConfig(cfg.LogLevel, cfg.LogFormat))

	if cfg.NatsURL == "" {
		log.Error("NATS_URL is required for the background worker")
		os.Exit(1)
	}

	nc, err := nats.Connect(cfg.NatsURL,
		nats.Name("taskbell-worker"),
		nats.MaxReconnects(-1))
	if err != nil {
		log.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer nc.Close()

	renderer := notifier.NewDesktop()
	caps := diagnostics.Detect(cfg.NatsURL, cfg.TaskDBPath, renderer)
	monitor := diagnostics.NewErrorMonitor(cfg.ErrorHistorySize, caps.DeviceInfo())
	windows := channel.NewDesktopWindows("http://localhost:" + cfg.Port)

	worker := channel.NewWorker(nc, renderer, windows, monitor, log)
	if err := worker.Start(); err != nil {
		log.Error("failed to start worker", "error", err)
		os.Exit(1)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down worker")

	if err := worker.Stop(); err != nil {
		log.Error("worker shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("worker exited")
}
