package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"

	"github.com/taskbell/taskbell/internal/channel"
	"github.com/taskbell/taskbell/internal/config"
	"github.com/taskbell/taskbell/internal/diagnostics"
	"github.com/taskbell/taskbell/internal/logger"
	"github.com/taskbell/taskbell/internal/notifier"
	"github.com/taskbell/taskbell/internal/notify"
	"github.com/taskbell/taskbell/internal/permission"
	"github.com/taskbell/taskbell/internal/scheduler"
	"github.com/taskbell/taskbell/internal/server"
	"github.com/taskbell/taskbell/internal/task"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig

	log := logger.New(logger.FromConfig(cfg.LogLevel, cfg.LogFormat))
	gin.SetMode(cfg.GinMode)

	// Task source (read-only collaborator).
	source, err := task.OpenSQLite(cfg.TaskDBPath)
	if err != nil {
		log.Error("failed to open task source", "error", err)
		os.Exit(1)
	}
	defer source.Close()

	// Message channel to the background worker. Optional: without NATS the
	// foreground path still works on its own.
	var (
		nc     *nats.Conn
		client *channel.Client
	)
	if cfg.NatsURL != "" {
		nc, err = nats.Connect(cfg.NatsURL, nats.Name("taskbell-server"))
		if err != nil {
			log.Warn("NATS unavailable, background delivery disabled", "error", err)
		} else {
			defer nc.Close()
			client = channel.NewClient(nc, log)
		}
	}

	renderer := notifier.NewDesktop()
	gate := permission.NewGate(permission.NewFileProber(".taskbell-permission"), log)

	caps := diagnostics.Detect(cfg.NatsURL, cfg.TaskDBPath, renderer)
	monitor := diagnostics.NewErrorMonitor(cfg.ErrorHistorySize, caps.DeviceInfo())

	var prober diagnostics.WorkerProber
	if client != nil {
		prober = client
	}
	diag := diagnostics.NewService(caps, gate, prober, diagnostics.NewNetworkObserver(""), monitor, log)

	settings := func() notify.Config { return notify.LoadConfig(cfg.NotifySettingsPath) }
	sched := scheduler.New(
		source,
		settings,
		gate,
		renderer,
		notifier.Beep{},
		monitor,
		log,
		time.Duration(cfg.SchedulerTickSeconds)*time.Second,
	)
	sched.Start()

	// Startup diagnostics run, advisory only.
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), time.Duration(cfg.PingTimeoutSeconds)*time.Second)
	report := diag.Run(startupCtx)
	cancelStartup()
	for _, issue := range report.Issues {
		log.Warn("startup diagnostic issue",
			"severity", string(issue.Severity),
			"code", issue.Code,
			"hint", issue.Hint)
	}

	handler := server.NewHandler(sched, diag, gate, client, log)
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler.Router(),
	}

	go func() {
		log.Info("server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ServerShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server exited")
}
