package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/taskbell/taskbell/internal/diagnostics"
	"github.com/taskbell/taskbell/internal/faults"
	"github.com/taskbell/taskbell/internal/logger"
	"github.com/taskbell/taskbell/internal/notifier"
)

// WindowManager navigates the user to a destination route after a click.
// Focus is attempted before Open so a click reuses an existing window
// instead of piling up new ones.
type WindowManager interface {
	// Focus brings an already-open window to the front and navigates it.
	// Returns false when no window exists.
	Focus(ctx context.Context, route string) bool
	// Open opens a new window at the route.
	Open(ctx context.Context, route string) error
}

// Worker is the background side of the channel. It has its own process
// lifecycle, independent of the foreground: it claims its subjects as soon
// as Start runs and keeps rendering pushes while no foreground is open.
type Worker struct {
	nc       *nats.Conn
	renderer notifier.Notifier
	windows  WindowManager
	monitor  *diagnostics.ErrorMonitor
	logger   *logger.Logger
	subs     []*nats.Subscription
}

func NewWorker(nc *nats.Conn, renderer notifier.Notifier, windows WindowManager, monitor *diagnostics.ErrorMonitor, log *logger.Logger) *Worker {
	return &Worker{
		nc:       nc,
		renderer: renderer,
		windows:  windows,
		monitor:  monitor,
		logger:   log.WithComponent("channel-worker"),
	}
}

// Start subscribes to every channel subject. Subscribing eagerly (rather
// than on first use) is the worker's "claim immediately" step: pushes that
// arrive right after startup are not lost.
func (w *Worker) Start() error {
	type handler struct {
		subject string
		fn      nats.MsgHandler
	}
	for _, h := range []handler{
		{SubjectPush, w.handlePush},
		{SubjectClick, w.handleClick},
		{SubjectLiveness, w.handleLiveness},
	} {
		sub, err := w.nc.Subscribe(h.subject, h.fn)
		if err != nil {
			return faults.Wrap(faults.KindWorkerError, fmt.Errorf("subscribe %s: %w", h.subject, err))
		}
		w.subs = append(w.subs, sub)
	}

	w.logger.Info("background worker started",
		slog.Int("subjects", len(w.subs)),
		slog.String("instance_id", logger.GetProcessID()))
	return nil
}

// Stop drains all subscriptions. Safe to call when never started.
func (w *Worker) Stop() error {
	for _, sub := range w.subs {
		if err := sub.Drain(); err != nil {
			return fmt.Errorf("drain %s: %w", sub.Subject, err)
		}
	}
	w.subs = nil
	w.logger.Info("background worker stopped")
	return nil
}

// handlePush renders an inbound push exactly once: AlertForPush picks the
// structured or generic path deterministically before anything renders.
func (w *Worker) handlePush(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var payload PushPayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		// Malformed pushes still notify the user; the sender believed
		// something was pending.
		w.logger.Warn("unparseable push payload, using generic fallback",
			slog.String("error", err.Error()))
		payload = PushPayload{}
	}

	alert := AlertForPush(payload)

	log := w.logger.WithContext(logger.WithDeliveryID(ctx, logger.GenerateDeliveryID()))
	log.Info("rendering push notification",
		slog.String("tag", alert.Tag),
		slog.Bool("structured", payload.Notification != nil))

	if err := w.renderer.Notify(ctx, alert); err != nil {
		w.monitor.Record(err)
		log.Error("push render failed", slog.String("error", err.Error()))
	}
}

// handleClick closes out a notification interaction: resolve the destination
// route from the notification's data (the action may override it), then
// focus an existing window before opening a new one.
func (w *Worker) handleClick(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var event ClickEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		w.logger.Warn("unparseable click event", slog.String("error", err.Error()))
		return
	}

	route, navigate := ResolveRoute(event)
	w.logger.Info("notification clicked",
		slog.String("tag", event.Tag),
		slog.String("action", event.Action),
		slog.String("route", route))

	if !navigate || w.windows == nil {
		return
	}

	if w.windows.Focus(ctx, route) {
		return
	}
	if err := w.windows.Open(ctx, route); err != nil {
		w.monitor.Record(faults.Wrap(faults.KindDeviceSpecific, err))
		w.logger.Error("failed to open window", slog.String("error", err.Error()))
	}
}

// handleLiveness answers PING with PONG over the reply subject.
func (w *Worker) handleLiveness(msg *nats.Msg) {
	var ping Ping
	if err := json.Unmarshal(msg.Data, &ping); err != nil || ping.Type != "PING" {
		return
	}

	pong, _ := json.Marshal(Pong{
		Type:      "PONG",
		Status:    "active",
		Timestamp: time.Now().UnixMilli(),
	})
	if err := msg.Respond(pong); err != nil {
		w.logger.Warn("failed to answer liveness probe", slog.String("error", err.Error()))
	}
}
