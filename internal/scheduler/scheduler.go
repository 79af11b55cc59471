// Package scheduler runs the foreground evaluation loop: every tick it pulls
// a fresh task snapshot and settings, asks the matcher which tasks are due,
// gates them through dedup and permission, and renders.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/taskbell/taskbell/internal/diagnostics"
	"github.com/taskbell/taskbell/internal/faults"
	"github.com/taskbell/taskbell/internal/logger"
	"github.com/taskbell/taskbell/internal/notifier"
	"github.com/taskbell/taskbell/internal/notify"
	"github.com/taskbell/taskbell/internal/permission"
	"github.com/taskbell/taskbell/internal/task"
)

// DefaultInterval is the evaluation cadence.
const DefaultInterval = 30 * time.Second

// Status is a point-in-time snapshot of the loop.
type Status struct {
	Running         bool          `json:"running"`
	Interval        time.Duration `json:"-"`
	IntervalSeconds int           `json:"intervalSeconds"`
	Ticks           int64         `json:"ticks"`
	LastEvaluatedAt time.Time     `json:"lastEvaluatedAt"`
	LastDueCount    int           `json:"lastDueCount"`
	DedupEntries    int           `json:"dedupEntries"`
}

// Scheduler owns the single polling loop of the foreground process, plus the
// dedup map — the only mutable state shared across ticks. Nothing outside
// this package mutates either.
type Scheduler struct {
	source   task.Source
	settings func() notify.Config // read fresh every cycle
	dedup    *notify.DedupTracker
	gate     *permission.Gate
	renderer notifier.Notifier
	sound    notifier.SoundPlayer
	monitor  *diagnostics.ErrorMonitor
	logger   *logger.Logger
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool

	ticks        atomic.Int64
	lastEval     atomic.Int64 // unix milli
	lastDueCount atomic.Int32
}

func New(
	source task.Source,
	settings func() notify.Config,
	gate *permission.Gate,
	renderer notifier.Notifier,
	sound notifier.SoundPlayer,
	monitor *diagnostics.ErrorMonitor,
	log *logger.Logger,
	interval time.Duration,
) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		source:   source,
		settings: settings,
		dedup:    notify.NewDedupTracker(),
		gate:     gate,
		renderer: renderer,
		sound:    sound,
		monitor:  monitor,
		logger:   log.WithComponent("scheduler"),
		interval: interval,
		now:      time.Now,
	}
}

// Start launches the evaluation loop. Idempotent: a running loop is stopped
// first, so there is never more than one active timer per process. One
// evaluation runs immediately, before the first tick, so a task due right
// now is not missed for up to a full interval after a restart.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.logger.Warn("scheduler already running, restarting loop")
		s.stopLocked()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go s.run(ctx, s.done)

	s.logger.Info("scheduler started", slog.Duration("interval", s.interval))
}

// Stop cancels the loop and waits for the in-flight tick to finish. Safe to
// call when already stopped.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Scheduler) stopLocked() {
	if !s.running {
		return
	}
	s.cancel()
	<-s.done
	s.running = false
	s.logger.Info("scheduler stopped")
}

// Status returns a snapshot for the status surface.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	return Status{
		Running:         running,
		Interval:        s.interval,
		IntervalSeconds: int(s.interval / time.Second),
		Ticks:           s.ticks.Load(),
		LastEvaluatedAt: time.UnixMilli(s.lastEval.Load()),
		LastDueCount:    int(s.lastDueCount.Load()),
		DedupEntries:    s.dedup.Size(),
	}
}

// ShouldNotify exposes the dedup decision read-only.
func (s *Scheduler) ShouldNotify(taskID string, now time.Time) bool {
	return s.dedup.ShouldNotify(taskID, now)
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	// Immediate first evaluation, then the timer takes over.
	s.evaluate(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.evaluate(ctx)
		}
	}
}

// evaluate runs one cycle. A failure on one task never aborts the rest of
// the tick; it is classified and recorded for diagnostics.
func (s *Scheduler) evaluate(ctx context.Context) {
	now := s.now()
	s.ticks.Add(1)
	s.lastEval.Store(now.UnixMilli())
	evaluationsTotal.Inc()

	cfg := s.settings()
	if !cfg.Enabled {
		s.lastDueCount.Store(0)
		return
	}

	tasks, err := s.source.Snapshot(ctx)
	if err != nil {
		s.monitor.Record(faults.Wrap(faults.KindUnknown, err))
		s.logger.Error("task snapshot failed", slog.String("error", err.Error()))
		return
	}

	due := notify.Evaluate(now, tasks, cfg)
	s.lastDueCount.Store(int32(len(due)))
	if len(due) == 0 {
		return
	}
	dueMatchedTotal.Add(float64(len(due)))

	for _, t := range due {
		if !s.dedup.ShouldNotify(t.ID, now) {
			notificationsSuppressedTotal.Inc()
			continue
		}
		s.deliver(ctx, t, cfg, now)
	}
}

func (s *Scheduler) deliver(ctx context.Context, t task.Task, cfg notify.Config, now time.Time) {
	ctx = logger.WithTaskID(ctx, t.ID)
	ctx = logger.WithDeliveryID(ctx, logger.GenerateDeliveryID())
	log := s.logger.WithContext(ctx)

	// Rendering outside GRANTED is a programming error, not a fallback;
	// the gate is consulted per task so a mid-tick revocation cannot slip
	// a notification through.
	if s.gate.State(ctx) != permission.StateGranted {
		log.Warn("due task matched but permission not granted")
		return
	}

	alert := notify.TaskAlert(t, cfg.LeadTime.Duration())
	if err := s.renderer.Notify(ctx, alert); err != nil {
		kind := faults.Classify(err)
		deliveryFailuresTotal.WithLabelValues(string(kind)).Inc()
		s.monitor.Record(err)
		log.Error("notification delivery failed",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()))
		return
	}

	s.dedup.Record(t.ID, now)
	notificationsSentTotal.Inc()
	log.Info("notification delivered", slog.String("tag", alert.Tag))

	if cfg.SoundEnabled && s.sound != nil {
		// Playback must not delay the remaining tasks of this tick.
		go func() {
			if err := s.sound.Play(context.Background()); err != nil {
				log.Debug("alert sound failed", slog.String("error", err.Error()))
			}
		}()
	}
}

// TestNotification renders an immediate test alert through the same
// permission and renderer path as a real delivery, bypassing matcher and
// dedup. It backs the explicit "send test notification" user action.
func (s *Scheduler) TestNotification(ctx context.Context) error {
	if !s.gate.Request(ctx) {
		return faults.New(faults.KindPermissionDenied, "notification permission not granted")
	}

	alert := notify.GenericAlert()
	alert.Tag = "taskbell-test"
	alert.Title = "Test notification"
	alert.Body = "Notifications are working"

	if err := s.renderer.Notify(ctx, alert); err != nil {
		s.monitor.Record(err)
		deliveryFailuresTotal.WithLabelValues(string(faults.Classify(err))).Inc()
		return err
	}
	notificationsSentTotal.Inc()

	cfg := s.settings()
	if cfg.SoundEnabled && s.sound != nil {
		go func() { _ = s.sound.Play(context.Background()) }()
	}
	return nil
}
