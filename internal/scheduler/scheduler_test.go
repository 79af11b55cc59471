package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/taskbell/taskbell/internal/diagnostics"
	"github.com/taskbell/taskbell/internal/faults"
	"github.com/taskbell/taskbell/internal/logger"
	"github.com/taskbell/taskbell/internal/notify"
	"github.com/taskbell/taskbell/internal/permission"
	"github.com/taskbell/taskbell/internal/task"
)

type fakeSource struct {
	mu    sync.Mutex
	tasks []task.Task
	calls int
}

func (f *fakeSource) Snapshot(ctx context.Context) ([]task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.tasks, nil
}

func (f *fakeSource) snapshotCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeRenderer struct {
	mu       sync.Mutex
	rendered []notify.Alert
	failTags map[string]bool
}

func (f *fakeRenderer) Notify(ctx context.Context, alert notify.Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTags[alert.Tag] {
		return faults.New(faults.KindDeliveryFailed, "render refused for %s", alert.Tag)
	}
	f.rendered = append(f.rendered, alert)
	return nil
}

func (f *fakeRenderer) Supported() bool { return true }

func (f *fakeRenderer) renderedTags() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	tags := make([]string, 0, len(f.rendered))
	for _, a := range f.rendered {
		tags = append(tags, a.Tag)
	}
	return tags
}

type grantedProber struct{}

func (grantedProber) Current(ctx context.Context) permission.State { return permission.StateGranted }
func (grantedProber) Prompt(ctx context.Context) permission.State  { return permission.StateGranted }

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: slog.LevelError, Format: "text"})
}

func dueIn(id string, now time.Time, lead time.Duration) task.Task {
	at := now.Add(lead)
	return task.Task{
		ID:            id,
		Title:         "task " + id,
		DueDate:       &task.Date{Year: at.Year(), Month: at.Month(), Day: at.Day()},
		DueTime:       &task.TimeOfDay{Hour: at.Hour(), Minute: at.Minute()},
		NotifyEnabled: true,
	}
}

func newTestScheduler(t *testing.T, source *fakeSource, renderer *fakeRenderer, interval time.Duration) (*Scheduler, *diagnostics.ErrorMonitor) {
	t.Helper()
	log := testLogger()
	monitor := diagnostics.NewErrorMonitor(10, nil)
	settings := func() notify.Config {
		return notify.Config{
			Enabled:  true,
			LeadTime: notify.LeadTime{Value: 30, Unit: notify.UnitMinutes},
		}
	}
	gate := permission.NewGate(grantedProber{}, log)
	s := New(source, settings, gate, renderer, nil, monitor, log, interval)

	// Pin the clock so matcher arithmetic is exact regardless of wall time.
	t0 := time.Date(2026, 3, 14, 10, 0, 0, 0, time.Local)
	s.now = func() time.Time { return t0 }
	source.tasks = []task.Task{dueIn("a", t0, 30*time.Minute)}
	return s, monitor
}

func TestScheduler_ImmediateFirstEvaluation(t *testing.T) {
	source := &fakeSource{}
	renderer := &fakeRenderer{}
	s, _ := newTestScheduler(t, source, renderer, time.Hour)
	defer s.Stop()

	s.Start()
	time.Sleep(50 * time.Millisecond)

	if source.snapshotCalls() == 0 {
		t.Fatal("start must evaluate before the first timer tick")
	}
	if got := renderer.renderedTags(); len(got) != 1 || got[0] != "task-a" {
		t.Fatalf("expected one delivery for task-a, got %v", got)
	}
}

func TestScheduler_StartIsIdempotent(t *testing.T) {
	source := &fakeSource{}
	renderer := &fakeRenderer{}
	s, _ := newTestScheduler(t, source, renderer, 30*time.Millisecond)

	s.Start()
	s.Start()
	s.Start()
	time.Sleep(100 * time.Millisecond)

	// A single Stop must silence everything, however many Starts ran.
	s.Stop()
	calls := source.snapshotCalls()
	time.Sleep(120 * time.Millisecond)

	if got := source.snapshotCalls(); got != calls {
		t.Fatalf("ticks continued after stop: %d -> %d", calls, got)
	}
	if s.Status().Running {
		t.Error("status must report not running after stop")
	}
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	source := &fakeSource{}
	s, _ := newTestScheduler(t, source, &fakeRenderer{}, time.Hour)

	s.Stop() // never started
	s.Start()
	s.Stop()
	s.Stop() // already stopped
}

func TestScheduler_DedupSuppressesWithinWindow(t *testing.T) {
	source := &fakeSource{}
	renderer := &fakeRenderer{}
	s, _ := newTestScheduler(t, source, renderer, 25*time.Millisecond)
	defer s.Stop()

	s.Start()
	time.Sleep(120 * time.Millisecond)

	// Several ticks ran at the same pinned instant; dedup allows exactly
	// one delivery inside the re-arm window.
	if got := renderer.renderedTags(); len(got) != 1 {
		t.Fatalf("expected exactly one delivery, got %v", got)
	}
	if !s.ShouldNotify("b", time.Now()) {
		t.Error("unrecorded task must stay eligible")
	}
}

func TestScheduler_RenderFailureDoesNotAbortTick(t *testing.T) {
	source := &fakeSource{}
	renderer := &fakeRenderer{failTags: map[string]bool{"task-a": true}}
	s, monitor := newTestScheduler(t, source, renderer, time.Hour)
	defer s.Stop()

	t0 := time.Date(2026, 3, 14, 10, 0, 0, 0, time.Local)
	source.tasks = []task.Task{
		dueIn("a", t0, 30*time.Minute),
		dueIn("b", t0, 30*time.Minute),
	}

	s.Start()
	time.Sleep(50 * time.Millisecond)

	if got := renderer.renderedTags(); len(got) != 1 || got[0] != "task-b" {
		t.Fatalf("the second task must still deliver, got %v", got)
	}
	history := monitor.History(0)
	if len(history) != 1 {
		t.Fatalf("expected one recorded failure, got %d", len(history))
	}
	if history[0].Kind != faults.KindDeliveryFailed {
		t.Errorf("expected %s, got %s", faults.KindDeliveryFailed, history[0].Kind)
	}
}

func TestScheduler_PermissionBlocksDelivery(t *testing.T) {
	source := &fakeSource{}
	renderer := &fakeRenderer{}
	log := testLogger()
	monitor := diagnostics.NewErrorMonitor(10, nil)
	settings := func() notify.Config {
		return notify.Config{Enabled: true, LeadTime: notify.LeadTime{Value: 30, Unit: notify.UnitMinutes}}
	}

	denied := permission.NewGate(deniedProber{}, log)
	s := New(source, settings, denied, renderer, nil, monitor, log, time.Hour)
	t0 := time.Date(2026, 3, 14, 10, 0, 0, 0, time.Local)
	s.now = func() time.Time { return t0 }
	source.tasks = []task.Task{dueIn("a", t0, 30*time.Minute)}
	defer s.Stop()

	s.Start()
	time.Sleep(50 * time.Millisecond)

	if got := renderer.renderedTags(); len(got) != 0 {
		t.Fatalf("nothing may render without permission, got %v", got)
	}
	// The match was still suppressed, not recorded: a permission gap is an
	// advisory, not a delivery failure.
	if s.ShouldNotify("a", t0) != true {
		t.Error("dedup must not record a blocked delivery")
	}
}

type deniedProber struct{}

func (deniedProber) Current(ctx context.Context) permission.State { return permission.StateDenied }
func (deniedProber) Prompt(ctx context.Context) permission.State  { return permission.StateDenied }

func TestScheduler_TestNotification(t *testing.T) {
	source := &fakeSource{}
	renderer := &fakeRenderer{}
	s, _ := newTestScheduler(t, source, renderer, time.Hour)

	if err := s.TestNotification(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := renderer.renderedTags(); len(got) != 1 || got[0] != "taskbell-test" {
		t.Fatalf("expected the test alert, got %v", got)
	}
}
