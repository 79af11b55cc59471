package diagnostics

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taskbell/taskbell/internal/logger"
	"github.com/taskbell/taskbell/internal/permission"
)

type staticProber struct{ state permission.State }

func (s staticProber) Current(ctx context.Context) permission.State { return s.state }
func (s staticProber) Prompt(ctx context.Context) permission.State  { return s.state }

type fakeWorker struct {
	err    error
	probes int
}

func (f *fakeWorker) Probe(ctx context.Context) (time.Time, error) {
	f.probes++
	if f.err != nil {
		return time.Time{}, f.err
	}
	return time.Now(), nil
}

type staticConn struct{ state ConnectionState }

func (s staticConn) State() ConnectionState { return s.state }

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: slog.LevelError, Format: "text"})
}

func healthyCaps() Capabilities {
	return Capabilities{
		OS:        "linux",
		Arch:      "amd64",
		Graphical: true,
		Renderer:  "/usr/bin/notify-send",
		PushURL:   "nats://localhost:4222",
		DBPath:    "taskbell.db",
	}
}

func issueCodes(r Report) []string {
	codes := make([]string, 0, len(r.Issues))
	for _, i := range r.Issues {
		codes = append(codes, i.Code)
	}
	return codes
}

func severityOf(r Report, code string) Severity {
	for _, i := range r.Issues {
		if i.Code == code {
			return i.Severity
		}
	}
	return ""
}

func newTestService(caps Capabilities, state permission.State, worker WorkerProber, conn ConnectionObserver) *Service {
	log := testLogger()
	gate := permission.NewGate(staticProber{state}, log)
	return NewService(caps, gate, worker, conn, NewErrorMonitor(10, nil), log)
}

func TestRun_AllHealthy(t *testing.T) {
	worker := &fakeWorker{}
	svc := newTestService(healthyCaps(), permission.StateGranted, worker, staticConn{ConnOnline})

	report := svc.Run(context.Background())

	assert.Empty(t, report.Issues)
	assert.True(t, report.WorkerAlive)
	assert.Equal(t, ConnOnline, report.Connection)
	assert.Equal(t, permission.StateGranted, report.Permission)
}

func TestRun_NoRendererIsCritical(t *testing.T) {
	caps := healthyCaps()
	caps.Renderer = ""
	svc := newTestService(caps, permission.StateGranted, &fakeWorker{}, nil)

	report := svc.Run(context.Background())

	assert.Contains(t, issueCodes(report), "no_renderer")
	assert.Equal(t, SeverityCritical, severityOf(report, "no_renderer"))
}

func TestRun_PushUnconfiguredSkipsWorkerChecks(t *testing.T) {
	caps := healthyCaps()
	caps.PushURL = ""
	worker := &fakeWorker{}
	svc := newTestService(caps, permission.StateGranted, worker, nil)

	report := svc.Run(context.Background())

	assert.Contains(t, issueCodes(report), "push_unconfigured")
	assert.Equal(t, SeverityCritical, severityOf(report, "push_unconfigured"))
	// Worker-specific checks must not run when push support is absent.
	assert.Zero(t, worker.probes)
	assert.False(t, report.WorkerAlive)
}

func TestRun_WorkerUnresponsive(t *testing.T) {
	worker := &fakeWorker{err: fmt.Errorf("no responders")}
	svc := newTestService(healthyCaps(), permission.StateGranted, worker, nil)

	report := svc.Run(context.Background())

	assert.Contains(t, issueCodes(report), "worker_unresponsive")
	assert.Equal(t, SeverityWarning, severityOf(report, "worker_unresponsive"))
	assert.False(t, report.WorkerAlive)
}

func TestRun_PermissionRules(t *testing.T) {
	denied := newTestService(healthyCaps(), permission.StateDenied, &fakeWorker{}, nil).Run(context.Background())
	assert.Equal(t, SeverityCritical, severityOf(denied, "permission_denied"))

	pending := newTestService(healthyCaps(), permission.StateDefault, &fakeWorker{}, nil).Run(context.Background())
	assert.Equal(t, SeverityWarning, severityOf(pending, "permission_not_granted"))
}

func TestRun_IssuesAreAdditive(t *testing.T) {
	// Any subset of failing checks may co-occur; rules never mask each
	// other.
	caps := healthyCaps()
	caps.Renderer = ""
	caps.Graphical = false
	caps.DBPath = ":memory:"
	svc := newTestService(caps, permission.StateDenied, &fakeWorker{}, staticConn{ConnOffline})

	report := svc.Run(context.Background())
	codes := issueCodes(report)

	for _, want := range []string{"no_renderer", "permission_denied", "headless_session", "storage_not_persistent", "offline"} {
		assert.Contains(t, codes, want)
	}
}

func TestRun_OfflineIsWarningOnly(t *testing.T) {
	svc := newTestService(healthyCaps(), permission.StateGranted, &fakeWorker{}, staticConn{ConnOffline})
	report := svc.Run(context.Background())

	assert.Equal(t, SeverityWarning, severityOf(report, "offline"))
}
