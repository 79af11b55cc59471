// Package diagnostics answers "why didn't my notification fire" without
// mutating anything. It probes platform capabilities, permission state,
// background-worker liveness and storage, then applies a fixed additive rule
// set; any subset of checks may fail together.
package diagnostics

import (
	"context"
	"time"

	"github.com/taskbell/taskbell/internal/logger"
	"github.com/taskbell/taskbell/internal/permission"
)

// ConnectionState mirrors the network observer consumed read-only by the UI.
// Local delivery is deliberately not gated on it; only the push path cares.
type ConnectionState string

const (
	ConnOnline  ConnectionState = "ONLINE"
	ConnOffline ConnectionState = "OFFLINE"
	ConnSlow    ConnectionState = "SLOW"
	ConnMetered ConnectionState = "METERED"
)

// ConnectionObserver supplies the current network state.
type ConnectionObserver interface {
	State() ConnectionState
}

// WorkerProber checks whether the background worker is alive. Implemented by
// the channel client's PING round-trip.
type WorkerProber interface {
	Probe(ctx context.Context) (time.Time, error)
}

// Severity of a surfaced issue.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
)

// Issue is one surfaced problem with a remediation hint.
type Issue struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Hint     string   `json:"hint"`
}

// Report is the result of one diagnostics run.
type Report struct {
	GeneratedAt   time.Time        `json:"generatedAt"`
	Capabilities  Capabilities     `json:"capabilities"`
	Permission    permission.State `json:"permission"`
	WorkerAlive   bool             `json:"workerAlive"`
	WorkerPingRTT string           `json:"workerPingRtt,omitempty"`
	Connection    ConnectionState  `json:"connection,omitempty"`
	Issues        []Issue          `json:"issues"`
}

// Service runs diagnostics against the live components.
type Service struct {
	caps    Capabilities
	gate    *permission.Gate
	worker  WorkerProber // nil when push is not configured
	conn    ConnectionObserver
	monitor *ErrorMonitor
	logger  *logger.Logger
}

func NewService(caps Capabilities, gate *permission.Gate, worker WorkerProber, conn ConnectionObserver, monitor *ErrorMonitor, log *logger.Logger) *Service {
	return &Service{
		caps:    caps,
		gate:    gate,
		worker:  worker,
		conn:    conn,
		monitor: monitor,
		logger:  log.WithComponent("diagnostics"),
	}
}

// Monitor exposes the error history for handlers.
func (s *Service) Monitor() *ErrorMonitor {
	return s.monitor
}

// Run executes every applicable check and applies the rule set. It reads from
// the other components without mutating them.
func (s *Service) Run(ctx context.Context) Report {
	report := Report{
		GeneratedAt:  time.Now(),
		Capabilities: s.caps,
		Permission:   s.gate.State(ctx),
		Issues:       []Issue{},
	}

	if !s.caps.NotifierSupported() {
		report.Issues = append(report.Issues, Issue{
			Severity: SeverityCritical,
			Code:     "no_renderer",
			Message:  "no notification renderer found on this system",
			Hint:     "install notify-send (libnotify) on Linux; macOS ships osascript by default",
		})
	}

	if !s.caps.PushConfigured() {
		report.Issues = append(report.Issues, Issue{
			Severity: SeverityCritical,
			Code:     "push_unconfigured",
			Message:  "background delivery is not configured",
			Hint:     "set NATS_URL so the background worker can receive pushes",
		})
	} else if s.worker != nil {
		// Worker-specific checks only run when push support exists at all.
		start := time.Now()
		if _, err := s.worker.Probe(ctx); err != nil {
			report.Issues = append(report.Issues, Issue{
				Severity: SeverityWarning,
				Code:     "worker_unresponsive",
				Message:  "background worker did not answer the liveness probe",
				Hint:     "start the taskbell worker process; pushes are not delivered while it is down",
			})
		} else {
			report.WorkerAlive = true
			report.WorkerPingRTT = time.Since(start).String()
		}
	}

	if report.Permission == permission.StateDenied {
		report.Issues = append(report.Issues, Issue{
			Severity: SeverityCritical,
			Code:     "permission_denied",
			Message:  "notification permission is denied",
			Hint:     "re-enable notifications for taskbell in system settings",
		})
	} else if report.Permission == permission.StateDefault {
		report.Issues = append(report.Issues, Issue{
			Severity: SeverityWarning,
			Code:     "permission_not_granted",
			Message:  "notification permission has not been granted yet",
			Hint:     "trigger a permission request from the settings surface",
		})
	}

	if !s.caps.Graphical {
		report.Issues = append(report.Issues, Issue{
			Severity: SeverityWarning,
			Code:     "headless_session",
			Message:  "no graphical session detected",
			Hint:     "local notifications may not display; rely on the push path",
		})
	}

	if !s.caps.StoragePersistent() {
		report.Issues = append(report.Issues, Issue{
			Severity: SeverityWarning,
			Code:     "storage_not_persistent",
			Message:  "task storage is not persisted",
			Hint:     "point TASK_DB_PATH at a file so tasks survive a restart",
		})
	}

	if s.conn != nil {
		report.Connection = s.conn.State()
		if report.Connection == ConnOffline {
			report.Issues = append(report.Issues, Issue{
				Severity: SeverityWarning,
				Code:     "offline",
				Message:  "network is offline",
				Hint:     "local alerts still fire; push delivery resumes when back online",
			})
		}
	}

	s.logger.Info("diagnostics run complete",
		"issues", len(report.Issues),
		"permission", string(report.Permission),
		"worker_alive", report.WorkerAlive)

	return report
}
