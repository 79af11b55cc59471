// Package permission owns the notification-permission lifecycle and the
// session-level throttling of permission prompts.
package permission

import (
	"context"
	"sync"

	"github.com/taskbell/taskbell/internal/logger"
)

// State is the platform notification-permission state.
type State string

const (
	StateUnknown State = "UNKNOWN"
	StateDefault State = "DEFAULT"
	StateGranted State = "GRANTED"
	StateDenied  State = "DENIED"
)

// Prober talks to the platform's permission surface. Implementations must be
// safe for concurrent use.
type Prober interface {
	// Current returns the platform's current permission state.
	Current(ctx context.Context) State
	// Prompt asks the user and returns the resulting state. Only called
	// when the state is DEFAULT, and at most once per process session.
	Prompt(ctx context.Context) State
}

// Gate is the permission state machine: UNKNOWN → DEFAULT → {GRANTED, DENIED}.
//
// Callers must check State() before rendering a notification; rendering
// outside GRANTED is a programming error in the caller, not a condition the
// gate papers over.
type Gate struct {
	mu       sync.Mutex
	state    State
	prompted bool // session-scoped; survives a dismissed prompt
	prober   Prober
	logger   *logger.Logger
}

func NewGate(prober Prober, log *logger.Logger) *Gate {
	return &Gate{
		state:  StateUnknown,
		prober: prober,
		logger: log.WithComponent("permission-gate"),
	}
}

// State returns the current permission state, querying the platform on first
// use.
func (g *Gate) State(ctx context.Context) State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.resolveLocked(ctx)
}

func (g *Gate) resolveLocked(ctx context.Context) State {
	if g.state == StateUnknown {
		g.state = g.prober.Current(ctx)
		if g.state == StateUnknown {
			g.state = StateDefault
		}
		g.logger.Debug("resolved initial permission state", "state", string(g.state))
	}
	return g.state
}

// Request ensures permission has been asked for, prompting the user at most
// once per process session. It returns true only when the state is GRANTED.
func (g *Gate) Request(ctx context.Context) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.resolveLocked(ctx) {
	case StateGranted:
		return true
	case StateDenied:
		g.logger.Warn("notifications are blocked for this app; enable them in system settings")
		return false
	}

	if g.prompted {
		// One prompt per session, even if the first one was dismissed.
		return false
	}
	g.prompted = true

	g.state = g.prober.Prompt(ctx)
	if g.state != StateGranted && g.state != StateDenied {
		// Dismissed without an answer: stays DEFAULT, no re-prompt this session.
		g.state = StateDefault
		return false
	}

	g.logger.Info("permission prompt answered", "state", string(g.state))
	return g.state == StateGranted
}

// Prompted reports whether the session's single prompt has been used.
func (g *Gate) Prompted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.prompted
}
