package notify

import (
	"time"

	"github.com/taskbell/taskbell/internal/task"
)

// toleranceCap bounds the timing slack around the lead-time crossing.
// The window narrows for short lead times so a 5-minute lead does not
// fire half a minute early.
const toleranceCap = 30 * time.Second

// Tolerance returns the allowed slack for a given lead time:
// min(30s, 10% of lead).
func Tolerance(lead time.Duration) time.Duration {
	tenth := lead / 10
	if tenth < toleranceCap {
		return tenth
	}
	return toleranceCap
}

// Evaluate decides which tasks are due for an alert at the given instant.
// It is pure and deterministic: same inputs, same output, input order
// preserved. Both the foreground scheduler and the background worker go
// through this one function, so the two delivery paths can never disagree
// about what "due" means.
//
// A task matches when the remaining time until its due instant crosses the
// configured lead time, within Tolerance. Matching once per crossing (rather
// than continuously) is what this window buys; repeat suppression inside the
// window is the dedup tracker's half of the contract.
func Evaluate(now time.Time, tasks []task.Task, cfg Config) []task.Task {
	if !cfg.Enabled {
		return nil
	}

	lead := cfg.LeadTime.Duration()
	tolerance := Tolerance(lead)

	var due []task.Task
	for _, t := range tasks {
		if t.Completed || !t.NotifyEnabled {
			continue
		}
		dueAt, ok := t.DueInstant()
		if !ok {
			continue
		}
		delta := dueAt.Sub(now)
		if delta <= 0 {
			// Already past due; alerting now would be noise, not a reminder.
			continue
		}
		diff := delta - lead
		if diff < 0 {
			diff = -diff
		}
		if diff <= tolerance {
			due = append(due, t)
		}
	}
	return due
}
