package notify

import (
	"sync"
	"time"
)

// RearmDelay is the minimum spacing between two alerts for the same task.
const RearmDelay = 5 * time.Minute

// DedupTracker suppresses repeat alerts for a task inside a sliding re-arm
// window. Entries live only for the current process session; state is
// deliberately not persisted (see DESIGN.md), so a restart re-arms every
// task at the cost of a possible duplicate alert — the safer failure mode.
//
// The tracker is owned by the scheduler; other components consult it only
// through ShouldNotify.
type DedupTracker struct {
	mu           sync.RWMutex
	lastNotified map[string]time.Time
}

func NewDedupTracker() *DedupTracker {
	return &DedupTracker{
		lastNotified: make(map[string]time.Time),
	}
}

// ShouldNotify reports whether an alert for the task is allowed at the given
// instant. The window slides: it delays re-firing, it never permanently
// silences a task.
func (d *DedupTracker) ShouldNotify(taskID string, now time.Time) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	last, ok := d.lastNotified[taskID]
	if !ok {
		return true
	}
	return now.Sub(last) >= RearmDelay
}

// Record stores the alert timestamp for a task, overwriting any prior entry.
// Call it only after the notification actually rendered.
func (d *DedupTracker) Record(taskID string, now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.lastNotified[taskID] = now
}

// Size returns the number of tracked tasks.
func (d *DedupTracker) Size() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.lastNotified)
}
