// Package notifier renders alerts on the local OS and optionally plays the
// alert sound. Everything above it talks to the Notifier interface; the exec
// implementation below is the only piece that knows which binary the host
// platform uses.
package notifier

import (
	"context"

	"github.com/taskbell/taskbell/internal/notify"
)

// Notifier renders one alert. Implementations must be safe for concurrent
// use; the scheduler may render several due tasks in one tick.
type Notifier interface {
	Notify(ctx context.Context, alert notify.Alert) error
	// Supported reports whether this notifier can render on the current
	// platform. Diagnostics uses it for feature detection.
	Supported() bool
}

// SoundPlayer plays the alert sound. Playback is best-effort and must never
// block or fail a delivery.
type SoundPlayer interface {
	Play(ctx context.Context) error
}
