package diagnostics

import (
	"net"
	"time"
)

// slowThreshold is the dial latency above which the link counts as SLOW.
const slowThreshold = 500 * time.Millisecond

// NetworkObserver derives the connection state by timing a TCP dial against
// a well-known target. METERED is not detectable from here and is never
// reported; it exists for observers with richer platform signals.
type NetworkObserver struct {
	Target  string
	Timeout time.Duration
}

func NewNetworkObserver(target string) *NetworkObserver {
	if target == "" {
		target = "1.1.1.1:53"
	}
	return &NetworkObserver{Target: target, Timeout: 2 * time.Second}
}

func (o *NetworkObserver) State() ConnectionState {
	start := time.Now()
	conn, err := net.DialTimeout("tcp", o.Target, o.Timeout)
	if err != nil {
		return ConnOffline
	}
	_ = conn.Close()

	if time.Since(start) > slowThreshold {
		return ConnSlow
	}
	return ConnOnline
}
