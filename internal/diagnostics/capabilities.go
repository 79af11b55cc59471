package diagnostics

import (
	"os"
	"runtime"

	"github.com/taskbell/taskbell/internal/faults"
)

// Capabilities is the platform snapshot computed once at startup and passed
// by reference to whoever needs it, instead of re-sniffing the environment at
// every call site.
type Capabilities struct {
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	Graphical bool   `json:"graphical"`         // a display session is available
	Renderer  string `json:"renderer,omitempty"` // resolved notification binary
	PushURL   string `json:"pushUrl,omitempty"`  // message-channel endpoint, empty when unconfigured
	DBPath    string `json:"dbPath,omitempty"`
}

// RendererProbe exposes the notifier's feature detection.
type RendererProbe interface {
	Supported() bool
	Renderer() string
}

// Detect computes the capability snapshot.
func Detect(natsURL, dbPath string, renderer RendererProbe) Capabilities {
	caps := Capabilities{
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
		PushURL: natsURL,
		DBPath:  dbPath,
	}

	switch runtime.GOOS {
	case "darwin", "windows":
		caps.Graphical = true
	default:
		caps.Graphical = os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
	}

	if renderer != nil && renderer.Supported() {
		caps.Renderer = renderer.Renderer()
	}

	return caps
}

// NotifierSupported reports whether a local renderer was found.
func (c Capabilities) NotifierSupported() bool {
	return c.Renderer != ""
}

// PushConfigured reports whether background push delivery is wired up.
func (c Capabilities) PushConfigured() bool {
	return c.PushURL != ""
}

// StoragePersistent reports whether the task snapshot source survives a
// restart.
func (c Capabilities) StoragePersistent() bool {
	return c.DBPath != "" && c.DBPath != ":memory:"
}

// DeviceInfo converts the snapshot into the form attached to error records.
func (c Capabilities) DeviceInfo() *faults.DeviceInfo {
	return &faults.DeviceInfo{
		OS:        c.OS,
		Arch:      c.Arch,
		Graphical: c.Graphical,
		Notifier:  c.Renderer,
	}
}
