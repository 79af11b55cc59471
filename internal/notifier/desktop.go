package notifier

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/taskbell/taskbell/internal/faults"
	"github.com/taskbell/taskbell/internal/notify"
)

// Desktop renders alerts through the host's notification command:
// notify-send on Linux, osascript on macOS. No Go library in our stack ships
// native bindings for this, so the renderer shells out and classifies
// failures for diagnostics instead of crashing.
type Desktop struct {
	goos string
	path string // resolved renderer binary, empty when unsupported
}

func NewDesktop() *Desktop {
	d := &Desktop{goos: runtime.GOOS}
	switch d.goos {
	case "linux":
		if p, err := exec.LookPath("notify-send"); err == nil {
			d.path = p
		}
	case "darwin":
		if p, err := exec.LookPath("osascript"); err == nil {
			d.path = p
		}
	}
	return d
}

func (d *Desktop) Supported() bool {
	return d.path != ""
}

// Renderer returns the resolved renderer binary path, empty when unsupported.
func (d *Desktop) Renderer() string {
	return d.path
}

func (d *Desktop) Notify(ctx context.Context, alert notify.Alert) error {
	if d.path == "" {
		return faults.New(faults.KindUnsupportedPlatform, "no notification renderer on %s", d.goos)
	}

	var cmd *exec.Cmd
	switch d.goos {
	case "linux":
		cmd = exec.CommandContext(ctx, d.path,
			"--app-name=taskbell",
			"--icon="+alert.Icon,
			"--hint=string:x-dunst-stack-tag:"+alert.Tag,
			alert.Title, alert.Body)
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q", alert.Body, alert.Title)
		cmd = exec.CommandContext(ctx, d.path, "-e", script)
	default:
		return faults.New(faults.KindUnsupportedPlatform, "no notification renderer on %s", d.goos)
	}

	if out, err := cmd.CombinedOutput(); err != nil {
		return faults.New(faults.KindDeliveryFailed, "renderer %s failed: %v: %s", d.path, err, out)
	}
	return nil
}

// Beep plays the platform alert sound, best-effort.
type Beep struct{}

func (Beep) Play(ctx context.Context) error {
	switch runtime.GOOS {
	case "linux":
		if p, err := exec.LookPath("canberra-gtk-play"); err == nil {
			return exec.CommandContext(ctx, p, "-i", "message").Run()
		}
		if p, err := exec.LookPath("paplay"); err == nil {
			return exec.CommandContext(ctx, p, "/usr/share/sounds/freedesktop/stereo/message.oga").Run()
		}
	case "darwin":
		if p, err := exec.LookPath("afplay"); err == nil {
			return exec.CommandContext(ctx, p, "/System/Library/Sounds/Glass.aiff").Run()
		}
	}
	return nil
}
