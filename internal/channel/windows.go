package channel

import (
	"context"
	"os/exec"
	"runtime"
	"strings"
)

// DesktopWindows opens routes in the user's browser against the foreground
// server's base URL. True window focusing needs a window-manager handle we
// do not have from a detached worker, so Focus reports false and the
// focus-before-open contract degrades to open.
type DesktopWindows struct {
	BaseURL string
}

func NewDesktopWindows(baseURL string) *DesktopWindows {
	return &DesktopWindows{BaseURL: strings.TrimRight(baseURL, "/")}
}

func (d *DesktopWindows) Focus(ctx context.Context, route string) bool {
	return false
}

func (d *DesktopWindows) Open(ctx context.Context, route string) error {
	url := d.BaseURL + route
	switch runtime.GOOS {
	case "darwin":
		return exec.CommandContext(ctx, "open", url).Start()
	case "windows":
		return exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.CommandContext(ctx, "xdg-open", url).Start()
	}
}
