package permission

import (
	"context"
	"os"
	"os/exec"
	"strings"
)

// FileProber persists the granted/denied decision in a small state file,
// standing in for the platform permission store. Prompting uses a zenity
// dialog when one is available; on systems without zenity the renderer is
// not permission-gated by the OS at all, so the prompt resolves to GRANTED.
type FileProber struct {
	Path string
}

func NewFileProber(path string) *FileProber {
	return &FileProber{Path: path}
}

func (p *FileProber) Current(ctx context.Context) State {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return StateDefault
	}
	switch strings.TrimSpace(string(data)) {
	case "granted":
		return StateGranted
	case "denied":
		return StateDenied
	default:
		return StateDefault
	}
}

func (p *FileProber) Prompt(ctx context.Context) State {
	state := StateGranted
	if zenity, err := exec.LookPath("zenity"); err == nil {
		cmd := exec.CommandContext(ctx, zenity,
			"--question",
			"--title=taskbell",
			"--text=Allow taskbell to show notifications?")
		if err := cmd.Run(); err != nil {
			state = StateDenied
		}
	}

	p.persist(state)
	return state
}

func (p *FileProber) persist(state State) {
	value := "default"
	switch state {
	case StateGranted:
		value = "granted"
	case StateDenied:
		value = "denied"
	}
	_ = os.WriteFile(p.Path, []byte(value+"\n"), 0o644)
}
