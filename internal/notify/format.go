package notify

import (
	"fmt"
	"time"

	"github.com/taskbell/taskbell/internal/task"
)

// Rendering assets shared by both delivery paths.
const (
	IconPath  = "icons/icon-192.png"
	BadgePath = "icons/badge-72.png"
)

// Action is a button attached to a rendered alert.
type Action struct {
	Action string `json:"action"`
	Title  string `json:"title"`
}

// Alert is the fully-resolved rendering payload for one notification.
// Building it lives here, next to the matcher, so the foreground and
// background paths render identically.
type Alert struct {
	Title              string            `json:"title"`
	Body               string            `json:"body"`
	Icon               string            `json:"icon"`
	Badge              string            `json:"badge"`
	Tag                string            `json:"tag"`
	Data               map[string]string `json:"data,omitempty"`
	RequireInteraction bool              `json:"requireInteraction"`
	Vibrate            []int             `json:"vibrate"`
	Actions            []Action          `json:"actions"`
}

func baseAlert(tag string, data map[string]string) Alert {
	return Alert{
		Icon:               IconPath,
		Badge:              BadgePath,
		Tag:                tag,
		Data:               data,
		RequireInteraction: true,
		Vibrate:            []int{100, 50, 100},
		Actions: []Action{
			{Action: "view", Title: "View task"},
			{Action: "close", Title: "Dismiss"},
		},
	}
}

// TaskAlert builds the alert for a due task. The tag is derived from the task
// ID so a repeat alert replaces the previous one instead of stacking.
func TaskAlert(t task.Task, lead time.Duration) Alert {
	a := baseAlert("task-"+t.ID, map[string]string{"taskId": t.ID})
	a.Title = "Task due soon"
	a.Body = fmt.Sprintf("%q is due in %s", t.Title, formatLead(lead))
	return a
}

// GenericAlert is the fallback rendering for a push without a structured
// payload. Same rendering discipline as a task alert, just without a task.
func GenericAlert() Alert {
	a := baseAlert("taskbell-generic", nil)
	a.Title = "Taskbell"
	a.Body = "You have a pending notification"
	return a
}

func formatLead(lead time.Duration) string {
	if lead >= time.Hour && lead%time.Hour == 0 {
		hours := int(lead / time.Hour)
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	minutes := int(lead / time.Minute)
	if minutes == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}
