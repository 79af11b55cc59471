// Package channel is the message channel between the foreground process and
// the background worker. The two sides share no memory; everything crosses
// this protocol: push payloads out to the worker, click events back, and a
// PING/PONG liveness probe so the foreground can tell whether the worker is
// alive without guessing from side effects.
package channel

import (
	"strings"

	"github.com/taskbell/taskbell/internal/notify"
)

// NATS subjects.
const (
	SubjectPush     = "taskbell.push"
	SubjectClick    = "taskbell.click"
	SubjectLiveness = "taskbell.worker.liveness"
)

// PushNotification is the structured half of a push payload.
type PushNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// PushPayload is the inbound push wire format. A missing Notification field
// selects the generic fallback render path.
type PushPayload struct {
	Notification *PushNotification `json:"notification,omitempty"`
	Data         map[string]string `json:"data,omitempty"`
}

// Ping is the liveness request.
type Ping struct {
	Type string `json:"type"` // "PING"
}

// Pong is the liveness reply. Timestamp is unix milliseconds.
type Pong struct {
	Type      string `json:"type"`   // "PONG"
	Status    string `json:"status"` // "active"
	Timestamp int64  `json:"timestamp"`
}

// ClickEvent reports a user interaction with a rendered notification.
type ClickEvent struct {
	Tag    string            `json:"tag"`
	Action string            `json:"action,omitempty"` // "view", "close" or empty (body click)
	Data   map[string]string `json:"data,omitempty"`
}

// AlertForPush resolves the one render path for a push payload. The
// structured check short-circuits the generic path, so a single push event
// can never render twice.
func AlertForPush(p PushPayload) notify.Alert {
	if p.Notification != nil {
		alert := notify.GenericAlert()
		alert.Title = p.Notification.Title
		alert.Body = p.Notification.Body
		alert.Data = p.Data
		if taskID := p.Data["taskId"]; taskID != "" {
			// Tag from the task id: repeated pushes for one task replace
			// the previous notification instead of stacking.
			alert.Tag = "task-" + taskID
		}
		return alert
	}
	return notify.GenericAlert()
}

// ResolveRoute turns a click into a destination route. The notification's
// data decides the default; an action button may override it. A "close"
// action dismisses without navigating.
func ResolveRoute(e ClickEvent) (route string, navigate bool) {
	if e.Action == "close" {
		return "", false
	}
	if taskID := strings.TrimSpace(e.Data["taskId"]); taskID != "" {
		return "/tasks/" + taskID, true
	}
	return "/", true
}
