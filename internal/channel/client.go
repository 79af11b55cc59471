package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/taskbell/taskbell/internal/faults"
	"github.com/taskbell/taskbell/internal/logger"
)

// Client is the foreground side of the channel: it publishes push payloads
// and probes worker liveness.
type Client struct {
	nc     *nats.Conn
	logger *logger.Logger
}

// NewClient creates the foreground channel client. Returns nil when no NATS
// connection is available; callers treat a nil client as "push not
// configured".
func NewClient(nc *nats.Conn, log *logger.Logger) *Client {
	if nc == nil {
		return nil
	}
	return &Client{
		nc:     nc,
		logger: log.WithComponent("channel-client"),
	}
}

// PublishPush sends a push payload to the background worker.
func (c *Client) PublishPush(ctx context.Context, payload PushPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return faults.Wrap(faults.KindBackgroundSync, fmt.Errorf("marshal push payload: %w", err))
	}
	if err := c.nc.Publish(SubjectPush, data); err != nil {
		return faults.Wrap(faults.KindNetworkError, fmt.Errorf("publish push: %w", err))
	}
	return nil
}

// Probe sends a PING and waits for the worker's PONG. It returns the
// worker-reported timestamp on success.
func (c *Client) Probe(ctx context.Context) (time.Time, error) {
	req, _ := json.Marshal(Ping{Type: "PING"})

	msg, err := c.nc.RequestWithContext(ctx, SubjectLiveness, req)
	if err != nil {
		return time.Time{}, faults.Wrap(faults.KindWorkerError, fmt.Errorf("liveness probe: %w", err))
	}

	var pong Pong
	if err := json.Unmarshal(msg.Data, &pong); err != nil {
		return time.Time{}, faults.Wrap(faults.KindWorkerError, fmt.Errorf("decode liveness reply: %w", err))
	}
	if pong.Type != "PONG" || pong.Status != "active" {
		return time.Time{}, faults.New(faults.KindWorkerError, "unexpected liveness reply: type=%s status=%s", pong.Type, pong.Status)
	}

	c.logger.Debug("worker liveness confirmed", "timestamp", pong.Timestamp)
	return time.UnixMilli(pong.Timestamp), nil
}
