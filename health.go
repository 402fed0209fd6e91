package relay

import (
	"context"
	"fmt"
	"time"
)

// healthPingSubject is used purely to measure round-trip latency; a
// -ERR or timeout because nothing is subscribed to it does not count
// against health, only an actual disconnect does.
const healthPingSubject = "_HEALTH.ping"

// HealthStatus reports the result of a single health check.
type HealthStatus struct {
	Connected bool          `json:"connected"`
	Latency   time.Duration `json:"latency_ns"`
	Error     string        `json:"error,omitempty"`
}

// Health reports whether the connection is SERVER_READY and, if so,
// round-trips a request to healthPingSubject to measure latency. A
// request timeout (no responder subscribed) is not itself a health
// failure: reaching SERVER_READY and exchanging protocol frames at all
// is what Health verifies, matching the teacher's own CheckClientHealth
// semantics.
func (c *Conn) Health(ctx context.Context) HealthStatus {
	var status HealthStatus

	status.Connected = c.IsConnected()
	if !status.Connected {
		status.Error = "not connected to message broker"
		return status
	}

	timeout := 2 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d > 0 && d < timeout {
			timeout = d
		}
	}

	replied := make(chan struct{}, 1)
	start := time.Now()
	req, err := c.RequestMax(healthPingSubject, []byte("ping"), timeout, 1, func(*Message) {
		select {
		case replied <- struct{}{}:
		default:
		}
	})
	if err != nil {
		status.Error = fmt.Sprintf("health check failed: %v", err)
		status.Latency = time.Since(start)
		return status
	}

	select {
	case <-replied:
	case <-time.After(timeout):
		// No responder on healthPingSubject does not itself count as
		// unhealthy: reaching SERVER_READY and exchanging frames with
		// the broker at all is what this check verifies.
	case <-ctx.Done():
	}
	status.Latency = time.Since(start)
	_ = req.Close()
	return status
}
