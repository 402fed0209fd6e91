package relay

import "time"

// Registration is returned by Conn.PublishPeriodic and cancels the
// periodic publish it represents.
type Registration struct {
	id   uint64
	conn *Conn
}

// Remove cancels the periodic publish. Idempotent, and silent if the
// registration was never created (the client was already closed when
// PublishPeriodic was called) or has already been removed.
func (r *Registration) Remove() {
	if r.id == 0 {
		return
	}
	r.conn.removePeriodic(r.id)
}

// periodicRegistration is the engine-side bookkeeping for one
// PublishPeriodic call: a ticker goroutine plus the channel that stops
// it.
type periodicRegistration struct {
	ticker *time.Ticker
	done   chan struct{}
}

func (p *periodicRegistration) stop() {
	select {
	case <-p.done:
	default:
		close(p.done)
	}
}

// PublishPeriodic publishes body to subject every period, but only
// while the engine is SERVER_READY: ticks that land while disconnected
// are skipped, not queued, per spec.md §9's resolution of periodic
// publish's reconnect behavior. Calling Remove on the returned
// Registration stops it.
func (c *Conn) PublishPeriodic(subject string, body []byte, period time.Duration) *Registration {
	return c.publishPeriodic(subject, body, "", period)
}

// PublishPeriodicReply is PublishPeriodic with a fixed reply-to subject
// carried on every tick.
func (c *Conn) PublishPeriodicReply(subject string, body []byte, replyTo string, period time.Duration) *Registration {
	return c.publishPeriodic(subject, body, replyTo, period)
}

func (c *Conn) publishPeriodic(subject string, body []byte, replyTo string, period time.Duration) *Registration {
	c.mu.Lock()
	if c.state == engineClosed {
		c.mu.Unlock()
		return &Registration{conn: c}
	}
	c.nextPeriodicID++
	id := c.nextPeriodicID
	reg := &periodicRegistration{ticker: time.NewTicker(period), done: make(chan struct{})}
	c.periodics[id] = reg
	c.mu.Unlock()

	go func() {
		for {
			select {
			case <-reg.ticker.C:
				if c.IsConnected() {
					_ = c.publish(subject, body, replyTo)
				}
			case <-reg.done:
				reg.ticker.Stop()
				return
			}
		}
	}()

	return &Registration{id: id, conn: c}
}

func (c *Conn) removePeriodic(id uint64) {
	c.mu.Lock()
	reg, ok := c.periodics[id]
	if ok {
		delete(c.periodics, id)
	}
	c.mu.Unlock()
	if ok {
		reg.stop()
	}
}

// periodicsSnapshot returns every live periodic registration, for
// Conn.Close to stop them all.
func (c *Conn) periodicsSnapshot() []*periodicRegistration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*periodicRegistration, 0, len(c.periodics))
	for _, p := range c.periodics {
		out = append(out, p)
	}
	return out
}
