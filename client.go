package relay

import (
	"time"

	"github.com/telhawk-systems/relay.go/internal/codec"
)

// Publish sends body to subject. While the engine is SERVER_READY the
// frame is written and flushed directly; otherwise it is appended to
// the outbound queue and replayed, in order, on the next successful
// reconnect (spec.md §4.2, §4.5).
func (c *Conn) Publish(subject string, body []byte) error {
	return c.publish(subject, body, "")
}

// PublishRequest is Publish with an explicit reply-to subject, the
// primitive Request is built on.
func (c *Conn) PublishRequest(subject string, body []byte, replyTo string) error {
	return c.publish(subject, body, replyTo)
}

func (c *Conn) publish(subject string, body []byte, replyTo string) error {
	c.mu.Lock()
	if c.state == engineClosed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state != engineServerReady {
		c.queue.enqueue(PendingPublish{Subject: subject, Body: body, ReplyTo: replyTo})
		c.mu.Unlock()
		return nil
	}

	bw := c.transport.BufWriter()
	err := codec.WritePub(bw, subject, replyTo, body)
	if err == nil {
		err = c.transport.Flush()
	}
	c.mu.Unlock()

	if err != nil {
		c.dropTransport(err)
		return err
	}
	c.bumpPublishedMetric()
	return nil
}

// Subscribe registers a handler for every message on subject.
func (c *Conn) Subscribe(subject string, handlers ...Handler) (*Subscription, error) {
	return c.subscribeWith(subject, "", nil, composeHandlers(handlers))
}

// QueueSubscribe registers a handler for subject, sharing delivery
// across every subscriber in the same queueGroup.
func (c *Conn) QueueSubscribe(subject, queueGroup string, handlers ...Handler) (*Subscription, error) {
	return c.subscribeWith(subject, queueGroup, nil, composeHandlers(handlers))
}

// SubscribeMax is Subscribe with an explicit delivery cap; the
// subscription auto-closes once maxMessages is reached.
func (c *Conn) SubscribeMax(subject string, maxMessages uint64, handlers ...Handler) (*Subscription, error) {
	return c.subscribeWith(subject, "", &maxMessages, composeHandlers(handlers))
}

// QueueSubscribeMax combines QueueSubscribe and SubscribeMax.
func (c *Conn) QueueSubscribeMax(subject, queueGroup string, maxMessages uint64, handlers ...Handler) (*Subscription, error) {
	return c.subscribeWith(subject, queueGroup, &maxMessages, composeHandlers(handlers))
}

// subscribeWith registers the subscription in the registry and, if the
// engine is already SERVER_READY, writes the SUB frame immediately.
// Otherwise the subscription rides along and is resent on the next
// handleInfo handshake (spec.md §4.5). It is the single entry point
// used by both the public Subscribe* family and Conn.request's inbox
// subscription.
func (c *Conn) subscribeWith(subject, queueGroup string, maxMessages *uint64, handler Handler) (*Subscription, error) {
	c.mu.Lock()
	if c.state == engineClosed {
		c.mu.Unlock()
		return nil, ErrClosed
	}

	sub := c.registry.create(c, subject, queueGroup, maxMessages, handler)

	if c.state == engineServerReady {
		bw := c.transport.BufWriter()
		err := codec.WriteSub(bw, subject, queueGroup, sub.id)
		if err == nil {
			err = c.transport.Flush()
		}
		if err != nil {
			c.registry.remove(sub.id)
			c.mu.Unlock()
			c.dropTransport(err)
			return nil, err
		}
	}
	c.mu.Unlock()
	return sub, nil
}

// removeSubscription is called exactly once by Subscription.Close. It
// drops the subscription from the registry and, if the engine is
// SERVER_READY, writes the matching UNSUB frame.
func (c *Conn) removeSubscription(id string) {
	c.mu.Lock()
	c.registry.remove(id)
	var err error
	if c.state == engineServerReady {
		bw := c.transport.BufWriter()
		err = codec.WriteUnsub(bw, id, nil)
		if err == nil {
			err = c.transport.Flush()
		}
	}
	c.mu.Unlock()

	if err != nil {
		c.dropTransport(err)
	}
}

// Drain unsubscribes every live subscription, waits up to
// Options.DrainTimeout for their dispatch queues to flush any messages
// already in flight, and then closes the connection. Unlike Close, it
// gives in-flight handlers a chance to finish before the transport
// goes away.
func (c *Conn) Drain() error {
	c.mu.Lock()
	if c.state == engineClosed {
		c.mu.Unlock()
		return nil
	}
	subs := c.registry.snapshot()
	timeout := c.opts.DrainTimeout
	c.mu.Unlock()

	for _, s := range subs {
		_ = s.Close()
	}

	deadline := time.Now().Add(timeout)
	for _, s := range subs {
		for s.dispatch.pending() > 0 {
			if time.Now().After(deadline) {
				break
			}
			time.Sleep(time.Millisecond)
		}
	}

	return c.Close()
}
