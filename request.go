package relay

import (
	"time"

	"github.com/telhawk-systems/relay.go/internal/reqreply"
)

// Request is the handle returned by Conn.Request / Conn.RequestMax. It
// is built entirely on top of the subscription mechanism, per spec.md
// §4.4: an inbox subscription plus a one-shot timer that closes it.
type Request struct {
	subject string // the generated inbox subject
	sub     *Subscription
}

// Subject returns the generated inbox subject the request is listening
// on.
func (r *Request) Subject() string { return r.subject }

// ReceivedReplies returns the number of replies delivered so far.
func (r *Request) ReceivedReplies() uint64 { return r.sub.ReceivedCount() }

// MaxReplies returns the configured reply cap, or (0, false) if
// unlimited.
func (r *Request) MaxReplies() (uint64, bool) { return r.sub.MaxMessages() }

// Close stops the request early: the underlying subscription closes
// and the timeout timer, if it fires later, is a no-op. Idempotent.
func (r *Request) Close() error {
	return r.sub.Close()
}

// Request publishes body to subject with a generated inbox as the
// reply-to, and returns a handle collecting replies until timeout
// elapses. Every matching reply (unbounded) invokes every handler in
// order. A nil body is rejected synchronously per spec.md §4.4.
func (c *Conn) Request(subject string, body []byte, timeout time.Duration, handlers ...Handler) (*Request, error) {
	return c.request(subject, body, timeout, nil, handlers...)
}

// RequestMax is Request with an explicit cap on the number of replies
// collected; the inbox subscription auto-closes once maxReplies is
// reached, same as any other capped subscription.
func (c *Conn) RequestMax(subject string, body []byte, timeout time.Duration, maxReplies uint64, handlers ...Handler) (*Request, error) {
	return c.request(subject, body, timeout, &maxReplies, handlers...)
}

func (c *Conn) request(subject string, body []byte, timeout time.Duration, maxReplies *uint64, handlers ...Handler) (*Request, error) {
	if c.IsClosed() {
		return nil, ErrClosed
	}
	if body == nil {
		return nil, ErrNilBody
	}

	inbox := reqreply.NewInbox()
	sub, err := c.subscribeWith(inbox, "", maxReplies, composeHandlers(handlers))
	if err != nil {
		return nil, err
	}

	req := &Request{subject: inbox, sub: sub}

	// A fired timer closing an already-closed subscription is a no-op
	// (Subscription.Close is idempotent), so there is no need to track
	// and cancel the timer separately from closing the request early.
	time.AfterFunc(timeout, func() {
		_ = sub.Close()
	})

	if err := c.PublishRequest(subject, body, inbox); err != nil {
		_ = sub.Close()
		return nil, err
	}

	return req, nil
}

// composeHandlers folds zero or more handlers into one that invokes
// each in order. An empty slice yields a no-op handler.
func composeHandlers(handlers []Handler) Handler {
	switch len(handlers) {
	case 0:
		return func(*Message) {}
	case 1:
		return handlers[0]
	default:
		return func(m *Message) {
			for _, h := range handlers {
				h(m)
			}
		}
	}
}
