package relay

import (
	"sync"

	"github.com/telhawk-systems/relay.go/internal/logging"
)

// Handler processes a message delivered to a Subscription. It is always
// invoked on the connection's callback executor, never on the network
// I/O goroutine and never while the engine lock is held.
type Handler func(msg *Message)

// dispatchQueueDepth bounds how many undelivered items a single
// serialDispatcher will buffer before a submit blocks. Generous enough
// to absorb bursts without unbounded growth.
const dispatchQueueDepth = 1024

// Subscription represents interest in a subject, surviving reconnects
// until explicitly closed or until maxMessages is reached.
type Subscription struct {
	id         string
	subject    string
	queueGroup string
	handler    Handler
	conn       *Conn

	mu            sync.Mutex
	maxMessages   *uint64
	receivedCount uint64
	closed        bool

	dispatch *serialDispatcher
}

func newSubscription(conn *Conn, id, subject, queueGroup string, maxMessages *uint64, handler Handler) *Subscription {
	s := &Subscription{
		id:          id,
		subject:     subject,
		queueGroup:  queueGroup,
		handler:     handler,
		conn:        conn,
		maxMessages: maxMessages,
		dispatch:    newSerialDispatcher(),
	}
	conn.submitCallback(s.dispatch.run)
	return s
}

func (s *Subscription) invoke(m *Message) {
	defer func() {
		if r := recover(); r != nil {
			s.conn.logger().Error("subscription handler panicked",
				logging.Subject(s.subject), logging.SubscriptionID(s.id), "panic", r)
		}
	}()
	s.handler(m)
}

// ID returns the process-unique subscription id (decimal ASCII of a
// monotonic counter on the wire).
func (s *Subscription) ID() string { return s.id }

// Subject returns the subscribed subject.
func (s *Subscription) Subject() string { return s.subject }

// QueueGroup returns the optional queue group, or "" if none.
func (s *Subscription) QueueGroup() string { return s.queueGroup }

// MaxMessages returns the configured delivery cap, or (0, false) if
// unlimited.
func (s *Subscription) MaxMessages() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.maxMessages == nil {
		return 0, false
	}
	return *s.maxMessages, true
}

// ReceivedCount returns the number of messages delivered so far.
// Monotonic across reconnects; never reset.
func (s *Subscription) ReceivedCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.receivedCount
}

// IsClosed reports whether the subscription has been closed, either
// explicitly or by reaching MaxMessages.
func (s *Subscription) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close removes the subscription from the registry, writes an UNSUB
// frame if the connection is ready, and stops the dispatch loop.
// Idempotent: a no-op on an already-closed subscription.
func (s *Subscription) Close() error {
	if !s.markClosed() {
		return nil
	}
	s.dispatch.stop()
	s.conn.removeSubscription(s.id)
	return nil
}

func (s *Subscription) markClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.closed = true
	return true
}

// deliver is the capability-abstraction boundary described in spec.md
// §4.3: increment receivedCount under the subscription's own lock, drop
// once strictly over max, and schedule auto-close exactly at the
// equality edge, after handing the message to the dispatch queue so the
// handler still fires for the message that reached the cap.
func (s *Subscription) deliver(m *Message) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.receivedCount++
	count := s.receivedCount
	max := s.maxMessages
	s.mu.Unlock()

	if max != nil && count > *max {
		return
	}

	s.dispatch.submit(func() { s.invoke(m) })

	if max != nil && count == *max {
		_ = s.Close()
	}
}
