package relay

import (
	"fmt"
	"sync"
	"time"

	"github.com/telhawk-systems/relay.go/internal/codec"
	"github.com/telhawk-systems/relay.go/internal/logging"
	"github.com/telhawk-systems/relay.go/internal/transport"
)

// Conn is the connection engine and client facade combined, the way
// the historical NATS Go client's single Conn type owns both the state
// machine and the public surface. It exclusively owns the transport
// handle, the outbound queue, and the subscription registry (spec.md
// §3 "Ownership"); every field below is guarded by mu, the single
// coarse lock described in spec.md §5.
type Conn struct {
	opts Options

	mu        sync.Mutex
	state     engineState
	servers   *serverList
	queue     *outboundQueue
	registry  *subscriptionRegistry
	transport transport.Transport
	listeners []Listener
	everReady bool

	periodics      map[uint64]*periodicRegistration
	nextPeriodicID uint64

	notify   *serialDispatcher
	closedCh chan struct{}
}

// Connect validates opts and returns a Conn whose engine begins dialing
// in the background immediately. It never blocks on the network: the
// returned Conn starts DISCONNECTED and transitions asynchronously, so
// publishes and subscriptions issued right away are simply queued /
// registered per spec.md §4.5.
func Connect(opts Options) (*Conn, error) {
	opts = opts.withDefaults()
	if len(opts.Hosts) == 0 {
		return nil, ErrNoServers
	}

	endpoints := make([]*Endpoint, len(opts.Hosts))
	for i := range opts.Hosts {
		e := opts.Hosts[i]
		endpoints[i] = &e
	}

	c := &Conn{
		opts:      opts,
		state:     engineDisconnected,
		servers:   newServerList(endpoints),
		queue:     &outboundQueue{},
		registry:  newSubscriptionRegistry(),
		listeners: append([]Listener(nil), opts.Listeners...),
		periodics: make(map[uint64]*periodicRegistration),
		notify:    newSerialDispatcher(),
		closedCh:  make(chan struct{}),
	}

	c.submitCallback(c.notify.run)
	go c.connectOnce()
	return c, nil
}

func (c *Conn) logger() *logging.Logger { return c.opts.Logger }

func (c *Conn) submitCallback(fn func()) { c.opts.CallbackExecutor.Submit(fn) }

// connectOnce dials the next server in rotation. Called both for the
// initial connect and for every scheduled reconnect attempt.
func (c *Conn) connectOnce() {
	c.mu.Lock()
	if c.state == engineClosed {
		c.mu.Unlock()
		return
	}
	c.state = engineConnecting
	server := c.servers.nextServer()
	dial := c.opts.dialFunc
	timeout := c.opts.ConnectTimeout
	maxFrame := c.opts.MaxFrameSize
	c.mu.Unlock()

	tr, err := dial(server.Address, timeout, maxFrame, transport.Handlers{
		OnFrame:    c.onFrame,
		OnInactive: c.onInactive,
	})

	c.mu.Lock()
	if c.state == engineClosed {
		c.mu.Unlock()
		if tr != nil {
			_ = tr.Close()
		}
		return
	}
	if err != nil {
		server.RecordFailure()
		c.state = engineDisconnected
		automatic := c.opts.AutomaticReconnect
		c.mu.Unlock()

		c.bumpFailureMetric(server)
		c.logger().Warn("dial failed",
			logging.Endpoint(server.Address), logging.Error(err), logging.Attempt(int(server.FailureCount())))
		if automatic {
			c.scheduleReconnect()
		}
		return
	}

	server.RecordSuccess()
	c.transport = tr
	c.state = engineConnected
	c.mu.Unlock()

	c.bumpSuccessMetric(server)
	c.bumpStateMetric(StateConnected)
	c.notifyListeners(StateConnected)
}

// scheduleReconnect arranges another connectOnce after ReconnectWaitTime.
// connectOnce itself re-checks CLOSED under the lock before dialing, so
// a close that races with a pending reconnect timer becomes a no-op.
func (c *Conn) scheduleReconnect() {
	time.AfterFunc(c.opts.ReconnectWaitTime, c.connectOnce)
}

// onFrame is invoked on the transport's read goroutine, never while the
// engine lock is held by the caller.
func (c *Conn) onFrame(frame *codec.Frame) {
	switch frame.Op {
	case codec.OpInfo:
		c.handleInfo()
	case codec.OpMsg:
		c.handleMsg(frame)
	case codec.OpPing:
		c.handlePing()
	case codec.OpErr:
		c.handleErr(frame)
	case codec.OpOK, codec.OpPong:
		// Nothing to do: this module does not implement a PING/PONG
		// flush rendezvous; Flush's synchronous return is treated as
		// completion.
	}
}

// handleInfo runs the CONNECT handshake and, on success, atomically
// (under the engine lock) flips SERVER_READY, resubscribes every live
// subscription, and drains the outbound queue — in that order, per
// spec.md §4.5's ordering guarantee that resubscription precedes
// re-publish on every reconnect.
func (c *Conn) handleInfo() {
	c.mu.Lock()
	if c.state != engineConnected {
		c.mu.Unlock()
		return
	}
	server := c.servers.currentServer()
	bw := c.transport.BufWriter()

	if err := codec.WriteConnect(bw, server.User, server.Password, c.opts.Pedantic, false); err != nil {
		c.mu.Unlock()
		c.dropTransport(err)
		return
	}
	if err := c.transport.Flush(); err != nil {
		c.mu.Unlock()
		c.dropTransport(err)
		return
	}

	c.state = engineServerReady

	for _, s := range c.registry.snapshot() {
		if err := codec.WriteSub(bw, s.subject, s.queueGroup, s.id); err != nil {
			c.mu.Unlock()
			c.dropTransport(err)
			return
		}
	}

	drained := 0
	drainErr := c.queue.drainInto(func(p PendingPublish) error {
		drained++
		return codec.WritePub(bw, p.Subject, p.ReplyTo, p.Body)
	})
	if drainErr == nil {
		drainErr = c.transport.Flush()
	}

	reconnect := c.everReady
	c.everReady = true
	c.mu.Unlock()

	if drainErr != nil {
		c.dropTransport(drainErr)
		return
	}

	for i := 0; i < drained; i++ {
		c.bumpPublishedMetric()
	}
	if reconnect {
		c.bumpReconnectMetric()
	}
	c.bumpStateMetric(StateServerReady)
	c.notifyListeners(StateServerReady)
}

// handleMsg looks up the target subscription under the engine lock,
// releases it, and hands the message to the subscription's own
// dispatch queue — the engine lock is never held while a handler runs.
func (c *Conn) handleMsg(frame *codec.Frame) {
	c.mu.Lock()
	sub := c.registry.byID(frame.Sid)
	c.mu.Unlock()

	if sub == nil {
		// A legitimate race with a just-closed subscription, per
		// spec.md §4.3 and §9's open question: log and drop.
		c.logger().Debug("message for unknown subscription, dropping",
			logging.Subject(frame.Subject), logging.SubscriptionID(frame.Sid))
		return
	}

	c.bumpDeliveredMetric()
	sub.deliver(&Message{Subject: frame.Subject, Body: frame.Body, ReplyTo: frame.ReplyTo, conn: c})
}

func (c *Conn) handlePing() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.transport == nil {
		return
	}
	if err := codec.WritePong(c.transport.BufWriter()); err != nil {
		return
	}
	_ = c.transport.Flush()
}

// handleErr surfaces a broker -ERR as an asynchronous error per
// spec.md §7 and then drops the transport, which is one of the two
// acceptable responses the spec allows ("the transport will typically
// also drop").
func (c *Conn) handleErr(frame *codec.Frame) {
	err := fmt.Errorf("relay: broker error: %s", frame.Err)
	c.logger().Error("broker protocol error", logging.Error(err))

	if handler := c.opts.ErrorHandler; handler != nil {
		c.submitCallback(func() { handler(err) })
	}
	c.dropTransport(err)
}

// dropTransport force-closes the current transport so its read
// goroutine observes inactivity and drives the normal onInactive path,
// rather than duplicating the disconnect transition in two places.
func (c *Conn) dropTransport(_ error) {
	c.mu.Lock()
	tr := c.transport
	c.mu.Unlock()
	if tr != nil {
		_ = tr.Close()
	}
}

// onInactive fires exactly once per dead link, from the transport's
// read goroutine.
func (c *Conn) onInactive(_ error) {
	c.mu.Lock()
	if c.state == engineClosed {
		c.mu.Unlock()
		return
	}
	server := c.servers.currentServer()
	c.state = engineDisconnected
	c.transport = nil
	automatic := c.opts.AutomaticReconnect
	c.mu.Unlock()

	if server != nil {
		server.RecordFailure()
		c.bumpFailureMetric(server)
	}

	c.bumpStateMetric(StateDisconnected)
	c.notifyListeners(StateDisconnected)

	if automatic {
		c.scheduleReconnect()
	}
}

func (c *Conn) notifyListeners(state ConnState) {
	c.mu.Lock()
	ls := append([]Listener(nil), c.listeners...)
	c.mu.Unlock()
	if len(ls) == 0 {
		return
	}
	c.notify.submit(func() {
		for _, l := range ls {
			l(state)
		}
	})
}

// AddListener registers an additional connection-state listener.
func (c *Conn) AddListener(l Listener) {
	c.mu.Lock()
	c.listeners = append(c.listeners, l)
	c.mu.Unlock()
}

// IsConnected reports whether the engine is SERVER_READY: the CONNECT
// handshake has completed and user traffic flows directly.
func (c *Conn) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == engineServerReady
}

// IsClosed reports whether Close has been called. Once true, it stays
// true forever.
func (c *Conn) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == engineClosed
}

// Close is idempotent and terminal: it sets CLOSED, closes the
// transport if open, stops every periodic-publish registration, closes
// every subscription (snapshotting first to avoid a concurrent-
// modification race with Subscription.Close's own removeSubscription
// call), and notifies listeners of a final DISCONNECTED.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.state == engineClosed {
		c.mu.Unlock()
		return nil
	}
	c.state = engineClosed
	tr := c.transport
	c.transport = nil
	subs := c.registry.snapshot()
	c.mu.Unlock()

	if tr != nil {
		_ = tr.Close()
	}
	for _, p := range c.periodicsSnapshot() {
		p.stop()
	}
	for _, s := range subs {
		_ = s.Close()
	}

	c.notifyListeners(StateDisconnected)
	c.notify.stop()
	close(c.closedCh)
	return nil
}

func (c *Conn) bumpSuccessMetric(e *Endpoint) {
	if m := c.opts.Metrics; m != nil {
		m.EndpointSuccesses.WithLabelValues(e.Address).Inc()
	}
}

func (c *Conn) bumpFailureMetric(e *Endpoint) {
	if m := c.opts.Metrics; m != nil {
		m.EndpointFailures.WithLabelValues(e.Address).Inc()
	}
}

func (c *Conn) bumpStateMetric(s ConnState) {
	if m := c.opts.Metrics; m != nil {
		m.StateTransitions.WithLabelValues(s.String()).Inc()
	}
}

func (c *Conn) bumpPublishedMetric() {
	if m := c.opts.Metrics; m != nil {
		m.MessagesPublished.Inc()
	}
}

func (c *Conn) bumpDeliveredMetric() {
	if m := c.opts.Metrics; m != nil {
		m.MessagesDelivered.Inc()
	}
}

func (c *Conn) bumpReconnectMetric() {
	if m := c.opts.Metrics; m != nil {
		m.Reconnects.Inc()
	}
}
