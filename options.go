package relay

import (
	"log/slog"
	"time"

	"github.com/telhawk-systems/relay.go/internal/logging"
	"github.com/telhawk-systems/relay.go/internal/transport"
	"github.com/telhawk-systems/relay.go/metrics"
)

// CallbackExecutor is the only thread pool allowed to invoke
// user-supplied handlers and listeners, per spec.md §5. A single
// submission is expected to run to completion on whatever goroutine the
// executor chooses; relay.go's own serialDispatcher is what guarantees
// per-subscription and per-connection ordering on top of it.
type CallbackExecutor interface {
	Submit(fn func())
}

// goroutineExecutor is the default CallbackExecutor: every submission
// gets its own goroutine, the same unbounded-pool idiom the historical
// NATS Go client uses for its per-subscription delivery goroutines.
type goroutineExecutor struct{}

func (goroutineExecutor) Submit(fn func()) { go fn() }

// ErrorHandler processes an asynchronous broker protocol error
// (a -ERR frame) per spec.md §7.
type ErrorHandler func(err error)

// dialFunc abstracts TCP dialing so tests can substitute a fake
// transport. Declared as a named type so Options.dialFunc's signature reads
// clearly; the field itself stays unexported because it is a testing
// seam, not part of the public configuration surface described in
// spec.md §6.
type dialFunc func(addr string, timeout time.Duration, maxFrameSize int, h transport.Handlers) (transport.Transport, error)

func defaultDialFunc(addr string, timeout time.Duration, maxFrameSize int, h transport.Handlers) (transport.Transport, error) {
	return transport.DialTCP(addr, timeout, maxFrameSize, h)
}

// Options configures a Conn. Every field in spec.md §6's configuration
// table except eventLoopGroup is represented here: there is no option
// for an externally supplied reactor, and each TCP transport runs its
// own read goroutine. Added on top are the ambient fields named in
// SPEC_FULL.md §6.3 (Logger, Metrics, DrainTimeout). There is
// intentionally no fluent/chained builder on top of this struct: the
// "user-facing configuration builder" is named out of scope by
// spec.md §1.
type Options struct {
	// Hosts is the ordered list of broker endpoints. Required,
	// non-empty.
	Hosts []Endpoint

	// AutomaticReconnect, when true, keeps the reconnect loop running
	// until Close.
	AutomaticReconnect bool

	// ReconnectWaitTime is the delay between reconnect attempts.
	ReconnectWaitTime time.Duration

	// ConnectTimeout bounds a single dial attempt.
	ConnectTimeout time.Duration

	// Pedantic is sent in the CONNECT handshake, asking the broker for
	// strict subject validation.
	Pedantic bool

	// MaxFrameSize upper-bounds a single decoded MSG payload. <= 0
	// means unbounded.
	MaxFrameSize int

	// CallbackExecutor runs user handlers and listeners. Defaults to a
	// one-goroutine-per-submission pool.
	CallbackExecutor CallbackExecutor

	// Listeners are registered for connection-state notifications
	// before the first connect attempt.
	Listeners []Listener

	// ErrorHandler receives asynchronous broker protocol errors
	// (-ERR frames). Optional.
	ErrorHandler ErrorHandler

	// Logger receives structured engine logs. Defaults to a JSON
	// logger at info level.
	Logger *logging.Logger

	// Metrics, when set, instruments connection state transitions and
	// endpoint success/failure counters.
	Metrics *metrics.Collector

	// DrainTimeout bounds Conn.Drain.
	DrainTimeout time.Duration

	dialFunc dialFunc
}

// DefaultOptions returns an Options with the same conservative defaults
// the teacher's own NATS wrapper config picks: infinite automatic
// reconnect, a 2-second reconnect wait, and a 5-second connect timeout.
func DefaultOptions() Options {
	return Options{
		AutomaticReconnect: true,
		ReconnectWaitTime:  2 * time.Second,
		ConnectTimeout:     5 * time.Second,
		DrainTimeout:       5 * time.Second,
	}
}

func (o Options) withDefaults() Options {
	if o.CallbackExecutor == nil {
		o.CallbackExecutor = goroutineExecutor{}
	}
	if o.Logger == nil {
		o.Logger = logging.New(slog.LevelInfo, "json")
	}
	if o.ReconnectWaitTime <= 0 {
		o.ReconnectWaitTime = 2 * time.Second
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = 5 * time.Second
	}
	if o.DrainTimeout <= 0 {
		o.DrainTimeout = 5 * time.Second
	}
	if o.dialFunc == nil {
		o.dialFunc = defaultDialFunc
	}
	return o
}
