// Package transport defines the capability abstraction the connection
// engine dials against: write a frame, flush it, close the link, and be
// told about inbound frames or a dead link. Generalizing away from any
// specific reactor vocabulary, as spec.md §9 puts it, this package's
// only concrete implementation is a net.Conn-backed TCP transport;
// tests substitute their own.
package transport

import (
	"bufio"

	"github.com/telhawk-systems/relay.go/internal/codec"
)

// Handlers are the inbound callbacks a Transport invokes from its own
// read goroutine, never from a user call into the engine. The engine
// must not block inside them.
type Handlers struct {
	// OnFrame is invoked once per decoded frame, in wire-arrival order.
	OnFrame func(*codec.Frame)

	// OnInactive is invoked exactly once when the link goes away,
	// whether from a read error, a decoder error, or an explicit Close.
	// TCP passes the error that ended its read loop, so after an
	// explicit Close err is the closed connection's read error.
	OnInactive func(err error)
}

// Transport is the abstraction the engine depends on. BufWriter returns
// the buffered writer frames are encoded onto; Write calls against it
// must never block on the network round trip — only Flush pushes bytes
// onto the wire.
type Transport interface {
	// BufWriter returns the buffered writer the engine encodes frames
	// onto via the codec package's Write* functions.
	BufWriter() *bufio.Writer

	// Flush pushes any buffered outbound bytes onto the wire.
	Flush() error

	// Close tears down the link. Idempotent.
	Close() error
}
