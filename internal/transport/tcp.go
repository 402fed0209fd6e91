package transport

import (
	"bufio"
	"net"
	"sync"
	"time"

	"github.com/telhawk-systems/relay.go/internal/codec"
)

const (
	defaultBufSize = 32768
)

// TCP is the one concrete Transport shipped with this module: a
// net.Conn wrapped in buffered reader/writer, exactly as the historical
// NATS Go client wraps its socket, with a dedicated read goroutine that
// decodes frames and invokes Handlers.
type TCP struct {
	conn net.Conn
	bw   *bufio.Writer

	closeOnce sync.Once
	closeErr  error
}

// DialTCP connects to addr within timeout and starts the read loop.
// maxFrameSize <= 0 means unbounded decoded-frame size.
func DialTCP(addr string, timeout time.Duration, maxFrameSize int, h Handlers) (*TCP, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, err
	}
	t := &TCP{
		conn: conn,
		bw:   bufio.NewWriterSize(conn, defaultBufSize),
	}
	parser := codec.NewParser(bufio.NewReaderSize(conn, defaultBufSize), maxFrameSize)
	go t.readLoop(parser, h)
	return t, nil
}

func (t *TCP) readLoop(parser *codec.Parser, h Handlers) {
	for {
		frame, err := parser.ReadFrame()
		if err != nil {
			_ = t.Close()
			if h.OnInactive != nil {
				h.OnInactive(err)
			}
			return
		}
		if h.OnFrame != nil {
			h.OnFrame(frame)
		}
	}
}

// BufWriter returns the buffered writer frames are encoded onto.
func (t *TCP) BufWriter() *bufio.Writer {
	return t.bw
}

// Flush pushes any buffered outbound bytes onto the wire.
func (t *TCP) Flush() error {
	return t.bw.Flush()
}

// Close tears down the underlying connection. Idempotent; safe to call
// from both the engine and the read goroutine racing
// to report a dead link.
func (t *TCP) Close() error {
	t.closeOnce.Do(func() {
		t.closeErr = t.conn.Close()
	})
	return t.closeErr
}
