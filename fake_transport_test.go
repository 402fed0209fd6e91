package relay

import (
	"bufio"
	"bytes"
	"errors"
	"sync"
	"time"

	"github.com/telhawk-systems/relay.go/internal/codec"
	"github.com/telhawk-systems/relay.go/internal/transport"
)

var errDialRefused = errors.New("fake: dial refused")

// fakeTransport is an in-memory stand-in for internal/transport.TCP: it
// captures every written frame instead of putting it on a socket, and
// lets a test drive OnFrame/OnInactive directly to simulate a broker.
// Grounded on the same "fake the collaborator at its interface boundary"
// approach the teacher's own service tests use for external clients.
type fakeTransport struct {
	mu       sync.Mutex
	buf      bytes.Buffer
	bw       *bufio.Writer
	handlers transport.Handlers
	closed   bool
}

func newFakeTransport(h transport.Handlers) *fakeTransport {
	f := &fakeTransport{handlers: h}
	f.bw = bufio.NewWriter(&f.buf)
	return f
}

func (f *fakeTransport) BufWriter() *bufio.Writer { return f.bw }

func (f *fakeTransport) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bw.Flush()
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	f.mu.Unlock()
	f.handlers.OnInactive(nil)
	return nil
}

func (f *fakeTransport) written() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buf.String()
}

func (f *fakeTransport) sendInfo() {
	f.handlers.OnFrame(&codec.Frame{Op: codec.OpInfo, Info: []byte(`{}`)})
}

func (f *fakeTransport) sendMsg(subject, sid, replyTo string, body []byte) {
	f.handlers.OnFrame(&codec.Frame{Op: codec.OpMsg, Subject: subject, Sid: sid, ReplyTo: replyTo, Body: body})
}

// fakeDialer hands out fakeTransports in dial order and records every
// address dialed, so tests can assert on server-list rotation.
type fakeDialer struct {
	mu       sync.Mutex
	dialed   []string
	conns    chan *fakeTransport
	failNext bool
}

func newFakeDialer() *fakeDialer {
	return &fakeDialer{conns: make(chan *fakeTransport, 16)}
}

func (d *fakeDialer) dial(addr string, _ time.Duration, _ int, h transport.Handlers) (transport.Transport, error) {
	d.mu.Lock()
	d.dialed = append(d.dialed, addr)
	fail := d.failNext
	d.failNext = false
	d.mu.Unlock()

	if fail {
		return nil, errDialRefused
	}

	tr := newFakeTransport(h)
	d.conns <- tr
	return tr, nil
}

// next blocks until the next dial's fakeTransport is available.
func (d *fakeDialer) next() *fakeTransport {
	select {
	case tr := <-d.conns:
		return tr
	case <-time.After(2 * time.Second):
		panic("fakeDialer: timed out waiting for dial")
	}
}

func (d *fakeDialer) addresses() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.dialed...)
}
