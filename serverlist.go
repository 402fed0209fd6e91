package relay

import "sync/atomic"

// Endpoint identifies a single broker address, optionally carrying
// handshake credentials. Identity is the address; the success/failure
// counters are monotonic and exist purely for caller diagnostics and
// tie-break decisions, never for reordering the rotation.
type Endpoint struct {
	Address  string
	User     string
	Password string

	successCount uint64
	failureCount uint64
}

// RecordSuccess increments the endpoint's success counter. Safe for
// concurrent use.
func (e *Endpoint) RecordSuccess() {
	atomic.AddUint64(&e.successCount, 1)
}

// RecordFailure increments the endpoint's failure counter. Safe for
// concurrent use.
func (e *Endpoint) RecordFailure() {
	atomic.AddUint64(&e.failureCount, 1)
}

// SuccessCount returns the number of recorded successful dials.
func (e *Endpoint) SuccessCount() uint64 {
	return atomic.LoadUint64(&e.successCount)
}

// FailureCount returns the number of recorded failures: failed dials,
// plus links to this endpoint that dropped after a successful dial.
func (e *Endpoint) FailureCount() uint64 {
	return atomic.LoadUint64(&e.failureCount)
}

// serverList is an ordered, round-robin rotation of Endpoints. It holds
// no lock of its own: callers (the Conn) serialize access under the
// engine lock, matching spec.md's single-coarse-lock model.
type serverList struct {
	endpoints []*Endpoint
	cursor    int
	current   *Endpoint
}

// newServerList constructs a rotation from a non-empty slice of
// endpoints. An empty list is a programmer error per spec.md §4.1 and
// is reported as ErrNoServers by the caller (Connect), not panicked
// here, so construction-time validation stays in one place.
func newServerList(endpoints []*Endpoint) *serverList {
	return &serverList{endpoints: endpoints}
}

// nextServer returns the next endpoint in round-robin order, wrapping
// at the end of the list. Calling this on an empty list is a
// programmer error and panics, matching spec.md §4.1's failure mode.
func (s *serverList) nextServer() *Endpoint {
	if len(s.endpoints) == 0 {
		panic("relay: nextServer called on empty server list")
	}
	e := s.endpoints[s.cursor]
	s.cursor = (s.cursor + 1) % len(s.endpoints)
	s.current = e
	return e
}

// currentServer returns the last endpoint handed out by nextServer.
func (s *serverList) currentServer() *Endpoint {
	return s.current
}

func (s *serverList) len() int {
	return len(s.endpoints)
}
