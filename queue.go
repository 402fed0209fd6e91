package relay

// outboundQueue is a FIFO of PendingPublish held while the connection is
// not SERVER_READY. Like serverList, it is unsynchronized: the Conn
// guards every access with the engine lock, so enqueue and drainInto
// are O(1) and O(n) respectively with no internal contention.
type outboundQueue struct {
	items []PendingPublish
}

// enqueue appends a publish to the tail of the queue.
func (q *outboundQueue) enqueue(p PendingPublish) {
	q.items = append(q.items, p)
}

// drainInto transfers every queued publish, in insertion order, to fn
// and empties the queue. Called with the engine lock held, so from the
// caller's perspective the transfer is atomic.
func (q *outboundQueue) drainInto(fn func(PendingPublish) error) error {
	items := q.items
	q.items = nil
	for _, p := range items {
		if err := fn(p); err != nil {
			return err
		}
	}
	return nil
}

func (q *outboundQueue) len() int {
	return len(q.items)
}
