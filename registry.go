package relay

import "strconv"

// subscriptionRegistry maps subscription id to Subscription and owns
// the monotonic id counter. Like serverList and outboundQueue it is
// unsynchronized; the Conn guards every access under the engine lock.
type subscriptionRegistry struct {
	subs   map[string]*Subscription
	nextID uint64
}

func newSubscriptionRegistry() *subscriptionRegistry {
	return &subscriptionRegistry{subs: make(map[string]*Subscription)}
}

// create registers a new subscription under the next id and returns it. The
// caller (Conn.subscribeWith) is responsible for actually writing the
// SUB frame when appropriate.
func (r *subscriptionRegistry) create(conn *Conn, subject, queueGroup string, maxMessages *uint64, handler Handler) *Subscription {
	r.nextID++
	id := strconv.FormatUint(r.nextID, 10)
	sub := newSubscription(conn, id, subject, queueGroup, maxMessages, handler)
	r.subs[id] = sub
	return sub
}

// byID looks up a subscription. Returns nil if absent — a legitimate
// race with a just-closed subscription per spec.md §4.3.
func (r *subscriptionRegistry) byID(id string) *Subscription {
	return r.subs[id]
}

// remove deletes a subscription from the registry. Silent if already
// absent.
func (r *subscriptionRegistry) remove(id string) {
	delete(r.subs, id)
}

// snapshot returns every live subscription, in no particular order, for
// resubscription on reconnect or for closing on shutdown. Taking a
// snapshot first avoids concurrent-modification with remove.
func (r *subscriptionRegistry) snapshot() []*Subscription {
	out := make([]*Subscription, 0, len(r.subs))
	for _, s := range r.subs {
		out = append(out, s)
	}
	return out
}
