// Package relay is a client library for a text-line pub/sub message
// broker: a connection engine with server-list rotation and automatic
// reconnect, an outbound queue that buffers publishes while the link
// is not ready, a subscription registry that survives reconnects, and
// a request/reply broker built on top of subscriptions.
//
// Connect returns a *Conn immediately; the engine dials and performs
// the CONNECT handshake in the background. Publish, Subscribe, and
// Request are all safe to call before the first handshake completes:
// publishes queue, subscriptions register, and requests are free to
// publish once a subject is subscribed to by a peer.
//
//	conn, err := relay.Connect(relay.Options{
//		Hosts: []relay.Endpoint{{Address: "localhost:4222"}},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer conn.Close()
//
//	sub, err := conn.Subscribe("orders.created", func(m *relay.Message) {
//		fmt.Println(string(m.Body))
//	})
package relay
