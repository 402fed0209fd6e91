// Package metrics provides optional Prometheus instrumentation for the
// connection engine: state transitions, endpoint success/failure
// counters, and messages published/delivered. Wiring this in is
// opt-in — a nil *Collector (the default) means the engine never
// touches Prometheus at all.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collector holds the Prometheus metrics the engine updates. Register
// it with a prometheus.Registerer (or leave it on the default registry
// via NewCollector) before passing it to relay.Options.Metrics.
type Collector struct {
	StateTransitions  *prometheus.CounterVec
	EndpointSuccesses *prometheus.CounterVec
	EndpointFailures  *prometheus.CounterVec
	MessagesPublished prometheus.Counter
	MessagesDelivered prometheus.Counter
	Reconnects        prometheus.Counter
}

// NewCollector builds a Collector and registers its metrics with reg.
// Pass prometheus.DefaultRegisterer to use the global registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		StateTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_connection_state_transitions_total",
			Help: "Count of connection engine state transitions, labeled by target state.",
		}, []string{"state"}),
		EndpointSuccesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_endpoint_dial_success_total",
			Help: "Count of successful dials per broker endpoint.",
		}, []string{"endpoint"}),
		EndpointFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_endpoint_dial_failure_total",
			Help: "Count of failed dials and dropped connections per broker endpoint.",
		}, []string{"endpoint"}),
		MessagesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "relay_messages_published_total",
			Help: "Count of messages published to the broker.",
		}),
		MessagesDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "relay_messages_delivered_total",
			Help: "Count of messages delivered to subscription handlers.",
		}),
		Reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "relay_reconnects_total",
			Help: "Count of completed reconnects.",
		}),
	}

	reg.MustRegister(
		c.StateTransitions,
		c.EndpointSuccesses,
		c.EndpointFailures,
		c.MessagesPublished,
		c.MessagesDelivered,
		c.Reconnects,
	)
	return c
}
