package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "realtime_events_published_total",
		Help: "Events handed to a transport, by transport, event and audience kind.",
	}, []string{"transport", "event", "audience"})

	publishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "realtime_publish_failures_total",
		Help: "Publish attempts that failed, by transport.",
	}, []string{"transport"})

	connections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "realtime_connections",
		Help: "Open WebSocket connections.",
	})

	droppedClients = promauto.NewCounter(prometheus.CounterOpts{
		Name: "realtime_dropped_clients_total",
		Help: "Sockets dropped because their send buffer was full.",
	})
)

// audienceKind keeps owner ids out of label cardinality.
func audienceKind(a Audience) string {
	if _, ok := a.OwnerID(); ok {
		return "owner"
	}
	return string(a)
}

// RecordFailure counts a failed publish for transport.
func RecordFailure(transport string) {
	publishFailures.WithLabelValues(transport).Inc()
}
