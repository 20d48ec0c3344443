package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_events_received_total",
		Help: "The total number of events entering the pipeline",
	})
	duplicatesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_duplicates_skipped_total",
		Help: "The total number of events dropped as duplicates",
	})
	disabledSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_disabled_skipped_total",
		Help: "The total number of events skipped by type toggles",
	})
	eventsDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_events_delivered_total",
		Help: "The total number of events delivered to the chat",
	})
	deliveryFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_delivery_failures_total",
		Help: "The total number of events whose delivery exhausted retries",
	})
	unknownKinds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_unknown_kinds_total",
		Help: "The total number of events routed through the unknown-type path",
	})
)
