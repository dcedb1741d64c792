package db

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Best-effort payload cleanup is never surfaced to callers; the counter
// keeps orphaned-payload accumulation observable so a periodic sweep can
// act on it.
var (
	payloadCleanupFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vidvault",
		Name:      "payload_cleanup_failures_total",
		Help:      "Payload rows that could not be removed during replace or cascade delete.",
	})

	payloadBytesStored = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vidvault",
		Name:      "payload_bytes_stored_total",
		Help:      "Total payload bytes written to the store.",
	})
)
