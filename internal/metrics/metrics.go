package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rxndiagram_requests_enqueued_total",
		Help: "Total number of editing requests placed on a document queue.",
	})

	RequestsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rxndiagram_requests_dropped_total",
		Help: "Total number of editing requests rejected due to a full document queue.",
	})

	RequestsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rxndiagram_requests_expired_total",
		Help: "Total number of queued requests skipped because the caller gave up.",
	})

	CommandsExecuted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rxndiagram_commands_executed_total",
		Help: "Total number of commands executed, labelled by kind and status.",
	}, []string{"kind", "status"})

	HistoryOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rxndiagram_history_ops_total",
		Help: "Total number of undo and redo operations, labelled by op and status.",
	}, []string{"op", "status"})

	Notifications = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rxndiagram_notifications_total",
		Help: "Total number of change events raised by documents.",
	})

	ListenerFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rxndiagram_listener_failures_total",
		Help: "Total number of change listeners that returned an error or panicked.",
	})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rxndiagram_request_duration_ms",
		Help:    "Time spent applying an editing request on the document worker, in milliseconds.",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
	}, []string{"op"})

	OpenDocuments = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rxndiagram_open_documents",
		Help: "Number of documents currently open.",
	})

	HistoryDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rxndiagram_history_depth",
		Help: "Number of undoable commands, per document.",
	}, []string{"document"})

	QueueUtilization = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rxndiagram_queue_utilization_ratio",
		Help: "Highest document queue utilization (0–1).",
	})

	SnapshotsSaved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rxndiagram_snapshots_saved_total",
		Help: "Total number of snapshots written to the store, labelled by status.",
	}, []string{"status"})
)

// Status returns the status label for err.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
