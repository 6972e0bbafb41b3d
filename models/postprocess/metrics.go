package postprocess

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DetectionsConsidered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hnms_detections_considered_total",
		Help: "Total number of detections that passed the score threshold.",
	})

	DetectionsKept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hnms_detections_kept_total",
		Help: "Total number of detections emitted by suppression.",
	})

	DetectionsSuppressed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hnms_detections_suppressed_total",
		Help: "Total number of detections removed because they overlapped a kept detection.",
	})

	GateRetentions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hnms_gate_retentions_total",
		Help: "Total number of overlapping pairs where the hierarchy gate kept the candidate.",
	})

	UnknownClasses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hnms_unknown_classes_total",
		Help: "Total number of distinct per-batch classes absent from the hierarchy.",
	})

	SuppressDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hnms_suppress_duration_ms",
		Help:    "Suppression latency per batch in milliseconds.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50},
	})
)
