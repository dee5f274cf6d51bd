// Package metrics exposes Prometheus instrumentation for the stream consumer.
// All metrics are prefixed with "twitter_stream_".
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Line kinds
const (
	KindLine      = "line"
	KindHeartbeat = "heartbeat"
)

// Stream metrics
var (
	LinesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "twitter_stream_lines_total",
			Help: "Total number of lines received, by kind",
		},
		[]string{"kind"}, // "line", "heartbeat"
	)

	BytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "twitter_stream_bytes_total",
			Help: "Total number of payload bytes received, delimiters excluded",
		},
	)

	LineGap = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "twitter_stream_line_gap_seconds",
			Help:    "Time between consecutive lines in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10, 30, 60, 90},
		},
	)

	TerminationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "twitter_stream_terminations_total",
			Help: "Total number of stream terminations, by reason",
		},
		[]string{"reason"},
	)

	StreamActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "twitter_stream_active",
			Help: "Whether a stream is currently being consumed (1 = yes, 0 = no)",
		},
	)
)

// Sink metrics
var (
	SinkErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "twitter_stream_sink_errors_total",
			Help: "Total number of write or flush failures, by sink",
		},
		[]string{"sink"},
	)
)

// Relay metrics
var (
	RelaySubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "twitter_stream_relay_subscribers",
			Help: "Number of connected relay subscribers",
		},
	)

	RelayDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "twitter_stream_relay_dropped_total",
			Help: "Total number of lines dropped for slow relay subscribers",
		},
	)
)
