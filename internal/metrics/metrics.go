// Package metrics holds the Prometheus collectors for the AI answer pipeline
// and the report indexer.
//
// All recording methods accept a nil receiver, so components built without
// metrics (tests, one-shot CLI commands) need no special casing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sharerapy"

// Metrics groups every collector the service exports.
type Metrics struct {
	// RequestsTotal counts answer requests by outcome (success, failed).
	RequestsTotal *prometheus.CounterVec

	// StageDuration observes the time spent in each pipeline stage.
	StageDuration *prometheus.HistogramVec

	// StageFailures counts pipeline failures by the stage that failed.
	StageFailures *prometheus.CounterVec

	// ExpansionFallbacks counts expansions that fell back to the raw query.
	ExpansionFallbacks prometheus.Counter

	// RetrievedChunks observes how many chunks each retrieval returned.
	RetrievedChunks prometheus.Histogram

	// HydrationMisses counts report lookups that produced no report.
	HydrationMisses prometheus.Counter

	// ActiveStreams tracks answers currently being generated.
	ActiveStreams prometheus.Gauge

	// TimeToFirstDelta observes latency from stream open to the first delta.
	TimeToFirstDelta prometheus.Histogram

	// StreamDeltas counts deltas delivered to consumers.
	StreamDeltas prometheus.Counter

	// IndexedReports counts indexing attempts by outcome (indexed, skipped, failed).
	IndexedReports *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
// Passing prometheus.DefaultRegisterer exposes them on the default /metrics handler.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ai",
			Name:      "requests_total",
			Help:      "AI answer requests by outcome.",
		}, []string{"outcome"}),
		StageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ai",
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each answer pipeline stage.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"stage"}),
		StageFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ai",
			Name:      "stage_failures_total",
			Help:      "Answer pipeline failures by stage.",
		}, []string{"stage"}),
		ExpansionFallbacks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ai",
			Name:      "expansion_fallbacks_total",
			Help:      "Query expansions that fell back to the original query.",
		}),
		RetrievedChunks: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ai",
			Name:      "retrieved_chunks",
			Help:      "Chunks returned per retrieval.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		}),
		HydrationMisses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ai",
			Name:      "hydration_misses_total",
			Help:      "Report lookups that failed or found nothing.",
		}),
		ActiveStreams: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ai",
			Name:      "active_streams",
			Help:      "Answers currently streaming.",
		}),
		TimeToFirstDelta: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ai",
			Name:      "time_to_first_delta_seconds",
			Help:      "Latency from stream open to the first text delta.",
			Buckets:   prometheus.DefBuckets,
		}),
		StreamDeltas: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ai",
			Name:      "stream_deltas_total",
			Help:      "Text deltas delivered to consumers.",
		}),
		IndexedReports: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "index",
			Name:      "reports_total",
			Help:      "Report indexing attempts by outcome.",
		}, []string{"outcome"}),
	}
}

// RecordRequest counts a finished answer request.
func (m *Metrics) RecordRequest(success bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failed"
	}
	m.RequestsTotal.WithLabelValues(outcome).Inc()
}

// ObserveStage records how long a stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordFailure counts a pipeline failure in stage.
func (m *Metrics) RecordFailure(stage string) {
	if m == nil {
		return
	}
	m.StageFailures.WithLabelValues(stage).Inc()
}

// RecordExpansionFallback counts an expansion fallback.
func (m *Metrics) RecordExpansionFallback() {
	if m == nil {
		return
	}
	m.ExpansionFallbacks.Inc()
}

// ObserveRetrieved records the number of chunks a retrieval returned.
func (m *Metrics) ObserveRetrieved(n int) {
	if m == nil {
		return
	}
	m.RetrievedChunks.Observe(float64(n))
}

// RecordHydrationMiss counts a report lookup that produced no report.
func (m *Metrics) RecordHydrationMiss() {
	if m == nil {
		return
	}
	m.HydrationMisses.Inc()
}

// StreamStarted increments the active stream gauge.
func (m *Metrics) StreamStarted() {
	if m == nil {
		return
	}
	m.ActiveStreams.Inc()
}

// StreamEnded decrements the active stream gauge.
func (m *Metrics) StreamEnded() {
	if m == nil {
		return
	}
	m.ActiveStreams.Dec()
}

// ObserveFirstDelta records the time to the first delta.
func (m *Metrics) ObserveFirstDelta(d time.Duration) {
	if m == nil {
		return
	}
	m.TimeToFirstDelta.Observe(d.Seconds())
}

// RecordDelta counts a delivered delta.
func (m *Metrics) RecordDelta() {
	if m == nil {
		return
	}
	m.StreamDeltas.Inc()
}

// RecordIndexed counts an indexing attempt with outcome indexed, skipped or failed.
func (m *Metrics) RecordIndexed(outcome string) {
	if m == nil {
		return
	}
	m.IndexedReports.WithLabelValues(outcome).Inc()
}
