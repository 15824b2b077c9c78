package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder collects shield engine metrics. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	registry *prometheus.Registry

	analyses      *prometheus.CounterVec
	analysisTime  prometheus.Histogram
	scores        prometheus.Histogram
	cacheLookups  *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	outcomesTotal *prometheus.CounterVec
	pendingLogs   prometheus.Gauge
}

// New creates a Recorder registered on its own registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry creates a Recorder registered on reg.
func NewWithRegistry(reg *prometheus.Registry) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		analyses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shield_analyses_total",
				Help: "Total number of signals scored, by classification",
			},
			[]string{"classification"},
		),
		analysisTime: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "shield_analysis_duration_seconds",
				Help:    "Duration of a full shield analysis in seconds",
				Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5},
			},
		),
		scores: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "shield_score",
				Help:    "Distribution of emitted shield scores",
				Buckets: prometheus.LinearBuckets(1, 1, 10),
			},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shield_cache_lookups_total",
				Help: "Result cache lookups, by result",
			},
			[]string{"result"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shield_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		outcomesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shield_outcomes_total",
				Help: "Outcomes recorded, by outcome",
			},
			[]string{"outcome"},
		),
		pendingLogs: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "shield_pending_log_writes",
				Help: "Result log writes still in flight",
			},
		),
	}
}

// RecordAnalysis records one scored signal.
func (r *Recorder) RecordAnalysis(classification string, score, seconds float64) {
	if r == nil {
		return
	}
	r.analyses.WithLabelValues(classification).Inc()
	r.scores.Observe(score)
	r.analysisTime.Observe(seconds)
}

// RecordCacheLookup records a cache hit or miss.
func (r *Recorder) RecordCacheLookup(hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	if r == nil {
		return
	}
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordOutcome records a reported trade outcome.
func (r *Recorder) RecordOutcome(outcome string) {
	if r == nil {
		return
	}
	r.outcomesTotal.WithLabelValues(outcome).Inc()
}

// AddPendingLogs moves the in-flight log writes gauge by delta.
func (r *Recorder) AddPendingLogs(delta float64) {
	if r == nil {
		return
	}
	r.pendingLogs.Add(delta)
}

// Handler exposes the registry for scraping.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
