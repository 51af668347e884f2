// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "subsidy_lab"

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Simulation metrics
	SimulationRuns     *prometheus.CounterVec
	SimulationDuration *prometheus.HistogramVec
	RulesEvaluated     prometheus.Counter
	RulesTriggered     prometheus.Counter
	RulesSkipped       *prometheus.CounterVec
	FarmersImpacted    prometheus.Counter
	PayoutTotal        prometheus.Counter

	// Collaborator metrics
	WeatherFetches   *prometheus.CounterVec
	InsightFallbacks prometheus.Counter

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Health metrics
	LastSuccessfulRun prometheus.Gauge
}

// NewMetrics creates a Metrics instance registered on its own registry,
// together with the Go and process collectors.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		SimulationRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "runs_total",
			Help:      "Total number of simulation runs by mode, trigger and status",
		}, []string{"mode", "trigger", "status"}),
		SimulationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "duration_seconds",
			Help:      "Simulation run duration in seconds, collaborators included",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30},
		}, []string{"mode"}),
		RulesEvaluated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "rules_evaluated_total",
			Help:      "Total number of rules evaluated",
		}),
		RulesTriggered: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "rules_triggered_total",
			Help:      "Total number of rules whose condition fired",
		}),
		RulesSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "rules_skipped_total",
			Help:      "Total number of rules that could not contribute, by reason",
		}, []string{"reason"}),
		FarmersImpacted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "farmers_impacted_total",
			Help:      "Total number of eligible farmers across runs",
		}),
		PayoutTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "payout_rupees_total",
			Help:      "Total simulated payout in rupees across runs",
		}),

		WeatherFetches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "weather",
			Name:      "fetches_total",
			Help:      "Total number of weather lookups by status",
		}, []string{"status"}),
		InsightFallbacks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "insights",
			Name:      "fallbacks_total",
			Help:      "Total number of insight reports served from the fallback advisory",
		}),

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status code",
		}, []string{"route", "code"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),

		LastSuccessfulRun: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of last successful simulation run",
		}),
	}
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RunOutcome is what a finished simulation contributes to the metrics.
type RunOutcome struct {
	Mode            string
	Trigger         string
	Err             error
	Duration        time.Duration
	Evaluated       int
	Triggered       int
	UnknownRegion   int
	Inert           int
	FarmersImpacted int64
	Payout          int64
}

// RecordRun records one simulation run.
func (m *Metrics) RecordRun(o RunOutcome) {
	if m == nil {
		return
	}
	status := "success"
	if o.Err != nil {
		status = "error"
	}
	m.SimulationRuns.WithLabelValues(o.Mode, o.Trigger, status).Inc()
	m.SimulationDuration.WithLabelValues(o.Mode).Observe(o.Duration.Seconds())
	if o.Err != nil {
		return
	}

	m.RulesEvaluated.Add(float64(o.Evaluated))
	m.RulesTriggered.Add(float64(o.Triggered))
	m.RulesSkipped.WithLabelValues("unknown_region").Add(float64(o.UnknownRegion))
	m.RulesSkipped.WithLabelValues("inert").Add(float64(o.Inert))
	m.FarmersImpacted.Add(float64(o.FarmersImpacted))
	m.PayoutTotal.Add(float64(o.Payout))
	m.LastSuccessfulRun.SetToCurrentTime()
}

// RecordWeatherFetch records a weather lookup.
func (m *Metrics) RecordWeatherFetch(err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.WeatherFetches.WithLabelValues(status).Inc()
}

// RecordInsightFallback records a fallback insight report.
func (m *Metrics) RecordInsightFallback() {
	if m == nil {
		return
	}
	m.InsightFallbacks.Inc()
}

// RecordHTTPRequest records a served HTTP request.
func (m *Metrics) RecordHTTPRequest(route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, statusCode(code)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(d.Seconds())
}

func statusCode(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
