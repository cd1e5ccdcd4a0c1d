package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Pipeline metrics
	rowsTotal        *prometheus.CounterVec
	markersTotal     *prometheus.CounterVec
	pipelineRuns     *prometheus.CounterVec
	pipelineDuration prometheus.Histogram
	hoverEvents      *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	r.rowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sigchart_rows_total",
			Help: "Total number of CSV rows read, by dataset and status",
		},
		[]string{"dataset", "status"},
	)
	r.markersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sigchart_markers_total",
			Help: "Total number of signal markers emitted",
		},
		[]string{"kind", "outcome"},
	)
	r.pipelineRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sigchart_pipeline_runs_total",
			Help: "Total number of pipeline runs",
		},
		[]string{"status"},
	)
	r.pipelineDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sigchart_pipeline_duration_seconds",
			Help:    "Pipeline run duration in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
	)
	r.hoverEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sigchart_hover_events_total",
			Help: "Total number of hover events handled, by result",
		},
		[]string{"result"},
	)

	reg.MustRegister(r.rowsTotal)
	reg.MustRegister(r.markersTotal)
	reg.MustRegister(r.pipelineRuns)
	reg.MustRegister(r.pipelineDuration)
	reg.MustRegister(r.hoverEvents)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordRows records accepted and dropped rows for a dataset.
func (r *Registry) RecordRows(dataset string, accepted, dropped int) {
	r.rowsTotal.WithLabelValues(dataset, "accepted").Add(float64(accepted))
	r.rowsTotal.WithLabelValues(dataset, "dropped").Add(float64(dropped))
}

// RecordMarker records an emitted marker.
func (r *Registry) RecordMarker(kind, outcome string) {
	r.markersTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordPipelineRun records a pipeline run completion.
func (r *Registry) RecordPipelineRun(status string, duration float64) {
	r.pipelineRuns.WithLabelValues(status).Inc()
	r.pipelineDuration.Observe(duration)
}

// RecordHover records a hover event. result is "showing", "idle" or "ignored".
func (r *Registry) RecordHover(result string) {
	r.hoverEvents.WithLabelValues(result).Inc()
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
