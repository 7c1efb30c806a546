package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus collectors for the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	AnalysesTotal        *prometheus.CounterVec
	ModelCallDuration    *prometheus.HistogramVec
	HistoryWriteFailures prometheus.Counter
	ChatToolCalls        *prometheus.CounterVec
	RequestDuration      *prometheus.HistogramVec
	RequestsInFlight     prometheus.Gauge
	ExpiredRecords       prometheus.Counter
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AnalysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "suraksha_analyses_total",
				Help: "Submissions processed, by category and outcome.",
			},
			[]string{"category", "outcome"},
		),
		ModelCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "suraksha_model_call_duration_seconds",
				Help:    "Duration of model calls, by prompt template.",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60, 120},
			},
			[]string{"template"},
		),
		HistoryWriteFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "suraksha_history_write_failures_total",
				Help: "Persisted history writes that failed and were skipped.",
			},
		),
		ChatToolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "suraksha_chat_tool_calls_total",
				Help: "Tool calls requested by the model during chat, by outcome.",
			},
			[]string{"outcome"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "suraksha_api_request_duration_seconds",
				Help:    "HTTP request duration in seconds, by endpoint and method.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint", "method", "status"},
		),
		RequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "suraksha_requests_in_flight",
				Help: "Number of HTTP requests currently being served.",
			},
		),
		ExpiredRecords: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "suraksha_history_expired_total",
				Help: "Persisted history records removed by the retention policy.",
			},
		),
	}

	reg.MustRegister(
		m.AnalysesTotal,
		m.ModelCallDuration,
		m.HistoryWriteFailures,
		m.ChatToolCalls,
		m.RequestDuration,
		m.RequestsInFlight,
		m.ExpiredRecords,
	)

	return m
}

// Analysis counts one finished submission
func (m *Metrics) Analysis(category, outcome string) {
	if m == nil {
		return
	}
	m.AnalysesTotal.WithLabelValues(category, outcome).Inc()
}

// ModelCall observes the duration of one model round trip
func (m *Metrics) ModelCall(template string, d time.Duration) {
	if m == nil {
		return
	}
	m.ModelCallDuration.WithLabelValues(template).Observe(d.Seconds())
}

// HistoryWriteFailed counts a swallowed persistence failure
func (m *Metrics) HistoryWriteFailed() {
	if m == nil {
		return
	}
	m.HistoryWriteFailures.Inc()
}

// ChatTool counts a model tool request
func (m *Metrics) ChatTool(outcome string) {
	if m == nil {
		return
	}
	m.ChatToolCalls.WithLabelValues(outcome).Inc()
}

// Expired counts records removed by retention
func (m *Metrics) Expired(n int64) {
	if m == nil {
		return
	}
	m.ExpiredRecords.Add(float64(n))
}
