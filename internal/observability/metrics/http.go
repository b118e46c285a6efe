package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServerMetrics covers the HTTP surface plus the two workflows.
type ServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	uploadsTotal    *prometheus.CounterVec
	indexedDocs     prometheus.Counter
	questionsTotal  *prometheus.CounterVec
	questionSeconds *prometheus.HistogramVec
	searchesTotal   *prometheus.CounterVec
}

func NewServerMetrics(service string) *ServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "polnav",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "polnav",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "polnav",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	uploadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "polnav",
			Subsystem: "workflow",
			Name:      "uploads_total",
			Help:      "Upload-index workflow invocations by terminal phase.",
		},
		[]string{"service", "phase"},
	)
	indexedDocs := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "polnav",
			Subsystem: "workflow",
			Name:      "documents_indexed_total",
			Help:      "Documents upserted into the external index.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	questionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "polnav",
			Subsystem: "workflow",
			Name:      "questions_total",
			Help:      "Ask workflow invocations by mode and terminal phase.",
		},
		[]string{"service", "mode", "phase"},
	)
	questionSeconds := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "polnav",
			Subsystem: "workflow",
			Name:      "question_duration_seconds",
			Help:      "End-to-end ask workflow duration in seconds.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"service", "mode"},
	)
	searchesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "polnav",
			Subsystem: "workflow",
			Name:      "searches_total",
			Help:      "Index search passthrough calls by outcome.",
		},
		[]string{"service", "outcome"},
	)

	registry.MustRegister(
		requestTotal, requestDuration, requestInFlight,
		uploadsTotal, indexedDocs, questionsTotal, questionSeconds, searchesTotal,
	)

	return &ServerMetrics{
		registry:        registry,
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestInFlight: requestInFlight,
		uploadsTotal:    uploadsTotal,
		indexedDocs:     indexedDocs,
		questionsTotal:  questionsTotal,
		questionSeconds: questionSeconds,
		searchesTotal:   searchesTotal,
	}
}

func (m *ServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *ServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	if strings.HasPrefix(path, "/v1/") {
		return path
	}
	switch path {
	case "/healthz", "/metrics":
		return path
	default:
		return "other"
	}
}

func (m *ServerMetrics) RecordUpload(service, terminalPhase string) {
	m.uploadsTotal.WithLabelValues(service, terminalPhase).Inc()
}

func (m *ServerMetrics) RecordIndexed(n int) {
	if n > 0 {
		m.indexedDocs.Add(float64(n))
	}
}

func (m *ServerMetrics) RecordQuestion(service, mode, terminalPhase string, duration time.Duration) {
	if mode == "" {
		mode = "unknown"
	}
	m.questionsTotal.WithLabelValues(service, mode, terminalPhase).Inc()
	m.questionSeconds.WithLabelValues(service, mode).Observe(duration.Seconds())
}

func (m *ServerMetrics) RecordSearch(service, outcome string) {
	m.searchesTotal.WithLabelValues(service, outcome).Inc()
}
