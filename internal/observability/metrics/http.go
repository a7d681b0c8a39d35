package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	researchRunsTotal *prometheus.CounterVec
	researchDuration  *prometheus.HistogramVec
	researchEntities  *prometheus.HistogramVec
	exportsTotal      *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lra",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lra",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "lra",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	researchRunsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lra",
			Subsystem: "research",
			Name:      "runs_total",
			Help:      "Total completed research runs by kind and outcome.",
		},
		[]string{"service", "kind", "status"},
	)
	researchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lra",
			Subsystem: "research",
			Name:      "duration_seconds",
			Help:      "Research run duration in seconds.",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 120, 300},
		},
		[]string{"service", "kind"},
	)
	researchEntities := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lra",
			Subsystem: "research",
			Name:      "entities_found",
			Help:      "Distribution of entities returned per run.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service", "kind"},
	)
	exportsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lra",
			Subsystem: "research",
			Name:      "exports_total",
			Help:      "Total result exports by status.",
		},
		[]string{"service", "status"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		researchRunsTotal,
		researchDuration,
		researchEntities,
		exportsTotal,
	)

	return &HTTPServerMetrics{
		registry:          registry,
		requestTotal:      requestTotal,
		requestDuration:   requestDuration,
		requestInFlight:   requestInFlight,
		researchRunsTotal: researchRunsTotal,
		researchDuration:  researchDuration,
		researchEntities:  researchEntities,
		exportsTotal:      exportsTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
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
	switch {
	case strings.HasSuffix(path, "/export") && strings.HasPrefix(path, "/v1/research/runs/"):
		return "/v1/research/runs/{run_id}/export"
	case strings.HasPrefix(path, "/v1/research/runs/"):
		return "/v1/research/runs/{run_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordResearchRun(service, kind, status string, entities int, duration time.Duration) {
	if status == "" {
		status = "unknown"
	}
	m.researchRunsTotal.WithLabelValues(service, kind, status).Inc()
	m.researchDuration.WithLabelValues(service, kind).Observe(duration.Seconds())
	m.researchEntities.WithLabelValues(service, kind).Observe(float64(entities))
}

func (m *HTTPServerMetrics) RecordExport(service, status string) {
	if status == "" {
		status = "unknown"
	}
	m.exportsTotal.WithLabelValues(service, status).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
