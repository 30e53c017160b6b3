// Package metrics exposes Prometheus instrumentation for the HTTP services.
// Every Metrics value owns its registry, so several routers can live in one process.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	httpLatency *prometheus.HistogramVec
	events      *prometheus.CounterVec
}

// Event names counted by Inc.
const (
	EventUserCreated  = "user_created"
	EventLoginFailed  = "login_failed"
	EventURLShortened = "url_shortened"
	EventRedirect     = "redirect"
)

// New builds a registry holding the HTTP latency histogram, the domain event
// counter and the Go runtime collectors. service becomes a constant label.
func New(service string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "http_requests_latency_seconds",
				Help:        "Latency of HTTP requests.",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: prometheus.Labels{"service": service},
			},
			[]string{"method", "route", "status"},
		),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "domain_events_total",
				Help:        "Total domain events by type.",
				ConstLabels: prometheus.Labels{"service": service},
			},
			[]string{"type"},
		),
	}

	m.registry.MustRegister(
		m.httpLatency,
		m.events,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Inc adds one to the counter of the given event type.
func (m *Metrics) Inc(event string) {
	m.events.WithLabelValues(event).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
// Compression is left to the router's gzip middleware.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		Registry:           m.registry,
		DisableCompression: true,
	})
}

// Middleware observes the latency of every request labelled by the chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		m.httpLatency.WithLabelValues(r.Method, routePattern(r), strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if pattern := rc.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
