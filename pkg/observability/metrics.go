package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// UnmatchedRoute labels requests that matched no route pattern
const UnmatchedRoute = "unmatched"

// Outcome labels shared by expansion and import metrics
const (
	OutcomeSuccess      = "success"
	OutcomeFailure      = "failure"
	OutcomeNoSuggestion = "no_suggestion"
)

// Collector holds all Prometheus metrics for the application.
// A nil *Collector is valid and records nothing.
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Canvas metrics
	NodesCreated prometheus.Counter
	NodesRemoved prometheus.Counter
	NodesTotal   prometheus.Gauge

	// Expansion metrics
	Expansions         *prometheus.CounterVec
	ExpansionDuration  prometheus.Histogram
	ExpansionsInFlight prometheus.Gauge

	// Storage metrics
	StorageOperations *prometheus.CounterVec

	// Import metrics
	Imports *prometheus.CounterVec
}

// NewCollector creates a new metrics collector with the given namespace.
// Each collector owns its registry, so tests can create as many as they like.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		NodesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nodes_created_total",
			Help:      "Total number of nodes created",
		}),
		NodesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nodes_removed_total",
			Help:      "Total number of nodes removed",
		}),
		NodesTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "nodes",
			Help:      "Number of nodes currently on the canvas",
		}),
		Expansions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "expansions_total",
				Help:      "Expansion requests by outcome",
			},
			[]string{"outcome"},
		),
		ExpansionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "expansion_duration_seconds",
			Help:      "Latency of expansion service calls",
			Buckets:   prometheus.DefBuckets,
		}),
		ExpansionsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "expansions_in_flight",
			Help:      "Expansion requests currently awaiting a response",
		}),
		StorageOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "storage_operations_total",
				Help:      "Durable storage operations by kind and status",
			},
			[]string{"operation", "status"},
		),
		Imports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "imports_total",
				Help:      "Import attempts by outcome",
			},
			[]string{"outcome"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.NodesCreated,
		c.NodesRemoved,
		c.NodesTotal,
		c.Expansions,
		c.ExpansionDuration,
		c.ExpansionsInFlight,
		c.StorageOperations,
		c.Imports,
	)

	return c
}

// Handler exposes the registry for scraping
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordNodeCreated counts a created node and updates the canvas size
func (c *Collector) RecordNodeCreated(total int) {
	if c == nil {
		return
	}
	c.NodesCreated.Inc()
	c.NodesTotal.Set(float64(total))
}

// RecordNodeRemoved counts a removed node and updates the canvas size
func (c *Collector) RecordNodeRemoved(total int) {
	if c == nil {
		return
	}
	c.NodesRemoved.Inc()
	c.NodesTotal.Set(float64(total))
}

// RecordCanvasSize sets the node gauge after bulk changes
func (c *Collector) RecordCanvasSize(total int) {
	if c == nil {
		return
	}
	c.NodesTotal.Set(float64(total))
}

// ExpansionStarted marks one more in-flight expansion
func (c *Collector) ExpansionStarted() {
	if c == nil {
		return
	}
	c.ExpansionsInFlight.Inc()
}

// ExpansionFinished records the outcome of an expansion
func (c *Collector) ExpansionFinished(outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	c.ExpansionsInFlight.Dec()
	c.Expansions.WithLabelValues(outcome).Inc()
	c.ExpansionDuration.Observe(duration.Seconds())
}

// RecordStorage counts a storage load or save
func (c *Collector) RecordStorage(operation string, err error) {
	if c == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.StorageOperations.WithLabelValues(operation, status).Inc()
}

// RecordImport counts an import attempt
func (c *Collector) RecordImport(outcome string) {
	if c == nil {
		return
	}
	c.Imports.WithLabelValues(outcome).Inc()
}

// Middleware records request counts and latency per chi route pattern
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := UnmatchedRoute
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		c.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		c.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
