// Package metrics exposes Prometheus metrics for registry builds and the
// registry server.
//
// Metrics collected:
//   - kata_registry_builds_total: builds by status
//   - kata_registry_build_duration_seconds: build duration
//   - kata_registry_components_built_total: components written
//   - kata_registry_components_skipped_total: components skipped by reason
//   - kata_registry_missing_files_total: source files listed but absent
//   - kata_registry_category_components: components per category, last build
//   - kata_registry_compact_index_bytes: size of index-compact.json, last build
//   - kata_registry_http_requests_total: served requests by route and status
//   - kata_registry_http_request_duration_seconds: request duration by route
//
// All methods are safe on a nil *Metrics, so callers that do not collect
// metrics can pass nil.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config configures the metrics set.
type Config struct {
	// Namespace is the metrics namespace (default: "kata_registry").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	Buckets []float64

	// RuntimeCollectors adds the Go and process collectors.
	RuntimeCollectors bool
}

// Option configures the metrics set.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithRuntimeCollectors registers the Go runtime and process collectors.
func WithRuntimeCollectors() Option {
	return func(c *Config) {
		c.RuntimeCollectors = true
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "kata_registry",
		Buckets:   prometheus.DefBuckets,
	}
}

// Metrics holds the registry's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	buildsTotal        *prometheus.CounterVec
	buildDuration      prometheus.Histogram
	componentsBuilt    prometheus.Counter
	componentsSkipped  *prometheus.CounterVec
	missingFiles       prometheus.Counter
	categoryComponents *prometheus.GaugeVec
	compactIndexBytes  prometheus.Gauge
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

// New creates and registers the metrics set.
func New(opts ...Option) *Metrics {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),

		buildsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "builds_total",
			Help:        "Total number of registry builds by status",
			ConstLabels: cfg.ConstLabels,
		}, []string{"status"}),

		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Name:        "build_duration_seconds",
			Help:        "Registry build duration in seconds",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}),

		componentsBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "components_built_total",
			Help:        "Total number of registry items written",
			ConstLabels: cfg.ConstLabels,
		}),

		componentsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "components_skipped_total",
			Help:        "Total number of manifest items skipped by reason",
			ConstLabels: cfg.ConstLabels,
		}, []string{"reason"}),

		missingFiles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "missing_files_total",
			Help:        "Total number of listed source files that did not exist",
			ConstLabels: cfg.ConstLabels,
		}),

		categoryComponents: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Name:        "category_components",
			Help:        "Number of components per category in the last build",
			ConstLabels: cfg.ConstLabels,
		}, []string{"category"}),

		compactIndexBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Name:        "compact_index_bytes",
			Help:        "Size of index-compact.json in the last build",
			ConstLabels: cfg.ConstLabels,
		}),

		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "http_requests_total",
			Help:        "Total number of served registry requests",
			ConstLabels: cfg.ConstLabels,
		}, []string{"route", "code"}),

		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Name:        "http_request_duration_seconds",
			Help:        "Registry request duration in seconds",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		m.buildsTotal,
		m.buildDuration,
		m.componentsBuilt,
		m.componentsSkipped,
		m.missingFiles,
		m.categoryComponents,
		m.compactIndexBytes,
		m.httpRequests,
		m.httpDuration,
	)
	if cfg.RuntimeCollectors {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	return m
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// WriteTextfile writes the current metrics to path for the node exporter
// textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}

// ComponentBuilt records one written registry item.
func (m *Metrics) ComponentBuilt() {
	if m == nil {
		return
	}
	m.componentsBuilt.Inc()
}

// ComponentSkipped records one skipped manifest item.
func (m *Metrics) ComponentSkipped(reason string) {
	if m == nil {
		return
	}
	m.componentsSkipped.WithLabelValues(reason).Inc()
}

// FilesMissing records n missing source files.
func (m *Metrics) FilesMissing(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.missingFiles.Add(float64(n))
}

// BuildFinished records the outcome of a build.
func (m *Metrics) BuildFinished(d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.buildsTotal.WithLabelValues(status).Inc()
	m.buildDuration.Observe(d.Seconds())
}

// SetCategories replaces the per-category gauges.
func (m *Metrics) SetCategories(counts map[string]int) {
	if m == nil {
		return
	}
	m.categoryComponents.Reset()
	for name, n := range counts {
		m.categoryComponents.WithLabelValues(name).Set(float64(n))
	}
}

// SetCompactIndexBytes records the compact index size.
func (m *Metrics) SetCompactIndexBytes(n int) {
	if m == nil {
		return
	}
	m.compactIndexBytes.Set(float64(n))
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}
