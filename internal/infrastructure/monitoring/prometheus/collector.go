// Package prometheus exposes pipeline metrics through a private Prometheus
// registry.  Callers depend on the small vector interfaces below rather than
// on client_golang types.
package prometheus

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/logging"
)

// MetricsCollector owns a registry and hands out registered metric vectors.
type MetricsCollector interface {
	RegisterCounter(name, help string, labels ...string) CounterVec
	RegisterGauge(name, help string, labels ...string) GaugeVec
	RegisterHistogram(name, help string, buckets []float64, labels ...string) HistogramVec
	Handler() http.Handler
	Registry() *prometheus.Registry
}

type CounterVec interface {
	WithLabelValues(lvs ...string) Counter
}

type Counter interface {
	Inc()
	Add(delta float64)
}

type GaugeVec interface {
	WithLabelValues(lvs ...string) Gauge
}

type Gauge interface {
	Set(value float64)
	Inc()
	Dec()
}

type HistogramVec interface {
	WithLabelValues(lvs ...string) Histogram
}

type Histogram interface {
	Observe(value float64)
}

// CollectorConfig configures NewMetricsCollector.
type CollectorConfig struct {
	Namespace            string
	Subsystem            string
	EnableProcessMetrics bool
	EnableGoMetrics      bool
	ConstLabels          map[string]string
}

type prometheusCollector struct {
	registry   *prometheus.Registry
	config     CollectorConfig
	registered map[string]prometheus.Collector
	mu         sync.Mutex
	logger     logging.Logger
}

// NewMetricsCollector creates a collector with its own registry.
func NewMetricsCollector(cfg CollectorConfig, logger logging.Logger) (MetricsCollector, error) {
	if cfg.Namespace == "" {
		return nil, fmt.Errorf("namespace is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	registry := prometheus.NewRegistry()
	if cfg.EnableProcessMetrics {
		registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{
			Namespace: cfg.Namespace,
		}))
	}
	if cfg.EnableGoMetrics {
		registry.MustRegister(prometheus.NewGoCollector())
	}

	return &prometheusCollector{
		registry:   registry,
		config:     cfg,
		registered: make(map[string]prometheus.Collector),
		logger:     logger,
	}, nil
}

func (c *prometheusCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (c *prometheusCollector) Registry() *prometheus.Registry {
	return c.registry
}

// register returns the collector already registered under name, if any, so
// repeated registration of the same metric is idempotent.
func (c *prometheusCollector) register(name string, fresh prometheus.Collector) prometheus.Collector {
	c.mu.Lock()
	defer c.mu.Unlock()

	fullName := prometheus.BuildFQName(c.config.Namespace, c.config.Subsystem, name)
	if existing, ok := c.registered[fullName]; ok {
		return existing
	}
	if err := c.registry.Register(fresh); err != nil {
		c.logger.Error("metric registration failed", logging.String("name", fullName), logging.Err(err))
		return fresh
	}
	c.registered[fullName] = fresh
	return fresh
}

func (c *prometheusCollector) RegisterCounter(name, help string, labels ...string) CounterVec {
	got := c.register(name, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   c.config.Namespace,
		Subsystem:   c.config.Subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: c.config.ConstLabels,
	}, labels))
	if vec, ok := got.(*prometheus.CounterVec); ok {
		return &promCounterVec{vec: vec}
	}
	c.logger.Warn("metric type mismatch", logging.String("name", name), logging.String("type", "counter"))
	return noopCounterVec{}
}

func (c *prometheusCollector) RegisterGauge(name, help string, labels ...string) GaugeVec {
	got := c.register(name, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   c.config.Namespace,
		Subsystem:   c.config.Subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: c.config.ConstLabels,
	}, labels))
	if vec, ok := got.(*prometheus.GaugeVec); ok {
		return &promGaugeVec{vec: vec}
	}
	c.logger.Warn("metric type mismatch", logging.String("name", name), logging.String("type", "gauge"))
	return noopGaugeVec{}
}

func (c *prometheusCollector) RegisterHistogram(name, help string, buckets []float64, labels ...string) HistogramVec {
	if buckets == nil {
		buckets = prometheus.DefBuckets
	}
	got := c.register(name, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   c.config.Namespace,
		Subsystem:   c.config.Subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: c.config.ConstLabels,
	}, labels))
	if vec, ok := got.(*prometheus.HistogramVec); ok {
		return &promHistogramVec{vec: vec}
	}
	c.logger.Warn("metric type mismatch", logging.String("name", name), logging.String("type", "histogram"))
	return noopHistogramVec{}
}

// ─────────────────────────────────────────────────────────────────────────────
// Adapters
// ─────────────────────────────────────────────────────────────────────────────

type promCounterVec struct{ vec *prometheus.CounterVec }

func (v *promCounterVec) WithLabelValues(lvs ...string) Counter { return v.vec.WithLabelValues(lvs...) }

type promGaugeVec struct{ vec *prometheus.GaugeVec }

func (v *promGaugeVec) WithLabelValues(lvs ...string) Gauge { return v.vec.WithLabelValues(lvs...) }

type promHistogramVec struct{ vec *prometheus.HistogramVec }

func (v *promHistogramVec) WithLabelValues(lvs ...string) Histogram {
	return v.vec.WithLabelValues(lvs...)
}

type noopMetric struct{}

func (noopMetric) Inc()            {}
func (noopMetric) Dec()            {}
func (noopMetric) Add(float64)     {}
func (noopMetric) Set(float64)     {}
func (noopMetric) Observe(float64) {}

type noopCounterVec struct{}

func (noopCounterVec) WithLabelValues(...string) Counter { return noopMetric{} }

type noopGaugeVec struct{}

func (noopGaugeVec) WithLabelValues(...string) Gauge { return noopMetric{} }

type noopHistogramVec struct{}

func (noopHistogramVec) WithLabelValues(...string) Histogram { return noopMetric{} }
