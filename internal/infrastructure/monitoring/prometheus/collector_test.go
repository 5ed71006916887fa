package prometheus

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/logging"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test", Subsystem: "unit"}, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func scrapeMetrics(t *testing.T, collector MetricsCollector) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	collector.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestNewMetricsCollector_EmptyNamespace(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{}, nil)
	assert.Error(t, err)
}

func TestNewMetricsCollector_WithProcessMetrics(t *testing.T) {
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "proc", EnableGoMetrics: true}, nil)
	require.NoError(t, err)
	assert.Contains(t, scrapeMetrics(t, c), "go_goroutines")
}

func TestRegisterCounter_WithLabels(t *testing.T) {
	c := newTestCollector(t)
	vec := c.RegisterCounter("events_total", "events", "kind")
	vec.WithLabelValues("a").Inc()
	vec.WithLabelValues("a").Add(2)

	assert.Contains(t, scrapeMetrics(t, c), `test_unit_events_total{kind="a"} 3`)
}

func TestRegisterCounter_Duplicate(t *testing.T) {
	c := newTestCollector(t)
	first := c.RegisterCounter("dup_total", "dup", "k")
	second := c.RegisterCounter("dup_total", "dup", "k")

	first.WithLabelValues("x").Inc()
	second.WithLabelValues("x").Inc()

	n, err := testutil.GatherAndCount(c.Registry(), "test_unit_dup_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, scrapeMetrics(t, c), `test_unit_dup_total{k="x"} 2`)
}

func TestRegister_TypeMismatchReturnsNoop(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterCounter("mixed", "counter first")
	g := c.RegisterGauge("mixed", "then gauge")

	assert.NotPanics(t, func() { g.WithLabelValues().Set(4) })
}

func TestRegisterGauge_SetIncDec(t *testing.T) {
	c := newTestCollector(t)
	g := c.RegisterGauge("level", "level")
	g.WithLabelValues().Set(5)
	g.WithLabelValues().Inc()
	g.WithLabelValues().Dec()
	g.WithLabelValues().Dec()

	assert.Contains(t, scrapeMetrics(t, c), "test_unit_level 4")
}

func TestRegisterHistogram_DefaultBuckets(t *testing.T) {
	c := newTestCollector(t)
	h := c.RegisterHistogram("latency_seconds", "latency", nil)
	h.WithLabelValues().Observe(0.2)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_latency_seconds_bucket{le="0.25"} 1`)
	assert.Contains(t, out, "test_unit_latency_seconds_count 1")
}

func TestConcurrentRegistration(t *testing.T) {
	c := newTestCollector(t)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RegisterCounter("racy_total", "racy").WithLabelValues().Inc()
		}()
	}
	wg.Wait()

	assert.Contains(t, scrapeMetrics(t, c), "test_unit_racy_total 16")
}
