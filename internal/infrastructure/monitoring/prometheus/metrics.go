package prometheus

import (
	"strconv"
	"time"

	"github.com/turtacn/SeqPrep/pkg/errors"
)

// PipelineMetrics groups every metric SeqPrep exports.
type PipelineMetrics struct {
	// Preprocessing
	SequencesProcessedTotal CounterVec
	ProcessErrorsTotal      CounterVec
	ProcessDuration         HistogramVec
	InputLength             HistogramVec
	OutputPositions         HistogramVec

	// Encoding cache
	CacheRequestsTotal CounterVec

	// Batches
	BatchSize     HistogramVec
	BatchDuration HistogramVec

	// Vocabulary
	VocabularySize GaugeVec

	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec

	// Messaging
	MessagesTotal CounterVec
}

var (
	DefaultHTTPDurationBuckets    = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultProcessDurationBuckets = []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1}
	DefaultLengthBuckets          = []float64{8, 16, 32, 64, 128, 256, 512, 1024, 4096, 16384}
	DefaultBatchSizeBuckets       = []float64{1, 10, 50, 100, 250, 500, 1000}
	DefaultBatchDurationBuckets   = []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60}
)

// NewPipelineMetrics registers the SeqPrep metric set on collector.
func NewPipelineMetrics(collector MetricsCollector) *PipelineMetrics {
	m := &PipelineMetrics{}

	m.SequencesProcessedTotal = collector.RegisterCounter("sequences_processed_total", "Sequences run through the preprocessing pipeline", "source", "status")
	m.ProcessErrorsTotal = collector.RegisterCounter("process_errors_total", "Preprocessing failures by error code", "source", "code")
	m.ProcessDuration = collector.RegisterHistogram("process_duration_seconds", "Time spent preprocessing one sequence", DefaultProcessDurationBuckets, "source")
	m.InputLength = collector.RegisterHistogram("input_length_symbols", "Length of raw input sequences", DefaultLengthBuckets, "source")
	m.OutputPositions = collector.RegisterHistogram("output_positions", "Number of positions in encoded output", DefaultLengthBuckets, "source")

	m.CacheRequestsTotal = collector.RegisterCounter("cache_requests_total", "Encoding cache lookups", "result")

	m.BatchSize = collector.RegisterHistogram("batch_size", "Records per encoding batch", DefaultBatchSizeBuckets, "source")
	m.BatchDuration = collector.RegisterHistogram("batch_duration_seconds", "Wall time of an encoding batch", DefaultBatchDurationBuckets, "source")

	m.VocabularySize = collector.RegisterGauge("vocabulary_size", "Number of tokens in the loaded vocabulary", "source")

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")

	m.MessagesTotal = collector.RegisterCounter("messages_total", "Messages handled by the stream worker", "topic", "status")

	return m
}

// Cache lookup outcomes.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Helper functions

// RecordProcess records one preprocessing call.  A nil metrics is a no-op so
// components can run without a registry.
func RecordProcess(metrics *PipelineMetrics, source string, duration time.Duration, inputLen, outputLen int, err error) {
	if metrics == nil {
		return
	}
	metrics.ProcessDuration.WithLabelValues(source).Observe(duration.Seconds())
	metrics.InputLength.WithLabelValues(source).Observe(float64(inputLen))
	if err != nil {
		metrics.SequencesProcessedTotal.WithLabelValues(source, "error").Inc()
		metrics.ProcessErrorsTotal.WithLabelValues(source, errors.GetCode(err).String()).Inc()
		return
	}
	metrics.SequencesProcessedTotal.WithLabelValues(source, "ok").Inc()
	metrics.OutputPositions.WithLabelValues(source).Observe(float64(outputLen))
}

func RecordCacheAccess(metrics *PipelineMetrics, result string) {
	if metrics == nil {
		return
	}
	metrics.CacheRequestsTotal.WithLabelValues(result).Inc()
}

func RecordBatch(metrics *PipelineMetrics, source string, size int, duration time.Duration) {
	if metrics == nil {
		return
	}
	metrics.BatchSize.WithLabelValues(source).Observe(float64(size))
	metrics.BatchDuration.WithLabelValues(source).Observe(duration.Seconds())
}

func SetVocabularySize(metrics *PipelineMetrics, source string, size int) {
	if metrics == nil {
		return
	}
	metrics.VocabularySize.WithLabelValues(source).Set(float64(size))
}

func RecordHTTPRequest(metrics *PipelineMetrics, method, path string, statusCode int, duration time.Duration) {
	if metrics == nil {
		return
	}
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func RecordMessage(metrics *PipelineMetrics, topic, status string) {
	if metrics == nil {
		return
	}
	metrics.MessagesTotal.WithLabelValues(topic, status).Inc()
}
