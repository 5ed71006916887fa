package prometheus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/turtacn/SeqPrep/pkg/errors"
)

func newTestPipelineMetrics(t *testing.T) (*PipelineMetrics, MetricsCollector) {
	c := newTestCollector(t)
	m := NewPipelineMetrics(c)
	require.NotNil(t, m)
	return m, c
}

func TestRecordProcess_Success(t *testing.T) {
	m, c := newTestPipelineMetrics(t)

	RecordProcess(m, "http", time.Millisecond, 13, 8, nil)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_sequences_processed_total{source="http",status="ok"} 1`)
	assert.Contains(t, out, `test_unit_output_positions_sum{source="http"} 8`)
	assert.Contains(t, out, `test_unit_input_length_symbols_sum{source="http"} 13`)
	assert.NotContains(t, out, "test_unit_process_errors_total{")
}

func TestRecordProcess_ErrorLabelsCode(t *testing.T) {
	m, c := newTestPipelineMetrics(t)

	RecordProcess(m, "cli", time.Millisecond, 4, 0, apperrors.IndexOutOfRange(9, 4))
	RecordProcess(m, "cli", time.Millisecond, 4, 0, errors.New("plain"))

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_sequences_processed_total{source="cli",status="error"} 2`)
	assert.Contains(t, out, `test_unit_process_errors_total{code="SEQ_001",source="cli"} 1`)
	assert.Contains(t, out, `test_unit_process_errors_total{code="UNKNOWN",source="cli"} 1`)
}

func TestRecordCacheAccess(t *testing.T) {
	m, c := newTestPipelineMetrics(t)

	RecordCacheAccess(m, CacheHit)
	RecordCacheAccess(m, CacheHit)
	RecordCacheAccess(m, CacheMiss)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_cache_requests_total{result="hit"} 2`)
	assert.Contains(t, out, `test_unit_cache_requests_total{result="miss"} 1`)
}

func TestRecordBatchAndVocabularySize(t *testing.T) {
	m, c := newTestPipelineMetrics(t)

	RecordBatch(m, "kafka", 50, 2*time.Second)
	SetVocabularySize(m, "kmer", 66)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_batch_size_sum{source="kafka"} 50`)
	assert.Contains(t, out, `test_unit_batch_duration_seconds_sum{source="kafka"} 2`)
	assert.Contains(t, out, `test_unit_vocabulary_size{source="kmer"} 66`)
}

func TestRecordHTTPRequestAndMessage(t *testing.T) {
	m, c := newTestPipelineMetrics(t)

	RecordHTTPRequest(m, "POST", "/api/v1/encode", 200, 10*time.Millisecond)
	RecordMessage(m, "seqprep.sequences.raw", "ok")

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_http_requests_total{method="POST",path="/api/v1/encode",status_code="200"} 1`)
	assert.Contains(t, out, `test_unit_messages_total{status="ok",topic="seqprep.sequences.raw"} 1`)
}

func TestRecordHelpers_NilMetrics(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordProcess(nil, "x", 0, 0, 0, nil)
		RecordCacheAccess(nil, CacheMiss)
		RecordBatch(nil, "x", 1, 0)
		SetVocabularySize(nil, "x", 1)
		RecordHTTPRequest(nil, "GET", "/", 200, 0)
		RecordMessage(nil, "t", "ok")
	})
}
