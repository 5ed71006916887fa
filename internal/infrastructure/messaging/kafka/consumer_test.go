package kafka

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/SeqPrep/pkg/errors"
	"github.com/turtacn/SeqPrep/pkg/types/common"
)

// mockKafkaReader serves queued messages once, then blocks until cancelled.
type mockKafkaReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []kafka.Message
	closed    bool
}

func (m *mockKafkaReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	m.mu.Lock()
	if len(m.queue) > 0 {
		msg := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()
		return msg, nil
	}
	m.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (m *mockKafkaReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committed = append(m.committed, msgs...)
	return nil
}

func (m *mockKafkaReader) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockKafkaReader) commits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.committed)
}

func newTestConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		Brokers: []string{"localhost:9092"},
		GroupID: "seqprep-test",
		Topics:  []string{TopicSequencesRaw},
		RetryConfig: RetryConfig{
			MaxRetries:   1,
			RetryBackoff: time.Millisecond,
		},
	}
}

func TestValidateConsumerConfig(t *testing.T) {
	assert.NoError(t, ValidateConsumerConfig(newTestConsumerConfig()))

	tests := []struct {
		name   string
		mutate func(*ConsumerConfig)
	}{
		{"no brokers", func(c *ConsumerConfig) { c.Brokers = nil }},
		{"no group", func(c *ConsumerConfig) { c.GroupID = "" }},
		{"no topics", func(c *ConsumerConfig) { c.Topics = nil }},
		{"bad offset reset", func(c *ConsumerConfig) { c.AutoOffsetReset = "middle" }},
		{"negative retries", func(c *ConsumerConfig) { c.RetryConfig.MaxRetries = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConsumerConfig()
			tt.mutate(&cfg)
			assert.True(t, apperrors.IsCode(ValidateConsumerConfig(cfg), apperrors.CodeInvalidParam))
		})
	}
}

func TestSubscribe(t *testing.T) {
	c := NewConsumerWithReader(&mockKafkaReader{}, nil, newTestConsumerConfig(), nil)
	require.NoError(t, c.Subscribe("topic", func(context.Context, *common.Message) error { return nil }))
	assert.Len(t, c.handlers, 1)
	assert.Error(t, c.Subscribe("", nil))
	require.NoError(t, c.Unsubscribe("topic"))
	assert.Empty(t, c.handlers)
}

func TestStart_AlreadyRunning(t *testing.T) {
	c := NewConsumerWithReader(&mockKafkaReader{}, nil, newTestConsumerConfig(), logging.NewNopLogger())
	require.NoError(t, c.Start(context.Background()))
	defer c.Close()
	assert.Equal(t, ErrAlreadyRunning, c.Start(context.Background()))
}

func TestConsumeLoop_DispatchesAndCommits(t *testing.T) {
	reader := &mockKafkaReader{queue: []kafka.Message{
		{Topic: TopicSequencesRaw, Offset: 0, Value: []byte("a"), Headers: []kafka.Header{{Key: "event_type", Value: []byte(EventSequenceRaw)}}},
		{Topic: "unrouted", Offset: 1, Value: []byte("b")},
		{Topic: TopicSequencesRaw, Offset: 2, Value: []byte("c")},
	}}
	c := NewConsumerWithReader(reader, nil, newTestConsumerConfig(), nil)

	var mu sync.Mutex
	var seen []string
	done := make(chan struct{})
	require.NoError(t, c.Subscribe(TopicSequencesRaw, func(_ context.Context, msg *common.Message) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, string(msg.Value))
		if len(seen) == 1 {
			assert.Equal(t, EventSequenceRaw, msg.Headers["event_type"])
		}
		if len(seen) == 2 {
			close(done)
		}
		return nil
	}))

	require.NoError(t, c.Start(context.Background()))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for handler")
	}
	assert.Eventually(t, func() bool { return reader.commits() == 3 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())

	assert.Equal(t, []string{"a", "c"}, seen)
	assert.True(t, reader.closed)
	m := c.GetMetrics()
	assert.Equal(t, int64(3), m.MessagesConsumed.Load())
	assert.Equal(t, int64(2), m.MessagesProcessed.Load())
}

func TestProcessMessage_RetrySuccess(t *testing.T) {
	cfg := newTestConsumerConfig()
	cfg.RetryConfig.MaxRetries = 2
	c := NewConsumerWithReader(&mockKafkaReader{}, nil, cfg, nil)

	attempts := 0
	handler := func(context.Context, *common.Message) error {
		attempts++
		if attempts < 2 {
			return errors.New("fail")
		}
		return nil
	}

	require.NoError(t, c.processMessage(context.Background(), &common.Message{}, handler))
	assert.Equal(t, 2, attempts)
	assert.Equal(t, int64(1), c.metrics.MessagesRetried.Load())
}

func TestProcessMessage_DeadLetter(t *testing.T) {
	w := &mockKafkaWriter{}
	dlq := NewProducerWithWriter(w, ProducerConfig{Brokers: []string{"localhost:9092"}}, nil)
	cfg := newTestConsumerConfig()
	cfg.RetryConfig.DeadLetterTopic = TopicDeadLetter
	c := NewConsumerWithReader(&mockKafkaReader{}, dlq, cfg, nil)

	var attempts atomic.Int32
	handler := func(context.Context, *common.Message) error {
		attempts.Add(1)
		return apperrors.New(apperrors.CodeMalformedFASTA, "bad record")
	}

	msg := &common.Message{
		Topic:   TopicSequencesRaw,
		Key:     []byte("seq-1"),
		Value:   []byte("payload"),
		Headers: map[string]string{"event_type": EventSequenceRaw},
	}
	err := c.processMessage(context.Background(), msg, handler)
	require.Error(t, err)
	assert.Equal(t, int32(2), attempts.Load())

	got := w.messages()
	require.Len(t, got, 1)
	assert.Equal(t, TopicDeadLetter, got[0].Topic)
	assert.Equal(t, []byte("payload"), got[0].Value)
	headers := map[string]string{}
	for _, h := range got[0].Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, TopicSequencesRaw, headers[HeaderOriginalTopic])
	assert.Equal(t, "SEQ_002", headers[HeaderErrorCode])
	assert.Equal(t, EventSequenceRaw, headers["event_type"])
	assert.NotContains(t, msg.Headers, HeaderOriginalTopic)
	assert.Equal(t, int64(1), c.metrics.MessagesDeadLettered.Load())
}

func TestProcessMessage_CancelledDuringBackoff(t *testing.T) {
	cfg := newTestConsumerConfig()
	cfg.RetryConfig.RetryBackoff = time.Hour
	c := NewConsumerWithReader(&mockKafkaReader{}, nil, cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.processMessage(ctx, &common.Message{}, func(context.Context, *common.Message) error {
		return errors.New("fail")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConsumerClose_Idempotent(t *testing.T) {
	c := NewConsumerWithReader(&mockKafkaReader{}, nil, newTestConsumerConfig(), nil)
	assert.NoError(t, c.Close())
	require.NoError(t, c.Start(context.Background()))
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}
