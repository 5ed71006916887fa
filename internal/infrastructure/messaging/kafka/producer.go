package kafka

import (
	"context"
	stderrors "errors"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SeqPrep/pkg/errors"
	"github.com/turtacn/SeqPrep/pkg/types/common"
)

var (
	ErrProducerClosed = errors.New(errors.CodeMessageQueueError, "producer closed")
	ErrPublishFailed  = errors.New(errors.CodeMessageQueueError, "publish failed")
)

// ProducerConfig holds configuration for the Producer.
type ProducerConfig struct {
	Brokers          []string
	Acks             string
	MaxRetries       int
	BatchSize        int
	BatchTimeout     time.Duration
	MaxMessageBytes  int
	CompressionCodec string
	WriteTimeout     time.Duration

	// AsyncErrorHandler receives failures of PublishAsync.
	AsyncErrorHandler func(err error, msg *common.ProducerMessage)
}

// ProducerMetrics holds producer counters.
type ProducerMetrics struct {
	MessagesSent   atomic.Int64
	MessagesFailed atomic.Int64
	BytesSent      atomic.Int64
	LastSentAt     atomic.Value // time.Time
}

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
	Stats() kafka.WriterStats
}

// Producer publishes encoded sequences and dead letters.
type Producer struct {
	writer  WriterInterface
	config  ProducerConfig
	logger  logging.Logger
	closed  atomic.Bool
	metrics *ProducerMetrics
}

func applyProducerDefaults(cfg *ProducerConfig) {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 50 * time.Millisecond
	}
	if cfg.MaxMessageBytes == 0 {
		cfg.MaxMessageBytes = 1024 * 1024
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
}

// NewProducer creates a Producer backed by a kafka.Writer.
func NewProducer(cfg ProducerConfig, logger logging.Logger) (*Producer, error) {
	if err := ValidateProducerConfig(cfg); err != nil {
		return nil, err
	}
	applyProducerDefaults(&cfg)

	var requiredAcks kafka.RequiredAcks
	switch cfg.Acks {
	case "none":
		requiredAcks = kafka.RequireNone
	case "all":
		requiredAcks = kafka.RequireAll
	default:
		requiredAcks = kafka.RequireOne
	}

	var compression kafka.Compression
	switch cfg.CompressionCodec {
	case "gzip":
		compression = kafka.Gzip
	case "snappy":
		compression = kafka.Snappy
	case "lz4":
		compression = kafka.Lz4
	case "zstd":
		compression = kafka.Zstd
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.MaxRetries + 1,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: requiredAcks,
		Compression:  compression,
	}

	return NewProducerWithWriter(writer, cfg, logger), nil
}

// NewProducerWithWriter wraps an existing writer.
func NewProducerWithWriter(w WriterInterface, cfg ProducerConfig, logger logging.Logger) *Producer {
	applyProducerDefaults(&cfg)
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Producer{
		writer:  w,
		config:  cfg,
		logger:  logger.Named("kafka-producer"),
		metrics: &ProducerMetrics{},
	}
}

// Publish publishes a single message.
func (p *Producer) Publish(ctx context.Context, msg *common.ProducerMessage) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if msg.Topic == "" {
		return errors.InvalidParam("topic required")
	}
	if len(msg.Value) == 0 {
		return errors.InvalidParam("value required")
	}
	if len(msg.Value) > p.config.MaxMessageBytes {
		return errors.InvalidParam("message too large")
	}

	start := time.Now()
	if err := p.writer.WriteMessages(ctx, toKafkaMessage(msg)); err != nil {
		p.metrics.MessagesFailed.Add(1)
		return errors.Wrap(err, errors.CodeMessageQueueError, "publish failed").
			WithDetail("topic=" + msg.Topic)
	}

	p.metrics.MessagesSent.Add(1)
	p.metrics.BytesSent.Add(int64(len(msg.Value)))
	p.metrics.LastSentAt.Store(time.Now())

	p.logger.Debug("message published",
		logging.String("topic", msg.Topic),
		logging.Duration("latency", time.Since(start)))
	return nil
}

// PublishBatch publishes msgs in one write.  Per-message failures are
// reported in the result; only argument errors are returned.
func (p *Producer) PublishBatch(ctx context.Context, msgs []*common.ProducerMessage) (*common.BatchPublishResult, error) {
	if p.closed.Load() {
		return nil, ErrProducerClosed
	}
	if len(msgs) == 0 {
		return nil, errors.InvalidParam("messages empty")
	}

	kMsgs := make([]kafka.Message, len(msgs))
	for i, msg := range msgs {
		kMsgs[i] = toKafkaMessage(msg)
	}

	result := &common.BatchPublishResult{}
	err := p.writer.WriteMessages(ctx, kMsgs...)
	var writeErrs kafka.WriteErrors
	switch {
	case err == nil:
		result.Succeeded = len(msgs)
	case stderrors.As(err, &writeErrs):
		for i, we := range writeErrs {
			if we == nil {
				result.Succeeded++
				continue
			}
			result.Failed++
			result.Errors = append(result.Errors, common.BatchItemError{
				Index: i,
				Topic: msgs[i].Topic,
				Error: we,
			})
		}
	default:
		result.Failed = len(msgs)
		result.Errors = append(result.Errors, common.BatchItemError{Index: -1, Error: err})
	}

	p.metrics.MessagesSent.Add(int64(result.Succeeded))
	p.metrics.MessagesFailed.Add(int64(result.Failed))

	p.logger.Debug("batch published",
		logging.Int("succeeded", result.Succeeded),
		logging.Int("failed", result.Failed))
	return result, nil
}

// PublishAsync publishes msg on a separate goroutine.
func (p *Producer) PublishAsync(ctx context.Context, msg *common.ProducerMessage) {
	go func() {
		err := p.Publish(ctx, msg)
		if err != nil && p.config.AsyncErrorHandler != nil {
			p.config.AsyncErrorHandler(err, msg)
		}
	}()
}

// GetMetrics returns a snapshot of the counters.
func (p *Producer) GetMetrics() *ProducerMetrics {
	m := &ProducerMetrics{}
	m.MessagesSent.Store(p.metrics.MessagesSent.Load())
	m.MessagesFailed.Store(p.metrics.MessagesFailed.Load())
	m.BytesSent.Store(p.metrics.BytesSent.Load())
	if v := p.metrics.LastSentAt.Load(); v != nil {
		m.LastSentAt.Store(v)
	}
	return m
}

// Close flushes and closes the writer.  Subsequent calls are no-ops.
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("kafka producer closed", logging.Int64("sent", p.metrics.MessagesSent.Load()))
	return err
}

func toKafkaMessage(msg *common.ProducerMessage) kafka.Message {
	headers := make([]kafka.Header, 0, len(msg.Headers))
	for k, v := range msg.Headers {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	return kafka.Message{
		Topic:     msg.Topic,
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   headers,
		Time:      ts,
		Partition: msg.Partition,
	}
}

// ValidateProducerConfig validates configuration.
func ValidateProducerConfig(cfg ProducerConfig) error {
	if len(cfg.Brokers) == 0 {
		return errors.InvalidParam("brokers required")
	}
	if cfg.MaxRetries < 0 {
		return errors.InvalidParam("max retries must be >= 0")
	}
	return nil
}
