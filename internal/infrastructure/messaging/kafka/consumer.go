package kafka

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SeqPrep/pkg/errors"
	"github.com/turtacn/SeqPrep/pkg/types/common"
)

var (
	ErrAlreadyRunning = errors.New(errors.CodeMessageQueueError, "consumer already running")
	ErrConsumerClosed = errors.New(errors.CodeMessageQueueError, "consumer closed")
)

// Header keys attached to dead-lettered messages.
const (
	HeaderOriginalTopic = "original_topic"
	HeaderErrorMessage  = "error_message"
	HeaderErrorCode     = "error_code"
)

// RetryConfig defines retry behavior.
type RetryConfig struct {
	MaxRetries      int
	RetryBackoff    time.Duration
	MaxRetryBackoff time.Duration
	DeadLetterTopic string
}

// ConsumerConfig holds configuration for the Consumer.
type ConsumerConfig struct {
	Brokers            []string
	GroupID            string
	Topics             []string
	AutoOffsetReset    string
	EnableAutoCommit   bool
	AutoCommitInterval time.Duration
	SessionTimeout     time.Duration
	HeartbeatInterval  time.Duration
	MaxWait            time.Duration
	FetchMinBytes      int
	FetchMaxBytes      int
	FetchErrorBackoff  time.Duration
	RetryConfig        RetryConfig
}

// ConsumerMetrics holds consumer counters.
type ConsumerMetrics struct {
	MessagesConsumed     atomic.Int64
	MessagesProcessed    atomic.Int64
	MessagesFailed       atomic.Int64
	MessagesRetried      atomic.Int64
	MessagesDeadLettered atomic.Int64
	LastConsumedAt       atomic.Value // time.Time
	Lag                  atomic.Int64
}

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer dispatches fetched messages to per-topic handlers.
type Consumer struct {
	reader ReaderInterface
	config ConsumerConfig
	logger logging.Logger

	handlers map[string]common.MessageHandler
	mu       sync.RWMutex

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	deadLetterProducer *Producer
	metrics            *ConsumerMetrics
}

func applyConsumerDefaults(cfg *ConsumerConfig) {
	if cfg.AutoOffsetReset == "" {
		cfg.AutoOffsetReset = "earliest"
	}
	if cfg.AutoCommitInterval == 0 {
		cfg.AutoCommitInterval = 5 * time.Second
	}
	if cfg.SessionTimeout == 0 {
		cfg.SessionTimeout = 30 * time.Second
	}
	if cfg.HeartbeatInterval == 0 {
		cfg.HeartbeatInterval = 3 * time.Second
	}
	if cfg.MaxWait == 0 {
		cfg.MaxWait = time.Second
	}
	if cfg.FetchMinBytes == 0 {
		cfg.FetchMinBytes = 1
	}
	if cfg.FetchMaxBytes == 0 {
		cfg.FetchMaxBytes = 10 * 1024 * 1024
	}
	if cfg.FetchErrorBackoff == 0 {
		cfg.FetchErrorBackoff = time.Second
	}
	if cfg.RetryConfig.MaxRetries == 0 {
		cfg.RetryConfig.MaxRetries = 3
	}
	if cfg.RetryConfig.RetryBackoff == 0 {
		cfg.RetryConfig.RetryBackoff = time.Second
	}
	if cfg.RetryConfig.MaxRetryBackoff == 0 {
		cfg.RetryConfig.MaxRetryBackoff = 30 * time.Second
	}
}

// NewConsumer creates a group consumer over cfg.Topics.  When a dead letter
// topic is configured a producer for it is created on the same brokers.
func NewConsumer(cfg ConsumerConfig, logger logging.Logger) (*Consumer, error) {
	if err := ValidateConsumerConfig(cfg); err != nil {
		return nil, err
	}
	applyConsumerDefaults(&cfg)

	readerCfg := kafka.ReaderConfig{
		Brokers:           cfg.Brokers,
		GroupID:           cfg.GroupID,
		GroupTopics:       cfg.Topics,
		MinBytes:          cfg.FetchMinBytes,
		MaxBytes:          cfg.FetchMaxBytes,
		MaxWait:           cfg.MaxWait,
		SessionTimeout:    cfg.SessionTimeout,
		HeartbeatInterval: cfg.HeartbeatInterval,
		StartOffset:       kafka.FirstOffset,
	}
	if cfg.EnableAutoCommit {
		readerCfg.CommitInterval = cfg.AutoCommitInterval
	}
	if cfg.AutoOffsetReset == "latest" {
		readerCfg.StartOffset = kafka.LastOffset
	}

	var dlProducer *Producer
	if cfg.RetryConfig.DeadLetterTopic != "" {
		p, err := NewProducer(ProducerConfig{Brokers: cfg.Brokers}, logger)
		if err != nil {
			return nil, err
		}
		dlProducer = p
	}

	return NewConsumerWithReader(kafka.NewReader(readerCfg), dlProducer, cfg, logger), nil
}

// NewConsumerWithReader wraps an existing reader.  dlq may be nil.
func NewConsumerWithReader(r ReaderInterface, dlq *Producer, cfg ConsumerConfig, logger logging.Logger) *Consumer {
	applyConsumerDefaults(&cfg)
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Consumer{
		reader:             r,
		config:             cfg,
		logger:             logger.Named("kafka-consumer"),
		handlers:           make(map[string]common.MessageHandler),
		deadLetterProducer: dlq,
		metrics:            &ConsumerMetrics{},
	}
}

// Subscribe registers handler for topic.
func (c *Consumer) Subscribe(topic string, handler common.MessageHandler) error {
	if topic == "" || handler == nil {
		return errors.InvalidParam("topic and handler required")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = handler
	c.logger.Info("subscribed to topic", logging.String("topic", topic))
	return nil
}

// Unsubscribe removes the handler for topic.
func (c *Consumer) Unsubscribe(topic string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.handlers, topic)
	c.logger.Info("unsubscribed from topic", logging.String("topic", topic))
	return nil
}

// Start launches the consume loop.  It returns immediately.
func (c *Consumer) Start(ctx context.Context) error {
	if c.running.Swap(true) {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.wg.Add(1)
	go c.consumeLoop(ctx)

	c.logger.Info("kafka consumer started", logging.String("group", c.config.GroupID))
	return nil
}

func (c *Consumer) consumeLoop(ctx context.Context) {
	defer c.wg.Done()

	for ctx.Err() == nil {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("fetch failed", logging.Err(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.config.FetchErrorBackoff):
			}
			continue
		}

		c.metrics.MessagesConsumed.Add(1)
		c.metrics.LastConsumedAt.Store(time.Now())
		if m.HighWaterMark > 0 {
			c.metrics.Lag.Store(m.HighWaterMark - m.Offset - 1)
		}

		msg := fromKafkaMessage(m)

		c.mu.RLock()
		handler, ok := c.handlers[m.Topic]
		c.mu.RUnlock()

		if !ok {
			c.logger.Warn("no handler for topic", logging.String("topic", m.Topic))
		} else if err := c.processMessage(ctx, msg, handler); err != nil {
			if ctx.Err() != nil {
				return
			}
			c.metrics.MessagesFailed.Add(1)
		} else {
			c.metrics.MessagesProcessed.Add(1)
		}

		if !c.config.EnableAutoCommit {
			if err := c.reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
				c.logger.Error("commit failed", logging.Err(err), logging.Int64("offset", m.Offset))
			}
		}
	}
}

// processMessage runs handler with exponential backoff.  Once retries are
// exhausted the message is dead-lettered when possible and the handler error
// is returned so the caller can count it.
func (c *Consumer) processMessage(ctx context.Context, msg *common.Message, handler common.MessageHandler) error {
	err := handler(ctx, msg)
	if err == nil {
		return nil
	}

	backoff := c.config.RetryConfig.RetryBackoff
	for i := 0; i < c.config.RetryConfig.MaxRetries; i++ {
		c.metrics.MessagesRetried.Add(1)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		if err = handler(ctx, msg); err == nil {
			return nil
		}
		backoff = min(backoff*2, c.config.RetryConfig.MaxRetryBackoff)
	}

	c.logger.Error("message processing failed after retries",
		logging.String("topic", msg.Topic),
		logging.Int64("offset", msg.Offset),
		logging.Err(err),
		logging.ErrCode(err))

	c.deadLetter(ctx, msg, err)
	return err
}

func (c *Consumer) deadLetter(ctx context.Context, msg *common.Message, cause error) {
	topic := c.config.RetryConfig.DeadLetterTopic
	if c.deadLetterProducer == nil || topic == "" {
		return
	}

	headers := make(map[string]string, len(msg.Headers)+3)
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[HeaderOriginalTopic] = msg.Topic
	headers[HeaderErrorMessage] = cause.Error()
	headers[HeaderErrorCode] = errors.GetCode(cause).String()

	dl := &common.ProducerMessage{
		Topic:   topic,
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
	}
	if err := c.deadLetterProducer.Publish(ctx, dl); err != nil {
		c.logger.Error("dead letter publish failed", logging.Err(err))
		return
	}
	c.metrics.MessagesDeadLettered.Add(1)
}

func fromKafkaMessage(m kafka.Message) *common.Message {
	msg := &common.Message{
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
		Key:       m.Key,
		Value:     m.Value,
		Timestamp: m.Time,
		Headers:   make(map[string]string, len(m.Headers)),
	}
	for _, h := range m.Headers {
		msg.Headers[h.Key] = string(h.Value)
	}
	return msg
}

// GetMetrics returns a snapshot of the counters.
func (c *Consumer) GetMetrics() *ConsumerMetrics {
	m := &ConsumerMetrics{}
	m.MessagesConsumed.Store(c.metrics.MessagesConsumed.Load())
	m.MessagesProcessed.Store(c.metrics.MessagesProcessed.Load())
	m.MessagesFailed.Store(c.metrics.MessagesFailed.Load())
	m.MessagesRetried.Store(c.metrics.MessagesRetried.Load())
	m.MessagesDeadLettered.Store(c.metrics.MessagesDeadLettered.Load())
	m.Lag.Store(c.metrics.Lag.Load())
	if v := c.metrics.LastConsumedAt.Load(); v != nil {
		m.LastConsumedAt.Store(v)
	}
	return m
}

// Close stops the loop and releases the reader and dead letter producer.
func (c *Consumer) Close() error {
	if !c.running.CompareAndSwap(true, false) {
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()

	var err error
	if c.reader != nil {
		err = c.reader.Close()
	}
	if c.deadLetterProducer != nil {
		_ = c.deadLetterProducer.Close()
	}

	c.logger.Info("kafka consumer closed",
		logging.Int64("consumed", c.metrics.MessagesConsumed.Load()))
	return err
}

// ValidateConsumerConfig validates configuration.
func ValidateConsumerConfig(cfg ConsumerConfig) error {
	if len(cfg.Brokers) == 0 {
		return errors.InvalidParam("brokers required")
	}
	if cfg.GroupID == "" {
		return errors.InvalidParam("group id required")
	}
	if len(cfg.Topics) == 0 {
		return errors.InvalidParam("at least one topic required")
	}
	if cfg.AutoOffsetReset != "" && cfg.AutoOffsetReset != "earliest" && cfg.AutoOffsetReset != "latest" {
		return errors.InvalidParam("auto offset reset must be earliest or latest")
	}
	if cfg.RetryConfig.MaxRetries < 0 {
		return errors.InvalidParam("max retries must be >= 0")
	}
	return nil
}
