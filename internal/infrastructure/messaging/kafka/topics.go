package kafka

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SeqPrep/pkg/errors"
	"github.com/turtacn/SeqPrep/pkg/types/common"
)

// Topic names.
const (
	TopicSequencesRaw     = "seqprep.sequences.raw"
	TopicSequencesEncoded = "seqprep.sequences.encoded"
	TopicDeadLetter       = "seqprep.sequences.dlq"
)

// Event types.
const (
	EventSequenceRaw     = "sequence.raw"
	EventSequenceEncoded = "sequence.encoded"
)

const schemaVersion = "v1"

// EventEnvelope standardizes event messages.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	TraceID       string            `json:"trace_id,omitempty"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// RawSequencePayload carries one sequence to encode.
type RawSequencePayload struct {
	ID       string            `json:"id"`
	Sequence string            `json:"sequence"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// EncodedSequencePayload carries the result for one RawSequencePayload.
// Exactly one of IDs and Error is set.
type EncodedSequencePayload struct {
	ID       string              `json:"id"`
	SourceID string              `json:"source_id"`
	IDs      [][]int             `json:"ids,omitempty"`
	Error    *common.ErrorDetail `json:"error,omitempty"`
	Metadata map[string]string   `json:"metadata,omitempty"`
}

// NewEventEnvelope marshals payload into a fresh envelope.
func NewEventEnvelope(eventType, source string, payload interface{}) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSerialization, "failed to marshal payload")
	}
	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: schemaVersion,
		Payload:       data,
	}, nil
}

// DecodePayload unmarshals the payload into target.
func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return errors.New(errors.CodeSerialization, "empty payload").WithDetail("event_id=" + e.EventID)
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.CodeSerialization, "failed to unmarshal payload")
	}
	return nil
}

// ToMessage renders the envelope as a producer message keyed by key.
func (e *EventEnvelope) ToMessage(topic string, key string) (*common.ProducerMessage, error) {
	val, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSerialization, "failed to marshal envelope")
	}
	headers := map[string]string{
		"event_type":     e.EventType,
		"source_service": e.Source,
		"schema_version": e.SchemaVersion,
	}
	if e.TraceID != "" {
		headers["trace_id"] = e.TraceID
	}
	msg := &common.ProducerMessage{
		Topic:     topic,
		Value:     val,
		Headers:   headers,
		Timestamp: e.Timestamp,
	}
	if key != "" {
		msg.Key = []byte(key)
	}
	return msg, nil
}

// MessageToEventEnvelope decodes a consumed message.
func MessageToEventEnvelope(msg *common.Message) (*EventEnvelope, error) {
	if len(msg.Value) == 0 {
		return nil, errors.InvalidParam("empty message value")
	}
	var env EventEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return nil, errors.Wrap(err, errors.CodeSerialization, "failed to unmarshal envelope")
	}
	return &env, nil
}

// ConnInterface abstracts kafka.Conn for testing.
type ConnInterface interface {
	CreateTopics(topics ...kafka.TopicConfig) error
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	Close() error
}

// TopicManager creates the pipeline topics.
type TopicManager struct {
	conn   ConnInterface
	logger logging.Logger
}

// NewTopicManager dials the first broker.
func NewTopicManager(brokers []string, logger logging.Logger) (*TopicManager, error) {
	if len(brokers) == 0 {
		return nil, errors.InvalidParam("brokers required")
	}
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeMessageQueueError, "failed to dial kafka").
			WithDetail("broker=" + brokers[0])
	}
	return NewTopicManagerWithConn(conn, logger), nil
}

// NewTopicManagerWithConn wraps an existing connection.
func NewTopicManagerWithConn(conn ConnInterface, logger logging.Logger) *TopicManager {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &TopicManager{conn: conn, logger: logger}
}

// CreateTopic creates cfg.Name.  An existing topic is not an error.
func (m *TopicManager) CreateTopic(ctx context.Context, cfg common.TopicConfig) error {
	if cfg.Name == "" {
		return errors.InvalidParam("topic name required")
	}
	if cfg.NumPartitions <= 0 {
		return errors.InvalidParam("partitions must be > 0").WithDetail("topic=" + cfg.Name)
	}
	if cfg.ReplicationFactor <= 0 {
		return errors.InvalidParam("replication factor must be > 0").WithDetail("topic=" + cfg.Name)
	}

	kCfg := kafka.TopicConfig{
		Topic:             cfg.Name,
		NumPartitions:     cfg.NumPartitions,
		ReplicationFactor: cfg.ReplicationFactor,
	}
	if cfg.RetentionMs > 0 {
		kCfg.ConfigEntries = append(kCfg.ConfigEntries, kafka.ConfigEntry{ConfigName: "retention.ms", ConfigValue: strconv.FormatInt(cfg.RetentionMs, 10)})
	}
	if cfg.CleanupPolicy != "" {
		kCfg.ConfigEntries = append(kCfg.ConfigEntries, kafka.ConfigEntry{ConfigName: "cleanup.policy", ConfigValue: cfg.CleanupPolicy})
	}
	for k, v := range cfg.Configs {
		kCfg.ConfigEntries = append(kCfg.ConfigEntries, kafka.ConfigEntry{ConfigName: k, ConfigValue: v})
	}

	if err := m.conn.CreateTopics(kCfg); err != nil {
		if stderrors.Is(err, kafka.TopicAlreadyExists) {
			return nil
		}
		if exists, _ := m.TopicExists(ctx, cfg.Name); exists {
			return nil
		}
		return errors.Wrap(err, errors.CodeMessageQueueError, "create topic failed").WithDetail("topic=" + cfg.Name)
	}
	m.logger.Info("topic created", logging.String("topic", cfg.Name))
	return nil
}

// TopicExists reports whether name has any partitions.
func (m *TopicManager) TopicExists(_ context.Context, name string) (bool, error) {
	partitions, err := m.conn.ReadPartitions(name)
	if err != nil {
		return false, nil
	}
	return len(partitions) > 0, nil
}

// EnsureTopics creates every topic in topics.
func (m *TopicManager) EnsureTopics(ctx context.Context, topics []common.TopicConfig) error {
	for _, topic := range topics {
		if err := m.CreateTopic(ctx, topic); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the connection.
func (m *TopicManager) Close() error {
	return m.conn.Close()
}

// DefaultTopics returns the topic layout used by the stream worker, with
// input and output names substituted.
func DefaultTopics(input, output string) []common.TopicConfig {
	const day = int64(24 * time.Hour / time.Millisecond)
	return []common.TopicConfig{
		{Name: input, NumPartitions: 6, ReplicationFactor: 1, RetentionMs: 7 * day},
		{Name: output, NumPartitions: 6, ReplicationFactor: 1, RetentionMs: 7 * day},
		{Name: TopicDeadLetter, NumPartitions: 1, ReplicationFactor: 1, RetentionMs: 30 * day},
	}
}
