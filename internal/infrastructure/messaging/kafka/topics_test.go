package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/turtacn/SeqPrep/pkg/errors"
	"github.com/turtacn/SeqPrep/pkg/types/common"
)

type mockKafkaConn struct {
	created    []kafka.TopicConfig
	createFunc func(topics ...kafka.TopicConfig) error
	readFunc   func(topics ...string) ([]kafka.Partition, error)
}

func (m *mockKafkaConn) CreateTopics(topics ...kafka.TopicConfig) error {
	if m.createFunc != nil {
		if err := m.createFunc(topics...); err != nil {
			return err
		}
	}
	m.created = append(m.created, topics...)
	return nil
}

func (m *mockKafkaConn) ReadPartitions(topics ...string) ([]kafka.Partition, error) {
	if m.readFunc != nil {
		return m.readFunc(topics...)
	}
	return nil, nil
}

func (m *mockKafkaConn) Close() error { return nil }

func TestEventEnvelope_RoundTrip(t *testing.T) {
	env, err := NewEventEnvelope(EventSequenceRaw, "test", RawSequencePayload{ID: "seq-1", Sequence: "ACGT"})
	require.NoError(t, err)
	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, "v1", env.SchemaVersion)

	msg, err := env.ToMessage(TopicSequencesRaw, "seq-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("seq-1"), msg.Key)
	assert.Equal(t, EventSequenceRaw, msg.Headers["event_type"])

	back, err := MessageToEventEnvelope(&common.Message{Value: msg.Value})
	require.NoError(t, err)
	var payload RawSequencePayload
	require.NoError(t, back.DecodePayload(&payload))
	assert.Equal(t, "ACGT", payload.Sequence)
}

func TestMessageToEventEnvelope_Invalid(t *testing.T) {
	_, err := MessageToEventEnvelope(&common.Message{})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidParam))

	_, err = MessageToEventEnvelope(&common.Message{Value: []byte("{")})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeSerialization))

	env := &EventEnvelope{EventID: "e"}
	assert.True(t, apperrors.IsCode(env.DecodePayload(&RawSequencePayload{}), apperrors.CodeSerialization))
}

func TestCreateTopic(t *testing.T) {
	conn := &mockKafkaConn{}
	m := NewTopicManagerWithConn(conn, nil)

	err := m.CreateTopic(context.Background(), common.TopicConfig{
		Name: TopicSequencesRaw, NumPartitions: 3, ReplicationFactor: 1, RetentionMs: 1000,
	})
	require.NoError(t, err)
	require.Len(t, conn.created, 1)
	assert.Equal(t, "retention.ms", conn.created[0].ConfigEntries[0].ConfigName)
	assert.Equal(t, "1000", conn.created[0].ConfigEntries[0].ConfigValue)

	assert.Error(t, m.CreateTopic(context.Background(), common.TopicConfig{}))
	assert.Error(t, m.CreateTopic(context.Background(), common.TopicConfig{Name: "x", ReplicationFactor: 1}))
}

func TestCreateTopic_AlreadyExists(t *testing.T) {
	conn := &mockKafkaConn{createFunc: func(...kafka.TopicConfig) error { return kafka.TopicAlreadyExists }}
	m := NewTopicManagerWithConn(conn, nil)
	assert.NoError(t, m.CreateTopic(context.Background(), common.TopicConfig{Name: "x", NumPartitions: 1, ReplicationFactor: 1}))
}

func TestCreateTopic_Failure(t *testing.T) {
	conn := &mockKafkaConn{createFunc: func(...kafka.TopicConfig) error { return errors.New("not controller") }}
	m := NewTopicManagerWithConn(conn, nil)
	err := m.CreateTopic(context.Background(), common.TopicConfig{Name: "x", NumPartitions: 1, ReplicationFactor: 1})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeMessageQueueError))
}

func TestEnsureTopics_Defaults(t *testing.T) {
	conn := &mockKafkaConn{}
	m := NewTopicManagerWithConn(conn, nil)

	topics := DefaultTopics("in", "out")
	require.NoError(t, m.EnsureTopics(context.Background(), topics))
	require.Len(t, conn.created, 3)
	assert.Equal(t, "in", conn.created[0].Topic)
	assert.Equal(t, "out", conn.created[1].Topic)
	assert.Equal(t, TopicDeadLetter, conn.created[2].Topic)
}

func TestTopicExists(t *testing.T) {
	conn := &mockKafkaConn{readFunc: func(topics ...string) ([]kafka.Partition, error) {
		if topics[0] == "present" {
			return []kafka.Partition{{Topic: "present"}}, nil
		}
		return nil, errors.New("unknown topic")
	}}
	m := NewTopicManagerWithConn(conn, nil)
	ok, err := m.TopicExists(context.Background(), "present")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = m.TopicExists(context.Background(), "absent")
	assert.False(t, ok)
}
