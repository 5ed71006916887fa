package encoding

import (
	"context"

	"github.com/turtacn/SeqPrep/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/SeqPrep/pkg/types/common"
)

// Publisher sends encoded results downstream.
type Publisher interface {
	Publish(ctx context.Context, msg *common.ProducerMessage) error
}

// StreamWorker turns raw-sequence events into encoded-sequence events.
// Pipeline failures travel inside the encoded payload; only undecodable
// input and publish failures are returned to the consumer for retry and
// dead-lettering.
type StreamWorker struct {
	svc         *Service
	pub         Publisher
	outputTopic string
	metrics     *prometheus.PipelineMetrics
	logger      logging.Logger
}

// NewStreamWorker publishes results of svc to outputTopic through pub.
func NewStreamWorker(svc *Service, pub Publisher, outputTopic string, m *prometheus.PipelineMetrics, logger logging.Logger) *StreamWorker {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &StreamWorker{
		svc:         svc,
		pub:         pub,
		outputTopic: outputTopic,
		metrics:     m,
		logger:      logger.Named("stream"),
	}
}

// Handle implements common.MessageHandler.
func (w *StreamWorker) Handle(ctx context.Context, msg *common.Message) error {
	env, err := kafka.MessageToEventEnvelope(msg)
	if err != nil {
		prometheus.RecordMessage(w.metrics, msg.Topic, "invalid")
		return err
	}
	var raw kafka.RawSequencePayload
	if err := env.DecodePayload(&raw); err != nil {
		prometheus.RecordMessage(w.metrics, msg.Topic, "invalid")
		return err
	}

	res := w.svc.EncodeRecord(ctx, Record{ID: raw.ID, Sequence: raw.Sequence, Metadata: raw.Metadata})
	out, err := kafka.NewEventEnvelope(kafka.EventSequenceEncoded, "seqprep-worker", kafka.EncodedSequencePayload{
		ID:       res.ID,
		SourceID: res.SourceID,
		IDs:      res.IDs,
		Error:    res.Error,
		Metadata: res.Metadata,
	})
	if err != nil {
		return err
	}
	out.TraceID = env.TraceID
	pm, err := out.ToMessage(w.outputTopic, raw.ID)
	if err != nil {
		return err
	}
	if err := w.pub.Publish(ctx, pm); err != nil {
		prometheus.RecordMessage(w.metrics, msg.Topic, "publish_failed")
		w.logger.Warn("publish failed", logging.SequenceID(raw.ID), logging.Err(err))
		return err
	}

	status := "ok"
	if !res.OK() {
		status = "encode_failed"
	}
	prometheus.RecordMessage(w.metrics, msg.Topic, status)
	return nil
}
