// Package encoding runs the preprocessing pipeline on behalf of the CLI, the
// HTTP API and the stream worker.  It adds the optional encoded-sequence
// cache, metrics and concurrent batch execution around a Preprocessor.
package encoding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"strings"
	"time"

	"github.com/turtacn/SeqPrep/internal/config"
	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/SeqPrep/internal/preprocessing"
	"github.com/turtacn/SeqPrep/pkg/errors"
	"github.com/turtacn/SeqPrep/pkg/types/common"
	"github.com/turtacn/SeqPrep/pkg/types/sequence"
)

// Cache is the subset of the redis cache the service needs.
type Cache interface {
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error
}

// Record is one sequence to encode.
type Record struct {
	ID       string            `json:"id"`
	Sequence string            `json:"sequence"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Result is the outcome for one Record.  Exactly one of IDs and Error is set.
type Result struct {
	ID       string              `json:"id"`
	SourceID string              `json:"source_id,omitempty"`
	IDs      sequence.IDSequence `json:"ids,omitempty"`
	Error    *common.ErrorDetail `json:"error,omitempty"`
	Metadata map[string]string   `json:"metadata,omitempty"`
}

// OK reports whether the record was encoded.
func (r Result) OK() bool { return r.Error == nil }

// Option configures a Service.
type Option func(*Service)

// WithCache enables the encoded-sequence cache.  It is consulted only when
// the pipeline is deterministic.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithMetrics records every call under the given source label.
func WithMetrics(m *prometheus.PipelineMetrics, source string) Option {
	return func(s *Service) {
		s.metrics = m
		if source != "" {
			s.source = source
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l.Named("encoding")
		}
	}
}

// WithConcurrency bounds the goroutines of EncodeBatch.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// Service encodes raw sequences.  It is safe for concurrent use when the
// preprocessor's random source is.
type Service struct {
	pre         *preprocessing.Preprocessor
	fingerprint string
	cache       Cache
	cacheTTL    time.Duration
	metrics     *prometheus.PipelineMetrics
	source      string
	concurrency int
	logger      logging.Logger
}

// NewService wraps pre.  cfg must be the configuration pre was built from; it
// is part of every cache key.
func NewService(pre *preprocessing.Preprocessor, cfg config.PipelineConfig, opts ...Option) *Service {
	s := &Service{
		pre:         pre,
		fingerprint: Fingerprint(cfg, pre.Vocabulary().Tokens()),
		source:      "service",
		concurrency: config.DefaultWorkerConcurrency,
		logger:      logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	prometheus.SetVocabularySize(s.metrics, s.source, pre.Vocabulary().Size())
	return s
}

// Preprocessor returns the wrapped pipeline, or nil on a nil Service.
func (s *Service) Preprocessor() *preprocessing.Preprocessor {
	if s == nil {
		return nil
	}
	return s.pre
}

// CacheEnabled reports whether Encode may serve results from the cache.
func (s *Service) CacheEnabled() bool {
	return s != nil && s.cache != nil && s.pre != nil && s.pre.Deterministic()
}

// Encode returns the id sequence of raw.
func (s *Service) Encode(ctx context.Context, raw string) (sequence.IDSequence, error) {
	start := time.Now()
	ids, err := s.encode(ctx, raw)
	prometheus.RecordProcess(s.metrics, s.source, time.Since(start), len(raw), len(ids), err)
	return ids, err
}

func (s *Service) encode(ctx context.Context, raw string) (sequence.IDSequence, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeTimeout, "encoding cancelled")
	}
	// Augmentation of an empty input draws a random symbol even when no
	// modification is applied, so empty inputs bypass the cache.
	if !s.CacheEnabled() || raw == "" {
		return s.pre.Process(raw)
	}

	var ids sequence.IDSequence
	loaded := false
	err := s.cache.GetOrSet(ctx, s.cacheKey(raw), &ids, s.cacheTTL, func(context.Context) (interface{}, error) {
		loaded = true
		return s.pre.Process(raw)
	})
	switch {
	case err == nil && loaded:
		prometheus.RecordCacheAccess(s.metrics, prometheus.CacheMiss)
		return ids, nil
	case err == nil:
		prometheus.RecordCacheAccess(s.metrics, prometheus.CacheHit)
		return ids, nil
	case loaded:
		prometheus.RecordCacheAccess(s.metrics, prometheus.CacheMiss)
		return nil, err
	}

	if errors.IsCode(err, errors.CodeSerialization) || errors.IsCode(err, errors.CodeCacheError) {
		s.logger.Warn("cache unavailable, encoding directly", logging.Err(err))
		prometheus.RecordCacheAccess(s.metrics, prometheus.CacheError)
		return s.pre.Process(raw)
	}
	// A pipeline error shared through singleflight.
	return nil, err
}

// EncodeRecord encodes rec and reports failure in the result.  Records with
// an empty sequence are rejected.
func (s *Service) EncodeRecord(ctx context.Context, rec Record) Result {
	res := Result{
		ID:       string(common.NewID()),
		SourceID: rec.ID,
		Metadata: rec.Metadata,
	}
	if rec.Sequence == "" {
		err := errors.New(errors.CodeEmptySequence, "empty sequence")
		res.Error = ErrorDetail(err)
		prometheus.RecordProcess(s.metrics, s.source, 0, 0, 0, err)
		return res
	}
	ids, err := s.Encode(ctx, rec.Sequence)
	if err != nil {
		res.Error = ErrorDetail(err)
		s.logger.Debug("record failed", logging.SequenceID(rec.ID), logging.ErrCode(err))
		return res
	}
	res.IDs = ids
	return res
}

func (s *Service) cacheKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return "encoded:" + s.fingerprint + ":" + hex.EncodeToString(sum[:])
}

// Fingerprint identifies a pipeline configuration together with the
// vocabulary it maps through.
func Fingerprint(cfg config.PipelineConfig, tokens []string) string {
	b, _ := json.Marshal(cfg)
	h := sha256.New()
	h.Write(b)
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(tokens, "\n")))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// ErrorDetail renders err for API responses and stream payloads.
func ErrorDetail(err error) *common.ErrorDetail {
	if err == nil {
		return nil
	}
	var ae *errors.AppError
	if stderrors.As(err, &ae) {
		return &common.ErrorDetail{Code: ae.Code.String(), Message: ae.Message, Detail: ae.Detail}
	}
	return &common.ErrorDetail{Code: errors.CodeUnknown.String(), Message: err.Error()}
}
