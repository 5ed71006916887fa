package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultAugmentationStrategy    = "base"
	DefaultModificationProbability = 0.05
	DefaultTokenizationStrategy    = "kmer"
	DefaultK                       = 3
	DefaultPaddingSymbol           = "N"
	DefaultPaddingStrategy         = "front"
	DefaultTruncationStrategy      = "front"
	DefaultOptimalLength           = 8

	DefaultVocabularySource = "kmer"
	DefaultVocabularyObject = "vocab.json"

	DefaultScenarioName   = "default"
	DefaultRunsDir        = "runs"
	DefaultSampleSequence = "ACGTGCTTCGATC"

	DefaultServerAddr         = ":8080"
	DefaultServerMode         = "release"
	DefaultServerMaxBatchSize = 1024

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "seqprep:"
	DefaultRedisTTL       = 24 * time.Hour

	DefaultKafkaBroker      = "localhost:9092"
	DefaultKafkaGroupID     = "seqprep-encoder"
	DefaultKafkaInputTopic  = "seqprep.sequences.raw"
	DefaultKafkaOutputTopic = "seqprep.sequences.encoded"

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "seqprep-vocabularies"

	DefaultMetricsNamespace = "seqprep"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultWorkerConcurrency = 8
)

// DefaultAlphabet is the nucleotide alphabet.
var DefaultAlphabet = []string{"A", "C", "G", "T"}

// ApplyDefaults fills every zero-value field in cfg with its default.  Fields
// already set are left unchanged.  The modification probability is defaulted
// through viper instead, since zero is a meaningful value.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Pipeline ──────────────────────────────────────────────────────────────
	p := &cfg.Pipeline
	if p.Augmentation.Strategy == "" {
		p.Augmentation.Strategy = DefaultAugmentationStrategy
	}
	if len(p.Augmentation.Alphabet) == 0 {
		p.Augmentation.Alphabet = append([]string(nil), DefaultAlphabet...)
	}
	if p.Tokenization.Strategy == "" {
		p.Tokenization.Strategy = DefaultTokenizationStrategy
	}
	if p.Tokenization.K == 0 {
		p.Tokenization.K = DefaultK
	}
	if p.Tokenization.PaddingSymbol == "" {
		p.Tokenization.PaddingSymbol = DefaultPaddingSymbol
	}
	if p.Padding.Strategy == "" {
		p.Padding.Strategy = DefaultPaddingStrategy
	}
	if p.Padding.OptimalLength == 0 {
		p.Padding.OptimalLength = DefaultOptimalLength
	}
	if p.Truncation.Strategy == "" {
		p.Truncation.Strategy = DefaultTruncationStrategy
	}
	if p.Truncation.OptimalLength == 0 {
		p.Truncation.OptimalLength = DefaultOptimalLength
	}

	// ── Vocabulary / scenario ─────────────────────────────────────────────────
	if cfg.Vocabulary.Source == "" {
		cfg.Vocabulary.Source = DefaultVocabularySource
	}
	if cfg.Vocabulary.Object == "" {
		cfg.Vocabulary.Object = DefaultVocabularyObject
	}
	if cfg.Scenario.Name == "" {
		cfg.Scenario.Name = DefaultScenarioName
	}
	if cfg.Scenario.RunsDir == "" {
		cfg.Scenario.RunsDir = DefaultRunsDir
	}
	if cfg.Scenario.SampleSequence == "" {
		cfg.Scenario.SampleSequence = DefaultSampleSequence
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultServerAddr
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.MaxBatchSize == 0 {
		cfg.Server.MaxBatchSize = DefaultServerMaxBatchSize
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.TTL == 0 {
		cfg.Redis.TTL = DefaultRedisTTL
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.InputTopic == "" {
		cfg.Kafka.InputTopic = DefaultKafkaInputTopic
	}
	if cfg.Kafka.OutputTopic == "" {
		cfg.Kafka.OutputTopic = DefaultKafkaOutputTopic
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}

	// ── Metrics / worker / log ────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = DefaultWorkerConcurrency
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if len(cfg.Log.OutputPaths) == 0 {
		cfg.Log.OutputPaths = []string{"stdout"}
	}
}

// Default returns a fully defaulted configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.Pipeline.Augmentation.ModificationProbability = DefaultModificationProbability
	ApplyDefaults(cfg)
	return cfg
}
