// Package config defines the configuration structures of SeqPrep and their
// validation.  Loading lives in loader.go; defaults in defaults.go.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Pipeline
// ─────────────────────────────────────────────────────────────────────────────

// AugmentationConfig selects and parameterises the augmentation stage.
type AugmentationConfig struct {
	Strategy                string   `mapstructure:"strategy" yaml:"strategy"`
	Alphabet                []string `mapstructure:"alphabet" yaml:"alphabet"`
	ModificationProbability float64  `mapstructure:"modification_probability" yaml:"modification_probability"`
}

// TokenizationConfig selects and parameterises the tokenization stage.
type TokenizationConfig struct {
	Strategy      string `mapstructure:"strategy" yaml:"strategy"`
	K             int    `mapstructure:"k" yaml:"k"`
	PaddingSymbol string `mapstructure:"padding_symbol" yaml:"padding_symbol"`
}

// LengthConfig selects a padding or truncation strategy and its target
// length.
type LengthConfig struct {
	Strategy      string `mapstructure:"strategy" yaml:"strategy"`
	OptimalLength int    `mapstructure:"optimal_length" yaml:"optimal_length"`
}

// PipelineConfig is the complete description of one preprocessing pipeline.
type PipelineConfig struct {
	Augmentation AugmentationConfig `mapstructure:"augmentation" yaml:"augmentation"`
	Tokenization TokenizationConfig `mapstructure:"tokenization" yaml:"tokenization"`
	Padding      LengthConfig       `mapstructure:"padding" yaml:"padding"`
	Truncation   LengthConfig       `mapstructure:"truncation" yaml:"truncation"`
	// Seed fixes the random source; 0 selects the unseeded global source.
	Seed uint64 `mapstructure:"seed" yaml:"seed,omitempty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Runtime surfaces
// ─────────────────────────────────────────────────────────────────────────────

// VocabularyConfig says where the vocabulary comes from.
type VocabularyConfig struct {
	// Source is "kmer" (build exhaustively), "file" or "minio".
	Source string `mapstructure:"source" yaml:"source"`
	Path   string `mapstructure:"path" yaml:"path"`
	Object string `mapstructure:"object" yaml:"object"`
}

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	Mode            string        `mapstructure:"mode" yaml:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxBatchSize    int           `mapstructure:"max_batch_size" yaml:"max_batch_size"`
}

// RedisConfig holds the encoded-sequence cache settings.
type RedisConfig struct {
	Enabled   bool          `mapstructure:"enabled" yaml:"enabled"`
	Addr      string        `mapstructure:"addr" yaml:"addr"`
	Password  string        `mapstructure:"password" yaml:"password"`
	DB        int           `mapstructure:"db" yaml:"db"`
	KeyPrefix string        `mapstructure:"key_prefix" yaml:"key_prefix"`
	TTL       time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// KafkaConfig holds the streaming worker settings.
type KafkaConfig struct {
	Brokers     []string `mapstructure:"brokers" yaml:"brokers"`
	GroupID     string   `mapstructure:"group_id" yaml:"group_id"`
	InputTopic  string   `mapstructure:"input_topic" yaml:"input_topic"`
	OutputTopic string   `mapstructure:"output_topic" yaml:"output_topic"`
}

// MinIOConfig holds the object storage settings for vocabularies.
type MinIOConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl" yaml:"use_ssl"`
	Bucket    string `mapstructure:"bucket" yaml:"bucket"`
	Region    string `mapstructure:"region" yaml:"region"`
}

// MetricsConfig controls the Prometheus collector.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Namespace string `mapstructure:"namespace" yaml:"namespace"`
}

// WorkerConfig controls batch and stream concurrency.
type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level       string   `mapstructure:"level" yaml:"level"`
	Format      string   `mapstructure:"format" yaml:"format"`
	OutputPaths []string `mapstructure:"output_paths" yaml:"output_paths"`
}

// ScenarioConfig describes a scenario run: its name, where run artefacts go
// and which input to encode.
type ScenarioConfig struct {
	Name           string `mapstructure:"name" yaml:"name"`
	RunsDir        string `mapstructure:"runs_dir" yaml:"runs_dir"`
	SampleSequence string `mapstructure:"sample_sequence" yaml:"sample_sequence"`
	FastaPath      string `mapstructure:"fasta_path" yaml:"fasta_path,omitempty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root configuration
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration.
type Config struct {
	Pipeline   PipelineConfig   `mapstructure:"pipeline" yaml:"pipeline"`
	Vocabulary VocabularyConfig `mapstructure:"vocabulary" yaml:"vocabulary"`
	Scenario   ScenarioConfig   `mapstructure:"scenario" yaml:"scenario"`
	Server     ServerConfig     `mapstructure:"server" yaml:"server,omitempty"`
	Redis      RedisConfig      `mapstructure:"redis" yaml:"redis,omitempty"`
	Kafka      KafkaConfig      `mapstructure:"kafka" yaml:"kafka,omitempty"`
	MinIO      MinIOConfig      `mapstructure:"minio" yaml:"minio,omitempty"`
	Metrics    MetricsConfig    `mapstructure:"metrics" yaml:"metrics,omitempty"`
	Worker     WorkerConfig     `mapstructure:"worker" yaml:"worker,omitempty"`
	Log        LogConfig        `mapstructure:"log" yaml:"log,omitempty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs structural validation.  Strategy names and their
// parameters are resolved by the preprocessing registry, not here.
func (c *Config) Validate() error {
	if err := c.Pipeline.Validate(); err != nil {
		return err
	}

	switch c.Vocabulary.Source {
	case "kmer":
	case "file":
		if c.Vocabulary.Path == "" {
			return fmt.Errorf("config: vocabulary.path is required when source is file")
		}
	case "minio":
		if !c.MinIO.Enabled {
			return fmt.Errorf("config: vocabulary.source minio requires minio.enabled")
		}
		if c.Vocabulary.Object == "" {
			return fmt.Errorf("config: vocabulary.object is required when source is minio")
		}
	default:
		return fmt.Errorf("config: vocabulary.source %q is invalid; expected kmer|file|minio", c.Vocabulary.Source)
	}

	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}
	if c.Server.MaxBatchSize < 1 {
		return fmt.Errorf("config: server.max_batch_size must be ≥ 1, got %d", c.Server.MaxBatchSize)
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required when redis is enabled")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
	}

	if c.MinIO.Enabled && (c.MinIO.Endpoint == "" || c.MinIO.Bucket == "") {
		return fmt.Errorf("config: minio.endpoint and minio.bucket are required when minio is enabled")
	}

	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("config: worker.concurrency must be ≥ 1, got %d", c.Worker.Concurrency)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}

// Validate checks the pipeline section for missing names and out-of-range
// numbers.
func (p *PipelineConfig) Validate() error {
	if p.Augmentation.Strategy == "" {
		return fmt.Errorf("config: pipeline.augmentation.strategy is required")
	}
	if len(p.Augmentation.Alphabet) == 0 {
		return fmt.Errorf("config: pipeline.augmentation.alphabet must not be empty")
	}
	if pr := p.Augmentation.ModificationProbability; pr < 0 || pr > 1 {
		return fmt.Errorf("config: pipeline.augmentation.modification_probability %g is out of range [0, 1]", pr)
	}
	if p.Tokenization.Strategy == "" {
		return fmt.Errorf("config: pipeline.tokenization.strategy is required")
	}
	if p.Tokenization.K <= 0 {
		return fmt.Errorf("config: pipeline.tokenization.k must be > 0, got %d", p.Tokenization.K)
	}
	if p.Padding.Strategy == "" || p.Truncation.Strategy == "" {
		return fmt.Errorf("config: pipeline.padding.strategy and pipeline.truncation.strategy are required")
	}
	if p.Padding.OptimalLength < 0 || p.Truncation.OptimalLength < 0 {
		return fmt.Errorf("config: pipeline optimal_length must be ≥ 0")
	}
	return nil
}
