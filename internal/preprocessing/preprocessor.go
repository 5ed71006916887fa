package preprocessing

import (
	"github.com/turtacn/SeqPrep/internal/config"
	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SeqPrep/internal/preprocessing/random"
	"github.com/turtacn/SeqPrep/internal/preprocessing/vocab"
	"github.com/turtacn/SeqPrep/pkg/types/sequence"
)

// Option configures a Preprocessor at Build time.
type Option func(*Preprocessor)

// WithLogger injects the logger used for stage failures.
func WithLogger(l logging.Logger) Option {
	return func(p *Preprocessor) {
		if l != nil {
			p.logger = l.Named("preprocessor")
		}
	}
}

// WithRandom overrides the random source derived from the pipeline seed.
func WithRandom(src random.Source) Option {
	return func(p *Preprocessor) { p.rng = src }
}

func noopLogger() logging.Logger { return logging.NewNopLogger() }

func stageField(kind, name string) logging.Field {
	return logging.String(kind, name)
}

// Preprocessor turns a raw sequence into vocabulary ids:
//
//	augment → tokenize → pad → truncate → map
//
// It is safe for concurrent use when its random source is.
type Preprocessor struct {
	stages
	vocab  *vocab.Vocabulary
	rng    random.Source
	logger logging.Logger
}

// Tokens runs every stage except the final vocabulary mapping.
func (p *Preprocessor) Tokens(raw string) (sequence.TokenSequence, error) {
	seq, err := p.augmentation.Execute(sequence.FromString(raw))
	if err != nil {
		p.logFailure(KindAugmentation, err)
		return nil, err
	}
	tokens, err := p.tokenization.Execute(seq)
	if err != nil {
		p.logFailure(KindTokenization, err)
		return nil, err
	}
	tokens = p.padding.Execute(tokens)
	return p.truncation.Execute(tokens), nil
}

// Process returns the id sequence of raw.  The error of the first failing
// stage is returned unchanged.
func (p *Preprocessor) Process(raw string) (sequence.IDSequence, error) {
	tokens, err := p.Tokens(raw)
	if err != nil {
		return nil, err
	}
	return p.vocab.MapSentence(tokens), nil
}

// Deterministic reports whether equal inputs always produce equal outputs.
func (p *Preprocessor) Deterministic() bool {
	return p.augmentation.Deterministic() && p.padding.Deterministic() && p.truncation.Deterministic()
}

// Vocabulary returns the vocabulary ids are mapped through.
func (p *Preprocessor) Vocabulary() *vocab.Vocabulary { return p.vocab }

// Describe returns the configured strategy name of every stage keyed by
// stage kind.
func (p *Preprocessor) Describe() map[string]string {
	return map[string]string{
		KindAugmentation: p.augmentation.Name(),
		KindTokenization: p.tokenization.Name(),
		KindPadding:      p.padding.Name(),
		KindTruncation:   p.truncation.Name(),
	}
}

func (p *Preprocessor) logFailure(kind string, err error) {
	p.logger.Debug("stage failed", logging.Stage(kind), logging.ErrCode(err), logging.Err(err))
}

// Build resolves cfg through the default registry.
func Build(cfg config.PipelineConfig, v *vocab.Vocabulary, opts ...Option) (*Preprocessor, error) {
	return defaultRegistry.Build(cfg, v, opts...)
}

// Validate checks cfg against the default registry.
func Validate(cfg config.PipelineConfig) error {
	return defaultRegistry.Validate(cfg)
}
