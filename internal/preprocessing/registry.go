// Package preprocessing composes the augmentation, tokenization, padding and
// truncation stages into a Preprocessor.  Strategies are resolved by name
// through a static Registry.
package preprocessing

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/turtacn/SeqPrep/internal/config"
	"github.com/turtacn/SeqPrep/internal/preprocessing/augmentation"
	"github.com/turtacn/SeqPrep/internal/preprocessing/padding"
	"github.com/turtacn/SeqPrep/internal/preprocessing/random"
	"github.com/turtacn/SeqPrep/internal/preprocessing/tokenization"
	"github.com/turtacn/SeqPrep/internal/preprocessing/truncation"
	"github.com/turtacn/SeqPrep/internal/preprocessing/vocab"
	"github.com/turtacn/SeqPrep/pkg/errors"
	"github.com/turtacn/SeqPrep/pkg/types/sequence"
)

// Stage kinds.
const (
	KindAugmentation = "augmentation"
	KindTokenization = "tokenization"
	KindPadding      = "padding"
	KindTruncation   = "truncation"
)

type (
	AugmentationFactory func(cfg config.AugmentationConfig, rng random.Source) (augmentation.Strategy, error)
	TokenizationFactory func(cfg config.TokenizationConfig) (tokenization.Strategy, error)
	PaddingFactory      func(length int, rng random.Source) (padding.Strategy, error)
	TruncationFactory   func(length int, rng random.Source) (truncation.Strategy, error)
)

// Registry maps (stage kind, strategy name) to a constructor.  Lookups are
// case-insensitive.  A Registry is immutable after NewRegistry returns.
type Registry struct {
	augmentation map[string]AugmentationFactory
	tokenization map[string]TokenizationFactory
	padding      map[string]PaddingFactory
	truncation   map[string]TruncationFactory
}

// NewRegistry returns a registry holding every built-in strategy.
func NewRegistry() *Registry {
	return &Registry{
		augmentation: map[string]AugmentationFactory{
			augmentation.NameBase:     newBaseAugmentation,
			augmentation.NameIdentity: newIdentityAugmentation,
			augmentation.NameRandom:   newRandomAugmentation,
		},
		tokenization: map[string]TokenizationFactory{
			tokenization.NameKmer: newKmerTokenization,
		},
		padding: map[string]PaddingFactory{
			padding.NameFront: func(l int, _ random.Source) (padding.Strategy, error) { return padding.NewFront(l) },
			padding.NameEnd:   func(l int, _ random.Source) (padding.Strategy, error) { return padding.NewEnd(l) },
			padding.NameRandom: func(l int, rng random.Source) (padding.Strategy, error) {
				return padding.NewRandom(l, rng)
			},
		},
		truncation: map[string]TruncationFactory{
			truncation.NameFront: func(l int, _ random.Source) (truncation.Strategy, error) { return truncation.NewFront(l) },
			truncation.NameEnd:   func(l int, _ random.Source) (truncation.Strategy, error) { return truncation.NewEnd(l) },
			truncation.NameSlidingWindow: func(l int, rng random.Source) (truncation.Strategy, error) {
				return truncation.NewSlidingWindow(l, rng)
			},
		},
	}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the shared built-in registry.
func DefaultRegistry() *Registry { return defaultRegistry }

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Names lists the registered strategy names of a stage kind in sorted order.
// An unknown kind yields nil.
func (r *Registry) Names(kind string) []string {
	var names []string
	switch kind {
	case KindAugmentation:
		names = keys(r.augmentation)
	case KindTokenization:
		names = keys(r.tokenization)
	case KindPadding:
		names = keys(r.padding)
	case KindTruncation:
		names = keys(r.truncation)
	default:
		return nil
	}
	sort.Strings(names)
	return names
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// stages is the resolved set of strategies of one pipeline.
type stages struct {
	augmentation augmentation.Strategy
	tokenization tokenization.Strategy
	padding      padding.Strategy
	truncation   truncation.Strategy
}

func (r *Registry) resolve(cfg config.PipelineConfig, rng random.Source) (*stages, error) {
	augFactory, ok := r.augmentation[normalize(cfg.Augmentation.Strategy)]
	if !ok {
		return nil, errors.UnknownStrategy(KindAugmentation, cfg.Augmentation.Strategy)
	}
	tokFactory, ok := r.tokenization[normalize(cfg.Tokenization.Strategy)]
	if !ok {
		return nil, errors.UnknownStrategy(KindTokenization, cfg.Tokenization.Strategy)
	}
	padFactory, ok := r.padding[normalize(cfg.Padding.Strategy)]
	if !ok {
		return nil, errors.UnknownStrategy(KindPadding, cfg.Padding.Strategy)
	}
	truncFactory, ok := r.truncation[normalize(cfg.Truncation.Strategy)]
	if !ok {
		return nil, errors.UnknownStrategy(KindTruncation, cfg.Truncation.Strategy)
	}

	s := &stages{}
	var err error
	if s.augmentation, err = augFactory(cfg.Augmentation, rng); err != nil {
		return nil, err
	}
	if s.tokenization, err = tokFactory(cfg.Tokenization); err != nil {
		return nil, err
	}
	if s.padding, err = padFactory(cfg.Padding.OptimalLength, rng); err != nil {
		return nil, err
	}
	if s.truncation, err = truncFactory(cfg.Truncation.OptimalLength, rng); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate resolves every strategy name and parameter of cfg without
// keeping the result.  It fails with CodeUnknownStrategy or
// CodeInvalidConfig.
func (r *Registry) Validate(cfg config.PipelineConfig) error {
	_, err := r.resolve(cfg, random.Global())
	return err
}

// Build resolves cfg and returns a Preprocessor mapping through v.
func (r *Registry) Build(cfg config.PipelineConfig, v *vocab.Vocabulary, opts ...Option) (*Preprocessor, error) {
	if v == nil {
		return nil, errors.New(errors.CodeVocabularyMissing, "vocabulary is required to build a preprocessor")
	}
	p := &Preprocessor{vocab: v}
	for _, opt := range opts {
		opt(p)
	}
	if p.rng == nil {
		p.rng = random.FromSeed(cfg.Seed)
	}
	if p.logger == nil {
		p.logger = noopLogger()
	}

	s, err := r.resolve(cfg, p.rng)
	if err != nil {
		return nil, err
	}
	p.stages = *s
	p.logger.Debug("preprocessor built",
		stageField(KindAugmentation, s.augmentation.Name()),
		stageField(KindTokenization, s.tokenization.Name()),
		stageField(KindPadding, s.padding.Name()),
		stageField(KindTruncation, s.truncation.Name()))
	return p, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Built-in factories
// ─────────────────────────────────────────────────────────────────────────────

func newModifier(cfg config.AugmentationConfig, rng random.Source) (*augmentation.Modifier, error) {
	alphabet, err := sequence.ParseAlphabet(cfg.Alphabet)
	if err != nil {
		return nil, err
	}
	return augmentation.NewModifier(alphabet, rng)
}

// newBaseAugmentation ignores modification_probability; the base strategy
// always mutates at DefaultMutationProbability.
func newBaseAugmentation(cfg config.AugmentationConfig, rng random.Source) (augmentation.Strategy, error) {
	mod, err := newModifier(cfg, rng)
	if err != nil {
		return nil, err
	}
	return augmentation.NewBase(mod)
}

func newIdentityAugmentation(config.AugmentationConfig, random.Source) (augmentation.Strategy, error) {
	return augmentation.NewIdentity(), nil
}

func newRandomAugmentation(cfg config.AugmentationConfig, rng random.Source) (augmentation.Strategy, error) {
	mod, err := newModifier(cfg, rng)
	if err != nil {
		return nil, err
	}
	return augmentation.NewRandom(mod, cfg.ModificationProbability)
}

func newKmerTokenization(cfg config.TokenizationConfig) (tokenization.Strategy, error) {
	var filler sequence.Symbol
	if cfg.PaddingSymbol != "" {
		r, size := utf8.DecodeRuneInString(cfg.PaddingSymbol)
		if size != len(cfg.PaddingSymbol) {
			return nil, errors.InvalidConfig("tokenization padding symbol must be a single character").
				WithDetail("padding_symbol=" + cfg.PaddingSymbol)
		}
		filler = r
	}
	return tokenization.NewKmer(cfg.K, filler)
}
