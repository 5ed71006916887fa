package preprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/SeqPrep/internal/config"
	"github.com/turtacn/SeqPrep/internal/preprocessing/random"
	"github.com/turtacn/SeqPrep/pkg/errors"
)

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()

	assert.Equal(t, []string{"base", "identity", "random"}, r.Names(KindAugmentation))
	assert.Equal(t, []string{"kmer"}, r.Names(KindTokenization))
	assert.Equal(t, []string{"end", "front", "random"}, r.Names(KindPadding))
	assert.Equal(t, []string{"end", "front", "slidingwindow"}, r.Names(KindTruncation))
	assert.Nil(t, r.Names("bogus"))
}

func TestValidate_AcceptsEveryCombination(t *testing.T) {
	r := NewRegistry()
	for _, aug := range r.Names(KindAugmentation) {
		for _, pad := range r.Names(KindPadding) {
			for _, trunc := range r.Names(KindTruncation) {
				cfg := identityConfig()
				cfg.Augmentation.Strategy = aug
				cfg.Augmentation.ModificationProbability = 0.5
				cfg.Padding.Strategy = pad
				cfg.Truncation.Strategy = trunc
				assert.NoError(t, r.Validate(cfg), "%s/%s/%s", aug, pad, trunc)
			}
		}
	}
}

func TestValidate_CaseInsensitive(t *testing.T) {
	cfg := identityConfig()
	cfg.Augmentation.Strategy = "IDENTITY"
	cfg.Tokenization.Strategy = " Kmer "
	cfg.Padding.Strategy = "End"
	cfg.Truncation.Strategy = "SlidingWindow"

	assert.NoError(t, Validate(cfg))
}

func TestValidate_UnknownStrategy(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.PipelineConfig)
		kind   string
	}{
		{"augmentation", func(c *config.PipelineConfig) { c.Augmentation.Strategy = "shuffle" }, KindAugmentation},
		{"tokenization", func(c *config.PipelineConfig) { c.Tokenization.Strategy = "bpe" }, KindTokenization},
		{"padding", func(c *config.PipelineConfig) { c.Padding.Strategy = "middle" }, KindPadding},
		{"truncation", func(c *config.PipelineConfig) { c.Truncation.Strategy = "" }, KindTruncation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := identityConfig()
			tt.mutate(&cfg)

			err := Validate(cfg)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.CodeUnknownStrategy))
			assert.Contains(t, err.Error(), tt.kind)
		})
	}
}

func TestValidate_InvalidParameters(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.PipelineConfig)
	}{
		{"zero k", func(c *config.PipelineConfig) { c.Tokenization.K = 0 }},
		{"negative padding length", func(c *config.PipelineConfig) { c.Padding.OptimalLength = -1 }},
		{"negative truncation length", func(c *config.PipelineConfig) { c.Truncation.OptimalLength = -3 }},
		{"multi-character filler", func(c *config.PipelineConfig) { c.Tokenization.PaddingSymbol = "NN" }},
		{"probability above one", func(c *config.PipelineConfig) {
			c.Augmentation.Strategy = "random"
			c.Augmentation.ModificationProbability = 1.5
		}},
		{"base with empty alphabet", func(c *config.PipelineConfig) {
			c.Augmentation.Strategy = "base"
			c.Augmentation.Alphabet = nil
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := identityConfig()
			tt.mutate(&cfg)

			err := Validate(cfg)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.CodeInvalidConfig), err.Error())
		})
	}
}

func TestValidate_IdentityNeedsNoAlphabet(t *testing.T) {
	cfg := identityConfig()
	cfg.Augmentation.Alphabet = nil
	assert.NoError(t, Validate(cfg))
}

func TestBuild_WithRandomOverridesSeed(t *testing.T) {
	cfg := identityConfig()
	cfg.Padding.Strategy = "random"
	cfg.Padding.OptimalLength = 4
	cfg.Seed = 7

	// Two missing positions; IntN(3) yields 2, so both go in front.
	src := &random.Fixed{Ints: []int{2}}
	p, err := Build(cfg, dnaVocab(t), WithRandom(src))
	require.NoError(t, err)

	tokens, err := p.Tokens("AAACCC")
	require.NoError(t, err)
	assert.Equal(t, []string{"PAD", "PAD", "AAA", "CCC"}, tokens.Flatten())
}
