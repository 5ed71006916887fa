package preprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/SeqPrep/internal/config"
	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SeqPrep/internal/preprocessing/augmentation"
	"github.com/turtacn/SeqPrep/internal/preprocessing/padding"
	"github.com/turtacn/SeqPrep/internal/preprocessing/tokenization"
	"github.com/turtacn/SeqPrep/internal/preprocessing/truncation"
	"github.com/turtacn/SeqPrep/internal/preprocessing/vocab"
	"github.com/turtacn/SeqPrep/pkg/errors"
	"github.com/turtacn/SeqPrep/pkg/types/sequence"
)

func identityConfig() config.PipelineConfig {
	return config.PipelineConfig{
		Augmentation: config.AugmentationConfig{Strategy: "identity", Alphabet: []string{"A", "C", "G", "T"}},
		Tokenization: config.TokenizationConfig{Strategy: "kmer", K: 3, PaddingSymbol: "N"},
		Padding:      config.LengthConfig{Strategy: "front", OptimalLength: 8},
		Truncation:   config.LengthConfig{Strategy: "front", OptimalLength: 8},
	}
}

func dnaVocab(t *testing.T) *vocab.Vocabulary {
	t.Helper()
	v, err := vocab.BuildKmer(3, sequence.DNA)
	require.NoError(t, err)
	return v
}

func TestProcess_EndToEnd(t *testing.T) {
	v := dnaVocab(t)
	p, err := Build(identityConfig(), v)
	require.NoError(t, err)

	ids, err := p.Process("ACGTGCTTCGATC")
	require.NoError(t, err)
	require.Len(t, ids, 8)

	for i, pos := range ids {
		require.Len(t, pos, 1, "position %d", i)
		assert.GreaterOrEqual(t, pos[0], 0)
		assert.Less(t, pos[0], v.Size())
	}
	assert.Equal(t, []int{vocab.PadID}, ids[0])
	assert.Equal(t, []int{vocab.PadID}, ids[2])
	assert.Equal(t, []int{v.ID("ACG")}, ids[3])
	assert.Equal(t, []int{vocab.UnkID}, ids[7], "CNN is outside the ACGT vocabulary")
}

func TestTokens_StopsBeforeMapping(t *testing.T) {
	p, err := Build(identityConfig(), dnaVocab(t))
	require.NoError(t, err)

	tokens, err := p.Tokens("ACGTGCTTCGATC")
	require.NoError(t, err)
	assert.Equal(t, []string{"PAD", "PAD", "PAD", "ACG", "TGC", "TTC", "GAT", "CNN"}, tokens.Flatten())
}

func TestProcess_TruncatesLongInput(t *testing.T) {
	cfg := identityConfig()
	cfg.Padding.OptimalLength = 2
	cfg.Truncation.Strategy = "end"
	cfg.Truncation.OptimalLength = 2
	p, err := Build(cfg, dnaVocab(t))
	require.NoError(t, err)

	tokens, err := p.Tokens("AAACCCGGGTTT")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA", "CCC"}, tokens.Flatten())
}

func TestProcess_PropagatesStageErrorUnchanged(t *testing.T) {
	front, err := padding.NewFront(4)
	require.NoError(t, err)
	end, err := truncation.NewEnd(4)
	require.NoError(t, err)

	p := &Preprocessor{
		stages: stages{
			augmentation: augmentation.NewIdentity(),
			tokenization: &tokenization.Kmer{},
			padding:      front,
			truncation:   end,
		},
		vocab:  dnaVocab(t),
		logger: logging.NewNopLogger(),
	}

	_, want := (&tokenization.Kmer{}).Execute(sequence.FromString("ACGT"))
	require.Error(t, want)

	ids, err := p.Process("ACGT")
	assert.Nil(t, ids)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidConfig))
	assert.Equal(t, want.Error(), err.Error())
}

func TestBuild_NilVocabulary(t *testing.T) {
	_, err := Build(identityConfig(), nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeVocabularyMissing))
}

func TestDeterministic(t *testing.T) {
	v := dnaVocab(t)

	tests := []struct {
		name   string
		mutate func(*config.PipelineConfig)
		want   bool
	}{
		{"identity front front", func(*config.PipelineConfig) {}, true},
		{"base augmentation", func(c *config.PipelineConfig) { c.Augmentation.Strategy = "base" }, false},
		{"random padding", func(c *config.PipelineConfig) { c.Padding.Strategy = "random" }, false},
		{"sliding window", func(c *config.PipelineConfig) { c.Truncation.Strategy = "slidingwindow" }, false},
		{"end end", func(c *config.PipelineConfig) {
			c.Padding.Strategy = "end"
			c.Truncation.Strategy = "end"
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := identityConfig()
			tt.mutate(&cfg)
			p, err := Build(cfg, v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Deterministic())
		})
	}
}

func TestBuild_SeedReproducible(t *testing.T) {
	v := dnaVocab(t)
	cfg := identityConfig()
	cfg.Augmentation.Strategy = "random"
	cfg.Augmentation.ModificationProbability = 0.5
	cfg.Padding.Strategy = "random"
	cfg.Truncation.Strategy = "slidingwindow"
	cfg.Seed = 42

	first, err := Build(cfg, v)
	require.NoError(t, err)
	second, err := Build(cfg, v)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		a, err := first.Process("ACGTGCTTCGATCACGTTGCA")
		require.NoError(t, err)
		b, err := second.Process("ACGTGCTTCGATCACGTTGCA")
		require.NoError(t, err)
		assert.Equal(t, a, b)
		assert.Len(t, a, 8)
	}
}

func TestDescribe(t *testing.T) {
	cfg := identityConfig()
	cfg.Truncation.Strategy = "SlidingWindow"
	p, err := Build(cfg, dnaVocab(t), WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		KindAugmentation: "identity",
		KindTokenization: "kmer",
		KindPadding:      "front",
		KindTruncation:   "slidingwindow",
	}, p.Describe())
}
