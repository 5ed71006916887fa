package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/SeqPrep/internal/config"
	"github.com/turtacn/SeqPrep/internal/preprocessing"
)

func TestGenerate_DefaultGrid(t *testing.T) {
	scenarios := Generate(DefaultGrid())
	require.Len(t, scenarios, 54)

	assert.Equal(t, "k3_base_front_front", scenarios[0].Name)
	assert.Equal(t, "k5_identity_random_slidingwindow", scenarios[53].Name)

	names := map[string]bool{}
	for _, s := range scenarios {
		names[s.Name] = true
		assert.Equal(t, s.Name, s.Config.Scenario.Name)
		assert.Equal(t, 8, s.Config.Pipeline.Padding.OptimalLength)
		assert.Equal(t, 0.5, s.Config.Pipeline.Augmentation.ModificationProbability)
		assert.NoError(t, preprocessing.Validate(s.Config.Pipeline), s.Name)
	}
	assert.Len(t, names, 54)
}

func TestGenerate_ConfigsAreIndependent(t *testing.T) {
	scenarios := Generate(DefaultGrid())
	scenarios[0].Config.Pipeline.Augmentation.Alphabet[0] = "X"
	assert.Equal(t, "A", scenarios[1].Config.Pipeline.Augmentation.Alphabet[0])
}

func TestWriteAll_RoundTripsThroughLoader(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scenarios")
	g := DefaultGrid()
	g.Ks = []int{5}
	g.Augmentations = []string{"random"}
	scenarios := Generate(g)

	paths, err := WriteAll(dir, scenarios)
	require.NoError(t, err)
	require.Len(t, paths, 9)
	assert.Equal(t, filepath.Join(dir, "k5_random_front_front.yaml"), paths[0])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 9)

	cfg, err := config.Load(paths[0])
	require.NoError(t, err)
	assert.Equal(t, scenarios[0].Config.Pipeline, cfg.Pipeline)
	assert.Equal(t, "N", cfg.Pipeline.Tokenization.PaddingSymbol)
}
