package augmentation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/SeqPrep/internal/preprocessing/random"
	"github.com/turtacn/SeqPrep/pkg/errors"
	"github.com/turtacn/SeqPrep/pkg/types/sequence"
)

func newBase(t *testing.T, rng random.Source, p float64) *Base {
	t.Helper()
	b, err := NewBase(newModifier(t, rng), WithMutationProbability(p))
	require.NoError(t, err)
	return b
}

func TestPickMethod_Weights(t *testing.T) {
	assert.Equal(t, methodDelete, pickMethod(0.0))
	assert.Equal(t, methodDelete, pickMethod(0.2499))
	assert.Equal(t, methodInsert, pickMethod(0.25))
	assert.Equal(t, methodReplace, pickMethod(0.5))
	assert.Equal(t, methodSwapForward, pickMethod(0.75))
	assert.Equal(t, methodSwapBackward, pickMethod(0.875))
	assert.Equal(t, methodSwapBackward, pickMethod(0.9999))
}

func TestBase_CursorBookkeeping(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		floats []float64
		ints   []int
		want   string
	}{
		// every visit mutates (gate 0.0) and deletes; delete re-examines the cursor
		{"delete to empty yields one symbol", "ACG", []float64{0.0, 0.0}, []int{2}, "G"},
		// swap-forward advances by two
		{"swap forward", "ABCD", []float64{0.0, 0.8}, nil, "BADC"},
		// swap-forward at the last index falls back to swap-backward
		{"swap forward at last index", "ABC", []float64{0.0, 0.8}, nil, "BCA"},
		// swap-backward at index 0 falls back to swap-forward and advances by two
		{"swap backward", "ABCD", []float64{0.0, 0.9}, nil, "BCDA"},
		{"replace every position", "ACGA", []float64{0.0, 0.6}, []int{3}, "TTTT"},
		// insert after index 0, then two visits without mutation
		{"insert advances by one", "AC", []float64{0.0, 0.3, 0.99, 0.99, 0.99}, []int{1, 3}, "ATC"},
		{"swap on length one is a no-op", "A", []float64{0.0, 0.9, 0.99}, nil, "A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBase(t, &random.Fixed{Floats: tt.floats, Ints: tt.ints}, 0.5)
			got, err := b.Execute(sequence.FromString(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestBase_EmptyInputYieldsOneSymbol(t *testing.T) {
	b := newBase(t, &random.Fixed{Ints: []int{1}}, DefaultMutationProbability)
	got, err := b.Execute(sequence.Sequence{})
	require.NoError(t, err)
	assert.Equal(t, "C", got.String())
}

func TestBase_ZeroProbabilityIsIdentity(t *testing.T) {
	b := newBase(t, random.New(1), 0)
	assert.True(t, b.Deterministic())

	got, err := b.Execute(sequence.FromString("ACGTGCTTCGATC"))
	require.NoError(t, err)
	assert.Equal(t, "ACGTGCTTCGATC", got.String())
}

func TestBase_DefaultsAndValidation(t *testing.T) {
	b, err := NewBase(newModifier(t, nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultMutationProbability, b.probability)
	assert.Equal(t, NameBase, b.Name())
	assert.False(t, b.Deterministic())

	_, err = NewBase(newModifier(t, nil), WithMutationProbability(1.5))
	assert.True(t, errors.IsCode(err, errors.CodeInvalidConfig))

	_, err = NewBase(nil)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidConfig))
}

func TestBase_NeverFailsAndNeverEmpty(t *testing.T) {
	b := newBase(t, random.New(99), 0.3)
	for i := 0; i < 500; i++ {
		n := i % 17
		got, err := b.Execute(sequence.FromString(strings.Repeat("ACGT", 5)[:n]))
		require.NoError(t, err)
		require.NotEmpty(t, got)
		for _, s := range got {
			assert.Contains(t, "ACGT", string(s))
		}
	}
}

func TestIdentity_ReturnsInput(t *testing.T) {
	id := NewIdentity()
	in := sequence.FromString("ACGT")
	got, err := id.Execute(in)
	require.NoError(t, err)
	assert.Equal(t, "ACGT", got.String())
	assert.True(t, id.Deterministic())
	assert.Equal(t, NameIdentity, id.Name())
}

func TestRandom_Primitives(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ints  []int
		want  string
	}{
		{"delete everything", "ACGT", []int{2}, "G"},
		{"replace everything", "CGTC", []int{1, 0}, "AAAA"},
		{"swap walks forward", "ACG", []int{3, 0}, "AGC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRandom(newModifier(t, &random.Fixed{Floats: []float64{0.0}, Ints: tt.ints}), 1)
			require.NoError(t, err)
			got, err := r.Execute(sequence.FromString(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestRandom_ContractAndValidation(t *testing.T) {
	r, err := NewRandom(newModifier(t, random.New(3)), 0.5)
	require.NoError(t, err)
	assert.Equal(t, NameRandom, r.Name())

	for i := 0; i < 200; i++ {
		got, err := r.Execute(sequence.FromString("ACGTACGT"[:i%9]))
		require.NoError(t, err)
		require.NotEmpty(t, got)
	}

	_, err = NewRandom(newModifier(t, nil), -0.1)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidConfig))
}
