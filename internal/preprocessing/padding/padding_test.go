package padding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/SeqPrep/internal/preprocessing/random"
	"github.com/turtacn/SeqPrep/pkg/errors"
	"github.com/turtacn/SeqPrep/pkg/types/sequence"
)

func threeKmers() sequence.TokenSequence {
	return sequence.TokenSequence{{"123"}, {"456"}, {"789"}}
}

func TestFront(t *testing.T) {
	p, err := NewFront(4)
	require.NoError(t, err)

	got := p.Execute(threeKmers())
	assert.Equal(t, sequence.TokenSequence{{"PAD"}, {"123"}, {"456"}, {"789"}}, got)

	for _, l := range []int{0, 2, 3} {
		short, err := NewFront(l)
		require.NoError(t, err)
		assert.Equal(t, threeKmers(), short.Execute(threeKmers()))
	}
}

func TestEnd(t *testing.T) {
	p, err := NewEnd(5)
	require.NoError(t, err)

	got := p.Execute(threeKmers())
	assert.Equal(t, sequence.TokenSequence{{"123"}, {"456"}, {"789"}, {"PAD"}, {"PAD"}}, got)

	noop, err := NewEnd(3)
	require.NoError(t, err)
	assert.Equal(t, threeKmers(), noop.Execute(threeKmers()))
}

func TestRandom_SplitsPadsAcrossEnds(t *testing.T) {
	p, err := NewRandom(7, &random.Fixed{Ints: []int{3}})
	require.NoError(t, err)
	got := p.Execute(threeKmers())
	assert.Equal(t, sequence.TokenSequence{{"PAD"}, {"PAD"}, {"PAD"}, {"123"}, {"456"}, {"789"}, {"PAD"}}, got)
}

func TestRandom_Invariants(t *testing.T) {
	p, err := NewRandom(10, random.New(17))
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		got := p.Execute(threeKmers())
		require.Len(t, got, 10)

		first := 0
		for first < len(got) && got[first].IsPad() {
			first++
		}
		require.LessOrEqual(t, first+3, len(got))
		assert.Equal(t, threeKmers(), got[first:first+3])
		for _, pos := range got[first+3:] {
			assert.True(t, pos.IsPad())
		}
	}

	assert.False(t, p.Deterministic())
}

func TestExecute_ReturnsNewSlice(t *testing.T) {
	in := threeKmers()
	p, err := NewFront(3)
	require.NoError(t, err)

	out := p.Execute(in)
	out[0] = sequence.Position{"XXX"}
	assert.Equal(t, "123", in[0][0])
}

func TestNegativeLength(t *testing.T) {
	_, err := NewFront(-1)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidConfig))
	_, err = NewEnd(-1)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidConfig))
	_, err = NewRandom(-1, nil)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidConfig))
}
